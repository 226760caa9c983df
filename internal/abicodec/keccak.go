package abicodec

import "golang.org/x/crypto/sha3"

// Keccak256 computes the pre-standard Keccak-256 digest (padding byte
// 0x01), not the final FIPS-202 SHA3-256 variant (padding byte 0x06).
// Ethereum selectors and hashes are Keccak-256 throughout.
func Keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

// Selector returns the 4-byte function selector (lowercase hex, no 0x
// prefix) for a canonical signature such as "transfer(address,uint256)".
func Selector(signature string) string {
	digest := Keccak256([]byte(signature))
	return hexEncodeBytes(digest[:4])
}

func hexEncodeBytes(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}
