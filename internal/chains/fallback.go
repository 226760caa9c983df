package chains

// staticFallback is the hard-coded chain map used when the remote
// chain list cannot be loaded at all (spec §4.1: "Downstream
// operations then fall back to a small static map"), mirroring the
// original implementation's NETWORK_CHAIN_ID_MAP in config.py.
var staticFallback = map[string]string{
	"mainnet":  "1",
	"ethereum": "1",
	"eth":      "1",
	"sepolia":  "11155111",
	"holesky":  "17000",
	"bsc":      "56",
}

// StaticFallbackChainID resolves a network label against the static
// map, bypassing the registry entirely. Numeric labels are returned
// unchanged.
func StaticFallbackChainID(network string) (string, bool) {
	if isDigits(network) {
		return network, true
	}
	id, ok := staticFallback[norm(network)]
	return id, ok
}
