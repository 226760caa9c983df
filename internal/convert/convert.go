// Package convert implements exact-integer unit conversion between
// hex, decimal, human-decimal, wei, gwei, and eth representations of
// a signed arbitrary-precision integer.
package convert

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/hexutil"
)

// Unit is one of the six supported representations.
type Unit string

const (
	UnitHex   Unit = "hex"
	UnitDec   Unit = "dec"
	UnitHuman Unit = "human"
	UnitWei   Unit = "wei"
	UnitGwei  Unit = "gwei"
	UnitEth   Unit = "eth"
)

func (u Unit) valid() bool {
	switch u {
	case UnitHex, UnitDec, UnitHuman, UnitWei, UnitGwei, UnitEth:
		return true
	}
	return false
}

// scaleFor returns the fixed decimal scale for fixed-scale units, or
// decimals for "human".
func scaleFor(u Unit, decimals int) int {
	switch u {
	case UnitEth:
		return 18
	case UnitGwei:
		return 9
	case UnitWei:
		return 0
	case UnitHuman:
		return decimals
	default:
		return 0
	}
}

// Result is the converted value plus, for human output, the
// thousands-grouped and scientific renderings.
type Result struct {
	Value      string
	Thousands  string
	Scientific string
}

// Convert parses value under fromUnit and renders it under toUnit,
// using decimals as the human-unit scale (ignored by fixed-scale
// units).
func Convert(value string, fromUnit, toUnit Unit, decimals int) (Result, error) {
	if !fromUnit.valid() || !toUnit.valid() {
		return Result{}, fmt.Errorf("%w: from/to must be one of hex, dec, human, wei, gwei, eth", apperr.ErrInvalidInput)
	}
	if decimals < 0 {
		return Result{}, fmt.Errorf("%w: decimals must be a non-negative integer", apperr.ErrInvalidInput)
	}

	n, err := toInt(value, fromUnit, decimals)
	if err != nil {
		return Result{}, err
	}
	return fromInt(n, toUnit, decimals), nil
}

func toInt(value string, unit Unit, decimals int) (*big.Int, error) {
	switch unit {
	case UnitHex:
		text := strings.TrimSpace(value)
		negative := strings.HasPrefix(text, "-")
		norm, err := hexutil.Normalize(strings.TrimPrefix(text, "-"), 0)
		if err != nil {
			return nil, fmt.Errorf("%w: value must be a hex string", apperr.ErrInvalidInput)
		}
		n := new(big.Int)
		if _, ok := n.SetString(norm[2:], 16); !ok {
			return nil, fmt.Errorf("%w: value must be a hex string", apperr.ErrInvalidInput)
		}
		if negative {
			n.Neg(n)
		}
		return n, nil
	case UnitDec:
		return parseIntegerString(value)
	case UnitWei, UnitGwei, UnitEth:
		return decimalToInt(value, scaleFor(unit, decimals), string(unit))
	case UnitHuman:
		return decimalToInt(value, decimals, "human")
	default:
		return nil, fmt.Errorf("%w: unsupported from unit", apperr.ErrInvalidInput)
	}
}

func fromInt(n *big.Int, unit Unit, decimals int) Result {
	switch unit {
	case UnitHex:
		if n.Sign() < 0 {
			return Result{Value: "-0x" + new(big.Int).Neg(n).Text(16)}
		}
		return Result{Value: "0x" + n.Text(16)}
	case UnitDec:
		return Result{Value: n.String()}
	case UnitWei, UnitGwei, UnitEth:
		scale := scaleFor(unit, decimals)
		if scale == 0 {
			return Result{Value: n.String()}
		}
		return Result{Value: formatScaledInt(n, scale)}
	case UnitHuman:
		plain := formatScaledInt(n, decimals)
		return Result{
			Value:      plain,
			Thousands:  formatThousands(plain),
			Scientific: formatScientificInt(n, decimals),
		}
	default:
		return Result{}
	}
}

var integerStringRe = regexp.MustCompile(`^[+-]?\d+$`)

func parseIntegerString(text string) (*big.Int, error) {
	candidate := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if !integerStringRe.MatchString(candidate) {
		return nil, fmt.Errorf("%w: value must be an integer", apperr.ErrInvalidInput)
	}
	n, ok := new(big.Int).SetString(candidate, 10)
	if !ok {
		return nil, fmt.Errorf("%w: value must be an integer", apperr.ErrInvalidInput)
	}
	return n, nil
}

// decimalToInt scales a decimal-notation string by 10^scale into an
// exact integer, rejecting more fractional digits than scale permits.
func decimalToInt(text string, scale int, field string) (*big.Int, error) {
	candidate := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if candidate == "" {
		return nil, fmt.Errorf("%w: %s must be a decimal number", apperr.ErrInvalidInput, field)
	}
	negative := strings.HasPrefix(candidate, "-")
	if candidate[0] == '+' || candidate[0] == '-' {
		candidate = candidate[1:]
	}
	if candidate == "" {
		return nil, fmt.Errorf("%w: %s must be a decimal number", apperr.ErrInvalidInput, field)
	}

	whole, frac, hasFrac := strings.Cut(candidate, ".")
	if !hasFrac {
		frac = ""
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("%w: %s must be a decimal number", apperr.ErrInvalidInput, field)
	}
	if len(frac) > scale {
		return nil, fmt.Errorf("%w: %s has more fractional digits than allowed (%d)", apperr.ErrInvalidInput, field, scale)
	}

	wholeInt := new(big.Int)
	if whole != "" {
		wholeInt.SetString(whole, 10)
	}
	fracPadded := frac + strings.Repeat("0", scale-len(frac))
	fracInt := new(big.Int)
	if fracPadded != "" {
		fracInt.SetString(fracPadded, 10)
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	scaled := new(big.Int).Mul(wholeInt, multiplier)
	scaled.Add(scaled, fracInt)
	if negative {
		scaled.Neg(scaled)
	}
	return scaled, nil
}

func isDigits(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatScaledInt renders value / 10^decimals as a trimmed decimal
// string (no trailing fractional zeros, "0" for an exact zero).
func formatScaledInt(value *big.Int, decimals int) string {
	if decimals <= 0 {
		return value.String()
	}
	negative := value.Sign() < 0
	s := new(big.Int).Abs(value).String()
	if len(s) <= decimals {
		s = "0." + strings.Repeat("0", decimals-len(s)) + s
	} else {
		s = s[:len(s)-decimals] + "." + s[len(s)-decimals:]
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		s = "0"
	}
	if negative && s != "0" {
		s = "-" + s
	}
	return s
}

// formatThousands groups the whole-number part of a formatScaledInt
// output with commas, leaving any fractional part untouched.
func formatThousands(text string) string {
	negative := strings.HasPrefix(text, "-")
	body := strings.TrimPrefix(text, "-")
	whole, frac, hasFrac := strings.Cut(body, ".")
	grouped := groupThousands(whole)
	out := grouped
	if hasFrac {
		out = grouped + "." + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

func groupThousands(whole string) string {
	if whole == "" {
		whole = "0"
	}
	n := len(whole)
	if n <= 3 {
		return whole
	}
	var b strings.Builder
	lead := n % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// formatScientificInt renders value / 10^decimals in %.6E scientific
// notation, matching the precision of a big.Float division rounded to
// 6 fractional digits.
func formatScientificInt(value *big.Int, decimals int) string {
	num := new(big.Float).SetPrec(200).SetInt(value)
	denom := new(big.Float).SetPrec(200).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	quotient := new(big.Float).SetPrec(200).Quo(num, denom)
	f, _ := quotient.Float64()
	return formatE6(f)
}

// formatE6 mimics Python's format(x, ".6E"): six digits after the
// decimal point, exponent with an explicit sign and no leading zero
// beyond a single digit padding.
func formatE6(f float64) string {
	s := strconv.FormatFloat(f, 'E', 6, 64)
	idx := strings.IndexByte(s, 'E')
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if strings.HasPrefix(exp, "-") {
		sign = "-"
		exp = exp[1:]
	} else {
		exp = strings.TrimPrefix(exp, "+")
	}
	if len(exp) < 2 {
		exp = strings.Repeat("0", 2-len(exp)) + exp
	}
	return mantissa + "E" + sign + exp
}
