package gateway

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/unisub/unisub/internal/models"
)

// DefaultStableDecimals is the stable token's fixed-point precision.
const DefaultStableDecimals = 6

// FormatUnits renders a minor-unit amount as a human-readable decimal
// string. Pure integer arithmetic: amounts never touch floating point.
// Trailing fractional zeros are trimmed, so the representation is canonical
// and ParseUnits(FormatUnits(n)) == n for every n >= 0.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	digits := new(big.Int).Abs(amount).String()
	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		whole := digits[:len(digits)-decimals]
		frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
		digits = whole
		if frac != "" {
			digits = whole + "." + frac
		}
	}
	if amount.Sign() < 0 && digits != "0" {
		digits = "-" + digits
	}
	return digits
}

// ParseUnits converts a human-readable decimal string into minor units.
// Rejects negative amounts, non-digit input and fractions finer than the
// token's precision: truncating silently would corrupt every subsequent
// approve/transfer amount.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", models.ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: negative amount %q", models.ErrInvalidAmount, s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if frac == "" {
			return nil, fmt.Errorf("%w: %q is not a decimal number", models.ErrInvalidAmount, s)
		}
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", models.ErrInvalidAmount, s)
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", models.ErrInvalidAmount, s, decimals)
	}

	frac += strings.Repeat("0", decimals-len(frac))
	amount, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidAmount, s)
	}
	return amount, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
