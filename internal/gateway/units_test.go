package gateway

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	// Whole amounts drop the fractional part entirely
	assert.Equal(t, "15", FormatUnits(big.NewInt(15000000), 6))
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 6))

	// Fractional amounts trim trailing zeros but keep significant digits
	assert.Equal(t, "14.999999", FormatUnits(big.NewInt(14999999), 6))
	assert.Equal(t, "0.5", FormatUnits(big.NewInt(500000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))

	// Negative amounts keep the sign in front of the whole part
	assert.Equal(t, "-1.5", FormatUnits(big.NewInt(-1500000), 6))

	// Zero decimals means minor units are the display units
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
}

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("15", 6)
	assert.NoError(t, err)
	assert.Equal(t, "15000000", v.String())

	v, err = ParseUnits("14.999999", 6)
	assert.NoError(t, err)
	assert.Equal(t, "14999999", v.String())

	v, err = ParseUnits("0.5", 6)
	assert.NoError(t, err)
	assert.Equal(t, "500000", v.String())

	// Short fractions are right-padded, not rounded
	v, err = ParseUnits("1.5", 6)
	assert.NoError(t, err)
	assert.Equal(t, "1500000", v.String())

	v, err = ParseUnits("0", 6)
	assert.NoError(t, err)
	assert.Equal(t, "0", v.String())
}

func TestParseUnitsRejectsMalformedInput(t *testing.T) {
	cases := []string{"", ".", "1.", ".5.", "1.2.3", "abc", "1,5", "-1", "1.2345678"}
	for _, input := range cases {
		_, err := ParseUnits(input, 6)
		assert.Error(t, err, "input %q should be rejected", input)
	}
}

func TestUnitsRoundTrip(t *testing.T) {
	// Format then parse must return the exact minor-unit value
	values := []int64{1, 999999, 1000000, 14999999, 15000000, 123456789}
	for _, raw := range values {
		display := FormatUnits(big.NewInt(raw), 6)
		parsed, err := ParseUnits(display, 6)
		assert.NoError(t, err)
		assert.Equal(t, raw, parsed.Int64(), "round trip of %d via %q", raw, display)
	}
}
