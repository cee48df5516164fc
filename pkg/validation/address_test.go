package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	valid := strings.Repeat("ab", 22)

	assert.NoError(t, ValidateAddress(valid))
	assert.NoError(t, ValidateAddress("0x"+valid))
	assert.NoError(t, ValidateAddress("0X"+valid))
}

func TestValidateAddressRejectsMalformed(t *testing.T) {
	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("0x1234"))
	assert.Error(t, ValidateAddress(strings.Repeat("ab", 20)))
	assert.Error(t, ValidateAddress(strings.Repeat("zz", 22)))
}

func TestValidateListingID(t *testing.T) {
	valid := strings.Repeat("cd", 32)

	assert.NoError(t, ValidateListingID(valid))
	assert.NoError(t, ValidateListingID("0x"+valid))

	assert.Error(t, ValidateListingID(""))
	assert.Error(t, ValidateListingID("0xdead"))
	assert.Error(t, ValidateListingID(strings.Repeat("zz", 32)))
}
