package validation

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/core-coin/go-core/v2/common"
)

// ValidateAddress validates a blockchain address format without resolving it.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	normalized := strings.TrimPrefix(addr, "0x")
	normalized = strings.TrimPrefix(normalized, "0X")

	// 44 hex characters = 22 bytes
	if len(normalized) != common.AddressLength*2 {
		return fmt.Errorf("invalid address length: expected %d characters (without 0x), got %d", common.AddressLength*2, len(normalized))
	}

	if _, err := hex.DecodeString(normalized); err != nil {
		return fmt.Errorf("invalid hex address: %w", err)
	}

	return nil
}

// ParseAddress validates an address string and resolves it to a common.Address.
func ParseAddress(addr string) (common.Address, error) {
	if err := ValidateAddress(addr); err != nil {
		return common.Address{}, err
	}
	parsed, err := common.HexToAddress(addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return parsed, nil
}

// ValidateListingID checks that the given string is a 32-byte hex identifier.
func ValidateListingID(id string) error {
	if id == "" {
		return fmt.Errorf("listing id cannot be empty")
	}
	normalized := strings.TrimPrefix(id, "0x")
	if len(normalized) != common.HashLength*2 {
		return fmt.Errorf("invalid listing id length: expected %d characters (without 0x), got %d", common.HashLength*2, len(normalized))
	}
	if _, err := hex.DecodeString(normalized); err != nil {
		return fmt.Errorf("invalid hex listing id: %w", err)
	}
	return nil
}
