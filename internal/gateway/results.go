package gateway

import (
	"fmt"
	"math/big"

	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/common"

	"github.com/unisub/unisub/internal/models"
)

// Raw contract call results are loosely-typed interface slices. Every value
// is validated here, at the gateway boundary, so a malformed ledger
// response fails with a clear ErrBadResult instead of propagating
// wrong-shaped data into business logic.

// collectionInfo mirrors the factory's CollectionInfo tuple.
type collectionInfo struct {
	Name      string
	Symbol    string
	Owner     common.Address
	Price     *big.Int
	Duration  *big.Int
	CreatedAt *big.Int
	IsActive  bool
}

// rawListing mirrors one entry of the factory's getMarketListings tuple
// array.
type rawListing struct {
	ListingId  [32]byte
	Seller     common.Address
	Collection common.Address
	TokenId    *big.Int
	Price      *big.Int
	ExpiryTime *big.Int
	IsActive   bool
	ListedAt   *big.Int
}

func resultAt(results []interface{}, i int) (interface{}, error) {
	if i >= len(results) {
		return nil, fmt.Errorf("%w: expected at least %d values, got %d", models.ErrBadResult, i+1, len(results))
	}
	return results[i], nil
}

func asBigInt(results []interface{}, i int) (*big.Int, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return nil, err
	}
	v, ok := raw.(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: value %d is %T, want *big.Int", models.ErrBadResult, i, raw)
	}
	return v, nil
}

func asBool(results []interface{}, i int) (bool, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return false, err
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: value %d is %T, want bool", models.ErrBadResult, i, raw)
	}
	return v, nil
}

func asString(results []interface{}, i int) (string, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return "", err
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: value %d is %T, want string", models.ErrBadResult, i, raw)
	}
	return v, nil
}

func asAddress(results []interface{}, i int) (common.Address, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return common.Address{}, err
	}
	v, ok := raw.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: value %d is %T, want common.Address", models.ErrBadResult, i, raw)
	}
	return v, nil
}

func asAddressSlice(results []interface{}, i int) ([]common.Address, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return nil, err
	}
	v, ok := raw.([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: value %d is %T, want []common.Address", models.ErrBadResult, i, raw)
	}
	return v, nil
}

func asBigIntSlice(results []interface{}, i int) ([]*big.Int, error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return nil, err
	}
	v, ok := raw.([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: value %d is %T, want []*big.Int", models.ErrBadResult, i, raw)
	}
	return v, nil
}

// asCollectionInfo decodes the anonymous tuple struct the ABI decoder
// produces for getCollectionInfo. abi.ConvertType panics on a shape
// mismatch, which is translated into ErrBadResult.
func asCollectionInfo(results []interface{}, i int) (info *collectionInfo, err error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("%w: collection info: %v", models.ErrBadResult, r)
		}
	}()
	info = abi.ConvertType(raw, new(collectionInfo)).(*collectionInfo)
	if info.Price == nil || info.Duration == nil || info.CreatedAt == nil {
		return nil, fmt.Errorf("%w: collection info has nil numeric fields", models.ErrBadResult)
	}
	return info, nil
}

// asListings decodes the tuple array returned by getMarketListings.
func asListings(results []interface{}, i int) (listings []rawListing, err error) {
	raw, err := resultAt(results, i)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			listings = nil
			err = fmt.Errorf("%w: market listings: %v", models.ErrBadResult, r)
		}
	}()
	listings = *abi.ConvertType(raw, new([]rawListing)).(*[]rawListing)
	for idx := range listings {
		if listings[idx].TokenId == nil || listings[idx].Price == nil || listings[idx].ExpiryTime == nil || listings[idx].ListedAt == nil {
			return nil, fmt.Errorf("%w: listing %d has nil numeric fields", models.ErrBadResult, idx)
		}
	}
	return listings, nil
}
