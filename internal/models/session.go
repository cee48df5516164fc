package models

import (
	"math/big"

	"github.com/core-coin/go-core/v2/common"
)

// ConnectionState describes the lifecycle state of the wallet session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// WalletSession is the client's view of the wallet connection.
// While State == Connected, Address and ChainID mirror the wallet's live
// values; NativeBalance may lag by at most one polling interval.
type WalletSession struct {
	Address       common.Address  `json:"address"`
	ChainID       *big.Int        `json:"chain_id"`
	NativeBalance *big.Int        `json:"native_balance"`
	State         ConnectionState `json:"state"`
}

// Clone returns a deep copy so callers can hold a snapshot without racing
// against session updates.
func (s *WalletSession) Clone() *WalletSession {
	if s == nil {
		return nil
	}
	out := &WalletSession{Address: s.Address, State: s.State}
	if s.ChainID != nil {
		out.ChainID = new(big.Int).Set(s.ChainID)
	}
	if s.NativeBalance != nil {
		out.NativeBalance = new(big.Int).Set(s.NativeBalance)
	}
	return out
}
