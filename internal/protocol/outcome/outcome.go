package outcome

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Destination names a fund recipient. Plain addresses are left-zero-padded.
type Destination = common.Hash

// Role is a fixed position in a scorched-earth allocation.
type Role int

// Allocation order is load-bearing: items are compared positionally.
const (
	Suggester Role = iota
	User
	Burner

	RoleCount = 3
)

func (r Role) String() string {
	switch r {
	case Suggester:
		return "Suggester"
	case User:
		return "User"
	case Burner:
		return "Burner"
	default:
		return "Unknown"
	}
}

// AssetOutcomeType tags the content of an asset outcome.
type AssetOutcomeType uint8

const (
	AllocationOutcome AssetOutcomeType = 0
	GuaranteeOutcome  AssetOutcomeType = 1
)

var (
	ErrNegativeAmount   = errors.New("outcome: negative amount")
	ErrNotAllocation    = errors.New("outcome: asset outcome is not an allocation")
	ErrAmountOverflow   = errors.New("outcome: amount exceeds uint256")
	ErrAllocationLength = errors.New("outcome: allocation does not hold one item per role")
)

// AllocationItem is one (destination, amount) pair.
type AllocationItem struct {
	Destination Destination
	Amount      *big.Int
}

// Allocation is an ordered list of allocation items.
type Allocation []AllocationItem

// AssetOutcome is the allocation of a single asset, held by AssetHolder.
type AssetOutcome struct {
	AssetHolder common.Address
	Allocation  Allocation
}

// Outcome lists one entry per asset.
type Outcome []AssetOutcome

// Item returns the allocation item for role r. The allocation must already
// have been checked for length.
func (a Allocation) Item(r Role) AllocationItem {
	return a[r]
}

// AmountOf returns the amount held at role r, treating nil as zero.
func (a Allocation) AmountOf(r Role) *big.Int {
	amt := a[r].Amount
	if amt == nil {
		return new(big.Int)
	}
	return amt
}

// Total sums every amount in the allocation.
func (a Allocation) Total() *big.Int {
	total := new(big.Int)
	for _, item := range a {
		if item.Amount != nil {
			total.Add(total, item.Amount)
		}
	}
	return total
}

// Equal reports whether a and b hold the same destinations and amounts in
// the same order.
func (a Allocation) Equal(b Allocation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Destination != b[i].Destination {
			return false
		}
		if amountOrZero(a[i].Amount).Cmp(amountOrZero(b[i].Amount)) != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of a.
func (a Allocation) Clone() Allocation {
	if a == nil {
		return nil
	}
	out := make(Allocation, len(a))
	for i, item := range a {
		out[i] = AllocationItem{
			Destination: item.Destination,
			Amount:      new(big.Int).Set(amountOrZero(item.Amount)),
		}
	}
	return out
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
