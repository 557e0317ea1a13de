package outcome

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Roles binds a concrete address to each allocation role.
type Roles struct {
	Suggester common.Address
	User      common.Address
	Burner    common.Address
}

// Balances holds one amount per role.
type Balances struct {
	Suggester *big.Int
	User      *big.Int
	Burner    *big.Int
}

// BalancesOf is a convenience constructor for small fixture values.
func BalancesOf(suggester, user, burner int64) Balances {
	return Balances{
		Suggester: big.NewInt(suggester),
		User:      big.NewInt(user),
		Burner:    big.NewInt(burner),
	}
}

// Of returns the balance at role r.
func (b Balances) Of(r Role) *big.Int {
	switch r {
	case Suggester:
		return amountOrZero(b.Suggester)
	case User:
		return amountOrZero(b.User)
	case Burner:
		return amountOrZero(b.Burner)
	default:
		return new(big.Int)
	}
}

// BalancesFrom reads the per-role amounts out of a three-item allocation.
func BalancesFrom(a Allocation) (Balances, error) {
	if len(a) != RoleCount {
		return Balances{}, ErrAllocationLength
	}
	return Balances{
		Suggester: new(big.Int).Set(a.AmountOf(Suggester)),
		User:      new(big.Int).Set(a.AmountOf(User)),
		Burner:    new(big.Int).Set(a.AmountOf(Burner)),
	}, nil
}

// PadAddress left-zero-pads a 20-byte address into a 32-byte destination.
func PadAddress(addr common.Address) Destination {
	return common.BytesToHash(addr.Bytes())
}

// Builder produces single-asset outcomes for a fixed set of role
// destinations.
type Builder struct {
	destinations [RoleCount]Destination
	assetHolder  common.Address
}

// NewBuilder pads each role address once; the destinations never change for
// the life of the builder. The asset holder defaults to the zero address.
func NewBuilder(roles Roles) *Builder {
	b := &Builder{}
	b.destinations[Suggester] = PadAddress(roles.Suggester)
	b.destinations[User] = PadAddress(roles.User)
	b.destinations[Burner] = PadAddress(roles.Burner)
	return b
}

// WithAssetHolder sets the asset holder address for built outcomes.
func (b *Builder) WithAssetHolder(addr common.Address) *Builder {
	b.assetHolder = addr
	return b
}

// Allocation lays out bal in role order.
func (b *Builder) Allocation(bal Balances) Allocation {
	alloc := make(Allocation, RoleCount)
	for r := Role(0); r < RoleCount; r++ {
		alloc[r] = AllocationItem{
			Destination: b.destinations[r],
			Amount:      new(big.Int).Set(bal.Of(r)),
		}
	}
	return alloc
}

// Outcome wraps Allocation(bal) in a single asset outcome.
func (b *Builder) Outcome(bal Balances) Outcome {
	return Outcome{{AssetHolder: b.assetHolder, Allocation: b.Allocation(bal)}}
}

// Encoded returns the ABI encoding of Outcome(bal).
func (b *Builder) Encoded(bal Balances) ([]byte, error) {
	return Encode(b.Outcome(bal))
}
