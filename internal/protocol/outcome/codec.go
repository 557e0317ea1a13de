package outcome

import (
	"fmt"
	"math/big"

	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Wire layouts, bit-compatible with the on-chain Outcome library:
//
//	outcome:       tuple(address assetHolderAddress, bytes assetOutcomeBytes)[]
//	asset outcome: tuple(uint8 assetOutcomeType, bytes allocationOrGuaranteeBytes)
//	allocation:    tuple(bytes32 destination, uint256 amount)[]
var (
	outcomeArgs = mustArguments("tuple[]", []abi.ArgumentMarshaling{
		{Name: "assetHolderAddress", Type: "address"},
		{Name: "assetOutcomeBytes", Type: "bytes"},
	})
	assetOutcomeArgs = mustArguments("tuple", []abi.ArgumentMarshaling{
		{Name: "assetOutcomeType", Type: "uint8"},
		{Name: "allocationOrGuaranteeBytes", Type: "bytes"},
	})
	allocationArgs = mustArguments("tuple[]", []abi.ArgumentMarshaling{
		{Name: "destination", Type: "bytes32"},
		{Name: "amount", Type: "uint256"},
	})
)

type wireOutcomeItem struct {
	AssetHolderAddress common.Address
	AssetOutcomeBytes  []byte
}

type wireAssetOutcome struct {
	AssetOutcomeType           uint8
	AllocationOrGuaranteeBytes []byte
}

type wireAllocationItem struct {
	Destination [32]byte
	Amount      *big.Int
}

func mustArguments(typ string, components []abi.ArgumentMarshaling) abi.Arguments {
	t, err := abi.NewType(typ, "", components)
	if err != nil {
		panic(fmt.Sprintf("outcome: bad abi type %s: %v", typ, err))
	}
	return abi.Arguments{{Type: t}}
}

// EncodeAllocation ABI encodes a single-asset allocation.
func EncodeAllocation(a Allocation) ([]byte, error) {
	items := make([]wireAllocationItem, len(a))
	for i, item := range a {
		amt := amountOrZero(item.Amount)
		if amt.Sign() < 0 {
			return nil, fmt.Errorf("item %d: %w", i, ErrNegativeAmount)
		}
		if amt.Cmp(math.MaxBig256) > 0 {
			return nil, fmt.Errorf("item %d: %w", i, ErrAmountOverflow)
		}
		items[i] = wireAllocationItem{Destination: item.Destination, Amount: amt}
	}
	return allocationArgs.Pack(items)
}

// DecodeAllocation reverses EncodeAllocation.
func DecodeAllocation(data []byte) (Allocation, error) {
	vals, err := allocationArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: allocation: %v", protocol.ErrMalformedOutcome, err)
	}
	var items []wireAllocationItem
	if err := allocationArgs.Copy(&items, vals); err != nil {
		return nil, fmt.Errorf("%w: allocation: %v", protocol.ErrMalformedOutcome, err)
	}
	out := make(Allocation, len(items))
	for i, item := range items {
		out[i] = AllocationItem{Destination: item.Destination, Amount: item.Amount}
	}
	return out, nil
}

// Encode ABI encodes an outcome. Every entry is tagged as an allocation.
func Encode(o Outcome) ([]byte, error) {
	items := make([]wireOutcomeItem, len(o))
	for i, asset := range o {
		alloc, err := EncodeAllocation(asset.Allocation)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		content, err := assetOutcomeArgs.Pack(wireAssetOutcome{
			AssetOutcomeType:           uint8(AllocationOutcome),
			AllocationOrGuaranteeBytes: alloc,
		})
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		items[i] = wireOutcomeItem{
			AssetHolderAddress: asset.AssetHolder,
			AssetOutcomeBytes:  content,
		}
	}
	return outcomeArgs.Pack(items)
}

// Decode reverses Encode. Guarantee entries are rejected: this game only
// understands allocations.
func Decode(data []byte) (Outcome, error) {
	vals, err := outcomeArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedOutcome, err)
	}
	var items []wireOutcomeItem
	if err := outcomeArgs.Copy(&items, vals); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedOutcome, err)
	}
	out := make(Outcome, len(items))
	for i, item := range items {
		asset, err := decodeAssetOutcome(item.AssetOutcomeBytes)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		if AssetOutcomeType(asset.AssetOutcomeType) != AllocationOutcome {
			return nil, fmt.Errorf("%w: asset %d: %w", protocol.ErrMalformedOutcome, i, ErrNotAllocation)
		}
		alloc, err := DecodeAllocation(asset.AllocationOrGuaranteeBytes)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		out[i] = AssetOutcome{AssetHolder: item.AssetHolderAddress, Allocation: alloc}
	}
	return out, nil
}

func decodeAssetOutcome(data []byte) (wireAssetOutcome, error) {
	vals, err := assetOutcomeArgs.Unpack(data)
	if err != nil {
		return wireAssetOutcome{}, fmt.Errorf("%w: asset outcome: %v", protocol.ErrMalformedOutcome, err)
	}
	if len(vals) != 1 {
		return wireAssetOutcome{}, fmt.Errorf("%w: asset outcome: %d values", protocol.ErrMalformedOutcome, len(vals))
	}
	// Unpacked tuples are anonymous structs with identical fields.
	asset, ok := abi.ConvertType(vals[0], new(wireAssetOutcome)).(*wireAssetOutcome)
	if !ok {
		return wireAssetOutcome{}, fmt.Errorf("%w: asset outcome: unexpected shape", protocol.ErrMalformedOutcome)
	}
	return *asset, nil
}
