// Package pricing implements the cart/discount calculator used for both
// the live checkout preview and the authoritative server-side
// recomputation. All amounts are int64 minor units (cents); rounding is
// floor for discounts and ceil for totals so the shop never
// under-collects.
package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount value is interpreted against the
// cart subtotal.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

func (t DiscountType) String() string {
	return string(t)
}

// Valid reports whether the type is one of the known discount types.
func (t DiscountType) Valid() bool {
	return t == DiscountTypePercent || t == DiscountTypeFixed
}

func (t DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = DiscountType(str)
	return nil
}

func (t DiscountType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *DiscountType) Scan(value interface{}) error {
	if value == nil {
		*t = DiscountTypeFixed
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = DiscountType(v)
	case []byte:
		*t = DiscountType(string(v))
	}
	return nil
}

// Epsilon is the tolerance, in cents, applied when comparing a requested
// discount against the floor-price headroom. It absorbs float noise from
// client-supplied values.
const Epsilon int64 = 1

// Item is one candidate cart line. Lines with Quantity <= 0 contribute
// nothing to the totals and receive a zero allocation; callers must drop
// them before persistence.
type Item struct {
	Quantity   int
	SellPrice  int64 // unit sell price in cents
	FloorPrice int64 // minimum net unit price in cents
}

// Discount is the requested total-bill discount. For DiscountTypePercent
// the value is a percentage of the subtotal; for DiscountTypeFixed it is
// an amount in major currency units.
type Discount struct {
	Value float64      `json:"value"`
	Type  DiscountType `json:"type"`
}

// Options controls overflow behavior. The live cart auto-corrects an
// oversized discount to the maximum and forces the type to fixed; the
// order editor rejects it outright.
type Options struct {
	AutoClampOnOverflow bool
}

// Allocation is the bookkeeping share of the total discount attributed
// to one input item, in input order. ItemDiscount amounts sum back to
// the effective discount exactly; PerUnit keeps sub-cent precision so
// PerUnit × quantity reproduces ItemDiscount.
type Allocation struct {
	ItemSubtotal int64
	ItemDiscount int64
	PerUnit      decimal.Decimal
}

// Result is the validated outcome of a calculation.
type Result struct {
	Subtotal    int64
	MaxDiscount int64 // headroom above aggregate floor price, clamped to >= 0
	Discount    int64
	GrandTotal  int64
	AppliedType DiscountType
	Allocations []Allocation
}

// ExceedsMaxError reports a discount larger than the floor-price
// headroom, carrying the maximum so callers can surface it.
type ExceedsMaxError struct {
	Max int64 // cents
}

func (e *ExceedsMaxError) Error() string {
	return fmt.Sprintf("discount exceeds maximum allowed (%d)", e.Max)
}

// Calculate computes subtotal, effective discount, grand total and the
// per-item allocation for a cart. The same inputs always produce the
// same outputs, so a client preview and the server recomputation cannot
// disagree.
func Calculate(items []Item, d Discount, opts Options) (*Result, error) {
	var subtotal, floorTotal int64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		q := int64(it.Quantity)
		subtotal += q * it.SellPrice
		floorTotal += q * it.FloorPrice
	}

	// Headroom may be negative when floor prices exceed sell prices;
	// no discount is allowed in that case.
	headroom := subtotal - floorTotal
	maxDiscount := headroom
	if maxDiscount < 0 {
		maxDiscount = 0
	}

	effective := effectiveDiscount(subtotal, d)
	appliedType := d.Type

	if effective > headroom+Epsilon {
		if !opts.AutoClampOnOverflow {
			return nil, &ExceedsMaxError{Max: maxDiscount}
		}
		effective = maxDiscount
		appliedType = DiscountTypeFixed
	}

	// Integer cents make the ceil of (subtotal - discount) exact.
	grand := subtotal - effective

	return &Result{
		Subtotal:    subtotal,
		MaxDiscount: maxDiscount,
		Discount:    effective,
		GrandTotal:  grand,
		AppliedType: appliedType,
		Allocations: allocate(items, subtotal, effective),
	}, nil
}

// effectiveDiscount interprets the discount spec against the subtotal
// and floors the result to a whole minor unit. Invalid values (negative,
// NaN, infinite, unknown type) yield zero.
func effectiveDiscount(subtotal int64, d Discount) int64 {
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		return 0
	}

	var raw decimal.Decimal
	switch d.Type {
	case DiscountTypePercent:
		raw = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromFloat(d.Value)).
			Div(decimal.NewFromInt(100))
	case DiscountTypeFixed:
		raw = decimal.NewFromFloat(d.Value).Mul(decimal.NewFromInt(100))
	default:
		return 0
	}

	eff := raw.Floor().IntPart()
	if eff < 0 {
		return 0
	}
	return eff
}

// allocate distributes the effective discount across items by each
// item's share of the subtotal, largest-remainder style: line shares
// are floored to whole cents and the stranded cents handed back one at
// a time to the lines with the largest fractional remainders (ties go
// to the larger line), so the line discounts conserve the effective
// discount exactly. PerUnit is the exact quotient ItemDiscount/quantity.
func allocate(items []Item, subtotal, effective int64) []Allocation {
	allocs := make([]Allocation, len(items))
	if subtotal <= 0 {
		return allocs
	}

	type share struct {
		index     int
		remainder decimal.Decimal
	}
	var shares []share
	var floored int64

	subtotalDec := decimal.NewFromInt(subtotal)
	for i, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		itemSubtotal := int64(it.Quantity) * it.SellPrice
		allocs[i].ItemSubtotal = itemSubtotal

		if effective <= 0 || itemSubtotal <= 0 {
			continue
		}

		exact := decimal.NewFromInt(effective).
			Mul(decimal.NewFromInt(itemSubtotal)).
			Div(subtotalDec)
		base := exact.Floor()
		allocs[i].ItemDiscount = base.IntPart()
		floored += allocs[i].ItemDiscount
		shares = append(shares, share{index: i, remainder: exact.Sub(base)})
	}

	sort.SliceStable(shares, func(a, b int) bool {
		if !shares[a].remainder.Equal(shares[b].remainder) {
			return shares[a].remainder.GreaterThan(shares[b].remainder)
		}
		return allocs[shares[a].index].ItemSubtotal > allocs[shares[b].index].ItemSubtotal
	})
	for i := 0; i < len(shares) && floored < effective; i++ {
		allocs[shares[i].index].ItemDiscount++
		floored++
	}

	for i, it := range items {
		if it.Quantity > 0 && allocs[i].ItemDiscount > 0 {
			allocs[i].PerUnit = decimal.NewFromInt(allocs[i].ItemDiscount).
				Div(decimal.NewFromInt(int64(it.Quantity)))
		}
	}
	return allocs
}
