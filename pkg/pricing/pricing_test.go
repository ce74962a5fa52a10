package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNoDiscount(t *testing.T) {
	// qty 2 @ 50.00 + qty 1 @ 30.00 => 130.00
	items := []Item{
		{Quantity: 2, SellPrice: 5000},
		{Quantity: 1, SellPrice: 3000},
	}

	res, err := Calculate(items, Discount{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(13000), res.Subtotal)
	assert.Equal(t, int64(0), res.Discount)
	assert.Equal(t, int64(13000), res.GrandTotal)
}

func TestCalculateFixedDiscountWithinMax(t *testing.T) {
	// subtotal 1000.00, floor headroom 150.00, fixed discount 100.00
	items := []Item{
		{Quantity: 1, SellPrice: 100000, FloorPrice: 85000},
	}

	res, err := Calculate(items, Discount{Value: 100, Type: DiscountTypeFixed}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), res.Subtotal)
	assert.Equal(t, int64(15000), res.MaxDiscount)
	assert.Equal(t, int64(10000), res.Discount)
	assert.Equal(t, int64(90000), res.GrandTotal)
	assert.Equal(t, DiscountTypeFixed, res.AppliedType)
}

func TestCalculatePercentDiscountExceedsMax(t *testing.T) {
	// subtotal 1000.00, headroom 150.00, 20% => 200.00 > 150.00
	items := []Item{
		{Quantity: 1, SellPrice: 100000, FloorPrice: 85000},
	}

	_, err := Calculate(items, Discount{Value: 20, Type: DiscountTypePercent}, Options{})
	require.Error(t, err)

	var exceeds *ExceedsMaxError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int64(15000), exceeds.Max)
}

func TestCalculateAutoClampForcesFixedType(t *testing.T) {
	items := []Item{
		{Quantity: 1, SellPrice: 100000, FloorPrice: 85000},
	}

	res, err := Calculate(items, Discount{Value: 20, Type: DiscountTypePercent}, Options{AutoClampOnOverflow: true})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), res.Discount)
	assert.Equal(t, DiscountTypeFixed, res.AppliedType)
	assert.Equal(t, int64(85000), res.GrandTotal)
}

func TestCalculatePercentFloorsFractionalCents(t *testing.T) {
	// 17.5% of 999.99 = 174.99825 => floored to 174.99
	items := []Item{
		{Quantity: 1, SellPrice: 99999},
	}

	res, err := Calculate(items, Discount{Value: 17.5, Type: DiscountTypePercent}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(17499), res.Discount)
	assert.Equal(t, int64(99999-17499), res.GrandTotal)
}

func TestCalculateInvalidDiscountValuesYieldZero(t *testing.T) {
	items := []Item{{Quantity: 1, SellPrice: 10000}}

	for name, d := range map[string]Discount{
		"negative":     {Value: -5, Type: DiscountTypeFixed},
		"nan":          {Value: math.NaN(), Type: DiscountTypePercent},
		"infinite":     {Value: math.Inf(1), Type: DiscountTypeFixed},
		"unknown type": {Value: 10, Type: DiscountType("bogus")},
	} {
		res, err := Calculate(items, d, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, int64(0), res.Discount, name)
		assert.Equal(t, int64(10000), res.GrandTotal, name)
	}
}

func TestCalculateNegativeHeadroomAllowsNoDiscount(t *testing.T) {
	// floor above sell price: headroom is negative, max reported as zero
	items := []Item{
		{Quantity: 2, SellPrice: 1000, FloorPrice: 1500},
	}

	res, err := Calculate(items, Discount{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MaxDiscount)
	assert.Equal(t, int64(2000), res.GrandTotal)

	_, err = Calculate(items, Discount{Value: 1, Type: DiscountTypeFixed}, Options{})
	var exceeds *ExceedsMaxError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int64(0), exceeds.Max)
}

func TestCalculateSkipsNonPositiveQuantities(t *testing.T) {
	items := []Item{
		{Quantity: 0, SellPrice: 5000},
		{Quantity: -3, SellPrice: 5000},
		{Quantity: 1, SellPrice: 5000},
	}

	res, err := Calculate(items, Discount{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), res.Subtotal)
	assert.Equal(t, Allocation{}, res.Allocations[0])
	assert.Equal(t, Allocation{}, res.Allocations[1])
	assert.Equal(t, int64(5000), res.Allocations[2].ItemSubtotal)
}

func TestAllocationConservation(t *testing.T) {
	carts := map[string][]Item{
		"mixed": {
			{Quantity: 2, SellPrice: 5000},
			{Quantity: 1, SellPrice: 3000},
			{Quantity: 4, SellPrice: 1250},
		},
		// high-quantity line whose per-unit share is well under a cent
		"bulk": {
			{Quantity: 1000, SellPrice: 13},
			{Quantity: 1, SellPrice: 87000},
		},
	}

	for name, items := range carts {
		res, err := Calculate(items, Discount{Value: 100, Type: DiscountTypeFixed}, Options{})
		require.NoError(t, err, name)
		require.Equal(t, int64(10000), res.Discount, name)

		var lineSum int64
		perUnitSum := decimal.Zero
		for i, alloc := range res.Allocations {
			lineSum += alloc.ItemDiscount
			perUnitSum = perUnitSum.Add(alloc.PerUnit.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
		}
		assert.Equal(t, res.Discount, lineSum, name)
		assert.InDelta(t, float64(res.Discount), perUnitSum.InexactFloat64(), float64(len(items)), name)
	}
}

func TestAllocationDistributesStrandedCents(t *testing.T) {
	// shares 5555.5, 1666.6 and 2777.7 floor to 9998; the two stranded
	// cents must go to the largest remainders
	items := []Item{
		{Quantity: 2, SellPrice: 5000},
		{Quantity: 1, SellPrice: 3000},
		{Quantity: 4, SellPrice: 1250},
	}

	res, err := Calculate(items, Discount{Value: 100, Type: DiscountTypeFixed}, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(5555), res.Allocations[0].ItemDiscount)
	assert.Equal(t, int64(1667), res.Allocations[1].ItemDiscount)
	assert.Equal(t, int64(2778), res.Allocations[2].ItemDiscount)
}

func TestCalculateEmptyCart(t *testing.T) {
	res, err := Calculate(nil, Discount{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Subtotal)
	assert.Equal(t, int64(0), res.GrandTotal)

	// Any fixed discount against an empty cart exceeds the zero headroom.
	_, err = Calculate(nil, Discount{Value: 50, Type: DiscountTypeFixed}, Options{})
	var exceeds *ExceedsMaxError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, int64(0), exceeds.Max)
}

func TestDiscountTypeValid(t *testing.T) {
	assert.True(t, DiscountTypePercent.Valid())
	assert.True(t, DiscountTypeFixed.Valid())
	assert.False(t, DiscountType("").Valid())
	assert.False(t, DiscountType("half-off").Valid())
}
