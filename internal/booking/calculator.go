package booking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/goldmandi/booking-engine/internal/model"
)

// PriceScale is the number of decimal places for the per-gram rate.
// Total values round to whole rupees.
const PriceScale int32 = 2

// gramsPerQuote is the divisor that normalizes a quoted price to a per-gram
// price. Gold is quoted per 10 g, silver per kilogram.
var gramsPerQuote = map[model.Metal]decimal.Decimal{
	model.Gold:   decimal.NewFromInt(10),
	model.Silver: decimal.NewFromInt(1000),
}

// ComputeValuation converts a quantity in grams at the given quoted price
// into a monetary valuation:
//
//	pricePerGram = currentPrice / gramsPerQuote, rounded to 2 places
//	totalValue   = pricePerGram * quantity, rounded to whole rupees
//
// Quantity is always in grams for both metals; the quoted-unit difference is
// absorbed entirely by the divisor. A metal outside {gold, silver} is a
// caller bug and returns model.ErrUnknownMetal rather than defaulting.
func ComputeValuation(metal model.Metal, quantity, currentPrice decimal.Decimal) (model.BookingValuation, error) {
	divisor, ok := gramsPerQuote[metal]
	if !ok {
		return model.BookingValuation{}, fmt.Errorf("booking: %w: %q", model.ErrUnknownMetal, metal)
	}

	perGram := currentPrice.Div(divisor).Round(PriceScale)
	total := perGram.Mul(quantity).Round(0)

	return model.BookingValuation{
		PricePerGram: perGram,
		TotalValue:   total,
		Unit:         model.UnitGrams,
	}, nil
}
