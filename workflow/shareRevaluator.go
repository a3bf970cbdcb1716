package workflow

import (
	"github.com/shopspring/decimal"
	"github.com/solarpark-se/members_backend/models"
)

// RevaluedShare is one lot whose current value changes in a dividend round.
type RevaluedShare struct {
	ShareId      int
	CurrentValue decimal.Decimal
}

// Revaluation is the outcome of devaluing one member's lots for a
// dividend round. CurrentValue sums every lot that was read, devalued
// or not; Devalued is the total value removed; Dividend is what the
// member is owed (per-share amount times eligible lots).
type Revaluation struct {
	Changed       []RevaluedShare
	CurrentValue  decimal.Decimal
	Devalued      decimal.Decimal
	Dividend      decimal.Decimal
	EligibleCount int
}

// RevalueShares computes the per-lot devaluation for one payment year.
// A lot takes part only when it was purchased before that year; values
// floor at zero. Pure: nothing is persisted here.
func RevalueShares(shares []models.Share, amount decimal.Decimal, paymentYear int) Revaluation {
	rev := Revaluation{
		CurrentValue: decimal.Zero,
		Devalued:     decimal.Zero,
	}

	for _, share := range shares {
		if share.PurchasedAt.Year() >= paymentYear {
			rev.CurrentValue = rev.CurrentValue.Add(share.CurrentValue)
			continue
		}

		rev.EligibleCount++
		newValue := share.CurrentValue.Sub(amount)
		if newValue.IsNegative() {
			newValue = decimal.Zero
		}
		rev.Devalued = rev.Devalued.Add(share.CurrentValue.Sub(newValue))
		rev.CurrentValue = rev.CurrentValue.Add(newValue)
		rev.Changed = append(rev.Changed, RevaluedShare{
			ShareId:      share.ID,
			CurrentValue: newValue,
		})
	}

	rev.Dividend = amount.Mul(decimal.NewFromInt(int64(rev.EligibleCount)))
	return rev
}
