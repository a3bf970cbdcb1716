package workflow

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/solarpark-se/members_backend/models"
)

// PayoutInput carries one member's aggregate state into a dividend round.
type PayoutInput struct {
	MemberId        int
	PaymentYear     int
	Dividend        decimal.Decimal
	AccountBalance  decimal.Decimal
	Disbursed       decimal.Decimal
	Reinvested      decimal.Decimal
	TotalInvestment decimal.Decimal
	PayOut          bool
	SharePrice      decimal.Decimal
	Historical      bool
}

// PayoutResolution is the resulting aggregate state. Payment is non-nil
// when a disbursement must be recorded; LotsToMint is how many
// reinvestment lots to create (always 0 in historical runs).
type PayoutResolution struct {
	AccountBalance  decimal.Decimal
	Disbursed       decimal.Decimal
	Reinvested      decimal.Decimal
	TotalInvestment decimal.Decimal
	Payment         *models.Payment
	LotsToMint      int
}

// ResolvePayout accrues the dividend onto the account balance, drains
// the balance into a Payment when the member prefers payout, and turns
// whatever full share prices remain into reinvestment lots. Historical
// runs still reduce the balance but mint nothing and leave the
// investment aggregates alone. Pure: nothing is persisted here.
func ResolvePayout(in PayoutInput) PayoutResolution {
	out := PayoutResolution{
		Disbursed:       in.Disbursed,
		Reinvested:      in.Reinvested,
		TotalInvestment: in.TotalInvestment,
	}

	balance := in.AccountBalance.Add(in.Dividend)

	if in.PayOut {
		out.Disbursed = out.Disbursed.Add(balance)
		out.Payment = &models.Payment{
			MemberId: in.MemberId,
			Year:     in.PaymentYear,
			Amount:   balance,
			PaidOut:  false,
		}
		balance = decimal.Zero
	}

	if in.SharePrice.IsPositive() {
		lots := balance.Div(in.SharePrice).Floor().IntPart()
		if lots > 0 {
			minted := in.SharePrice.Mul(decimal.NewFromInt(lots))
			balance = balance.Sub(minted)
			if !in.Historical {
				out.Reinvested = out.Reinvested.Add(minted)
				out.TotalInvestment = out.TotalInvestment.Add(minted)
				out.LotsToMint = int(lots)
			}
		}
	}

	out.AccountBalance = balance
	return out
}

// MintedShares builds the reinvestment lots for one round, dated to the
// last day of the payment year.
func MintedShares(memberId int, lots int, sharePrice decimal.Decimal, paymentYear int) []models.Share {
	yearEnd := time.Date(paymentYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	shares := make([]models.Share, 0, lots)
	for i := 0; i < lots; i++ {
		shares = append(shares, models.Share{
			MemberId:     memberId,
			Comment:      "From internal account",
			InitialValue: sharePrice,
			CurrentValue: sharePrice,
			PurchasedAt:  yearEnd,
			Origin:       models.ShareOriginReinvested,
		})
	}
	return shares
}
