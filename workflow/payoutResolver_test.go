package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solarpark-se/members_backend/models"
)

func TestResolvePayoutAccruesToBalance(t *testing.T) {
	res := ResolvePayout(PayoutInput{
		MemberId:        1,
		PaymentYear:     2024,
		Dividend:        decimal.NewFromInt(200),
		AccountBalance:  decimal.Zero,
		TotalInvestment: decimal.NewFromInt(6000),
		SharePrice:      decimal.NewFromInt(3000),
	})

	if !res.AccountBalance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("balance = %s, want 200", res.AccountBalance)
	}
	if res.Payment != nil {
		t.Errorf("unexpected payment %+v", res.Payment)
	}
	if res.LotsToMint != 0 {
		t.Errorf("lots to mint = %d, want 0", res.LotsToMint)
	}
	if !res.TotalInvestment.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("total investment = %s, want unchanged 6000", res.TotalInvestment)
	}
}

func TestResolvePayoutDrainsBalanceIntoPayment(t *testing.T) {
	res := ResolvePayout(PayoutInput{
		MemberId:       7,
		PaymentYear:    2024,
		Dividend:       decimal.NewFromInt(200),
		AccountBalance: decimal.NewFromInt(150),
		Disbursed:      decimal.NewFromInt(1000),
		PayOut:         true,
		SharePrice:     decimal.NewFromInt(3000),
	})

	if res.Payment == nil {
		t.Fatal("expected a payment")
	}
	if !res.Payment.Amount.Equal(decimal.NewFromInt(350)) {
		t.Errorf("payment amount = %s, want 350", res.Payment.Amount)
	}
	if res.Payment.MemberId != 7 || res.Payment.Year != 2024 {
		t.Errorf("payment = %+v, want member 7 year 2024", res.Payment)
	}
	if res.Payment.PaidOut {
		t.Error("payment must start unpaid")
	}
	if !res.AccountBalance.Equal(decimal.Zero) {
		t.Errorf("balance = %s, want 0", res.AccountBalance)
	}
	if !res.Disbursed.Equal(decimal.NewFromInt(1350)) {
		t.Errorf("disbursed = %s, want 1350", res.Disbursed)
	}
}

func TestResolvePayoutReinvestsFullSharePrices(t *testing.T) {
	res := ResolvePayout(PayoutInput{
		MemberId:        1,
		PaymentYear:     2024,
		Dividend:        decimal.NewFromInt(200),
		AccountBalance:  decimal.NewFromInt(2850),
		Reinvested:      decimal.Zero,
		TotalInvestment: decimal.NewFromInt(6000),
		SharePrice:      decimal.NewFromInt(3000),
	})

	if res.LotsToMint != 1 {
		t.Fatalf("lots to mint = %d, want 1", res.LotsToMint)
	}
	if !res.AccountBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want 50", res.AccountBalance)
	}
	if !res.Reinvested.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("reinvested = %s, want 3000", res.Reinvested)
	}
	if !res.TotalInvestment.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("total investment = %s, want 9000", res.TotalInvestment)
	}
}

func TestResolvePayoutHistoricalSuppressesMinting(t *testing.T) {
	res := ResolvePayout(PayoutInput{
		MemberId:        1,
		PaymentYear:     2020,
		Dividend:        decimal.NewFromInt(200),
		AccountBalance:  decimal.NewFromInt(2850),
		Reinvested:      decimal.NewFromInt(500),
		TotalInvestment: decimal.NewFromInt(6000),
		SharePrice:      decimal.NewFromInt(3000),
		Historical:      true,
	})

	if res.LotsToMint != 0 {
		t.Fatalf("lots to mint = %d, want 0 in historical mode", res.LotsToMint)
	}
	// The balance is still reduced so a later normal run cannot reinvest
	// the same money twice.
	if !res.AccountBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want 50", res.AccountBalance)
	}
	if !res.Reinvested.Equal(decimal.NewFromInt(500)) {
		t.Errorf("reinvested = %s, want unchanged 500", res.Reinvested)
	}
	if !res.TotalInvestment.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("total investment = %s, want unchanged 6000", res.TotalInvestment)
	}
}

func TestMintedShares(t *testing.T) {
	shares := MintedShares(9, 2, decimal.NewFromInt(3000), 2024)

	if len(shares) != 2 {
		t.Fatalf("minted %d lots, want 2", len(shares))
	}
	wantDate := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, share := range shares {
		if share.MemberId != 9 {
			t.Errorf("member = %d, want 9", share.MemberId)
		}
		if !share.InitialValue.Equal(decimal.NewFromInt(3000)) || !share.CurrentValue.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("values = %s/%s, want 3000/3000", share.InitialValue, share.CurrentValue)
		}
		if !share.PurchasedAt.Equal(wantDate) {
			t.Errorf("purchased at = %s, want %s", share.PurchasedAt, wantDate)
		}
		if share.Origin != models.ShareOriginReinvested {
			t.Errorf("origin = %s, want %s", share.Origin, models.ShareOriginReinvested)
		}
	}
}
