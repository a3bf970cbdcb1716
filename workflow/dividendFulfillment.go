package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/models"
)

var (
	// ErrFulfillmentInProgress means another run already holds the
	// distributed lock for this payment year.
	ErrFulfillmentInProgress = errors.New("dividend fulfillment already in progress")

	ErrNoShares = errors.New("no shares found")

	ErrNoUniqueDividend = errors.New("no dividend found or no unique dividend")
)

// Fulfillment runs one dividend round over the whole member base. It
// pages through economics records in id order, reconciles each member
// in its own transaction, and records failures in the error log instead
// of aborting the run.
type Fulfillment struct {
	Ledger     Ledger
	Logger     *logrus.Logger
	Locker     *redislock.Client
	SharePrice decimal.Decimal
	BatchSize  int
	LockTTL    time.Duration
	Now        func() time.Time
}

func NewFulfillment(ledger Ledger, logger *logrus.Logger) *Fulfillment {
	return &Fulfillment{
		Ledger:     ledger,
		Logger:     logger,
		Locker:     config.GetRedisLock(),
		SharePrice: config.SharePrice(),
		BatchSize:  config.EconomicsBatchSize(),
		LockTTL:    15 * time.Minute,
		Now:        time.Now,
	}
}

// Run reconciles every member against the declared dividend for
// paymentYear. totalMembers bounds the paging loop so a run terminates
// even when pages keep failing. Historical mode reduces balances from
// pre-cutoff lots only and never mints reinvestment shares.
func (f *Fulfillment) Run(ctx context.Context, paymentYear int, totalMembers int64, historical bool) error {
	if f.Locker != nil {
		lock, err := f.Locker.Obtain(ctx, fmt.Sprintf("lock:dividend-fulfillment:%d", paymentYear), f.LockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return ErrFulfillmentInProgress
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				f.Logger.WithField("payment_year", paymentYear).Warn("failed to release fulfillment lock")
			}
		}()
	}

	dividends, err := f.Ledger.DividendByYear(ctx, paymentYear)
	if err != nil {
		return err
	}
	if len(dividends) != 1 {
		return ErrNoUniqueDividend
	}
	amount := dividends[0].DividendPerShare

	for offset := 0; offset < int(totalMembers); offset += f.BatchSize {
		page, err := f.Ledger.EconomicsPage(ctx, offset, f.BatchSize)
		if err != nil || len(page) == 0 {
			f.logBatchFailure(ctx, offset, err)
			continue
		}

		for i := range page {
			eco := page[i]
			if err := f.reconcileMember(ctx, &eco, amount, paymentYear, historical); err != nil {
				f.logMemberFailure(ctx, eco.MemberId, err)
			}
		}
	}

	if err := f.Ledger.MarkDividendCompleted(ctx, paymentYear); err != nil {
		config.LogError(f.Logger, "workflow", "Run", "marking dividend completed", paymentYear, err)
		return err
	}

	f.Logger.WithFields(logrus.Fields{
		"payment_year": paymentYear,
		"historical":   historical,
	}).Info("dividend fulfillment finished")
	return nil
}

// reconcileMember applies one dividend round to one member. All writes
// happen inside a single transaction; a member already at or past
// paymentYear is skipped so re-entry never double-applies.
func (f *Fulfillment) reconcileMember(ctx context.Context, eco *models.Economics, amount decimal.Decimal, paymentYear int, historical bool) error {
	if eco.LastDividendYear >= paymentYear {
		return nil
	}

	var shares []models.Share
	var err error
	if historical {
		shares, err = f.Ledger.SharesByMemberBeforeYear(ctx, eco.MemberId, paymentYear)
	} else {
		shares, err = f.Ledger.SharesByMember(ctx, eco.MemberId)
	}
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		return ErrNoShares
	}

	rev := RevalueShares(shares, amount, paymentYear)
	res := ResolvePayout(PayoutInput{
		MemberId:        eco.MemberId,
		PaymentYear:     paymentYear,
		Dividend:        rev.Dividend,
		AccountBalance:  eco.AccountBalance,
		Disbursed:       eco.Disbursed,
		Reinvested:      eco.Reinvested,
		TotalInvestment: eco.TotalInvestment,
		PayOut:          eco.PayOut,
		SharePrice:      f.SharePrice,
		Historical:      historical,
	})

	currentValue := rev.CurrentValue
	nrOfShares := len(shares)
	if historical {
		// The lot set was filtered to the cutoff, so the read sum
		// covers only part of the portfolio. Carry the stored
		// aggregates forward and subtract what this round removed.
		currentValue = eco.CurrentValue.Sub(rev.Devalued)
		nrOfShares = eco.NrOfShares
	}
	if res.LotsToMint > 0 {
		currentValue = currentValue.Add(f.SharePrice.Mul(decimal.NewFromInt(int64(res.LotsToMint))))
		nrOfShares += res.LotsToMint
	}

	return f.Ledger.Transaction(ctx, func(tx Ledger) error {
		for _, changed := range rev.Changed {
			if err := tx.UpdateShareValue(ctx, changed.ShareId, changed.CurrentValue); err != nil {
				return err
			}
		}
		if res.Payment != nil {
			if err := tx.InsertPayment(ctx, res.Payment); err != nil {
				return err
			}
		}
		if res.LotsToMint > 0 {
			minted := MintedShares(eco.MemberId, res.LotsToMint, f.SharePrice, paymentYear)
			if err := tx.InsertShares(ctx, minted); err != nil {
				return err
			}
		}
		return tx.UpdateEconomics(ctx, eco.ID, EconomicsUpdate{
			NrOfShares:       nrOfShares,
			TotalInvestment:  res.TotalInvestment,
			CurrentValue:     currentValue,
			Reinvested:       res.Reinvested,
			AccountBalance:   res.AccountBalance,
			Disbursed:        res.Disbursed,
			LastDividendYear: paymentYear,
			IssuedDividend:   f.Now().UTC(),
		})
	})
}

func (f *Fulfillment) logMemberFailure(ctx context.Context, memberId int, cause error) {
	comment := "Error: no dividend done, details: " + cause.Error()
	if errors.Is(cause, ErrNoShares) {
		comment = "Error: no shares found, no dividends done"
	}

	entry := &models.ErrorLog{MemberId: &memberId, Comment: comment}
	if err := f.Ledger.InsertErrorLog(ctx, entry); err != nil {
		config.LogError(f.Logger, "workflow", "logMemberFailure", "writing error log", memberId, err)
	}
}

func (f *Fulfillment) logBatchFailure(ctx context.Context, offset int, cause error) {
	entry := &models.ErrorLog{
		Comment: fmt.Sprintf("Error: no dividends done for members in batch %d", offset),
	}
	if err := f.Ledger.InsertErrorLog(ctx, entry); err != nil {
		config.LogError(f.Logger, "workflow", "logBatchFailure", "writing error log", offset, err)
	}
	if cause != nil {
		config.LogError(f.Logger, "workflow", "logBatchFailure", "loading economics batch", offset, cause)
	}
}
