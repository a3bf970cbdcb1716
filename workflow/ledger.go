package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solarpark-se/members_backend/models"
	"gorm.io/gorm"
)

// Ledger is the persistence surface the fulfillment engine runs
// against. Transaction hands the closure a ledger scoped to one
// database transaction; error-log writes go through the outer ledger so
// they survive a rolled-back member.
type Ledger interface {
	EconomicsPage(ctx context.Context, offset, limit int) ([]models.Economics, error)
	SharesByMember(ctx context.Context, memberId int) ([]models.Share, error)
	SharesByMemberBeforeYear(ctx context.Context, memberId int, year int) ([]models.Share, error)
	UpdateShareValue(ctx context.Context, shareId int, currentValue decimal.Decimal) error
	InsertShares(ctx context.Context, shares []models.Share) error
	UpdateEconomics(ctx context.Context, id int, update EconomicsUpdate) error
	InsertPayment(ctx context.Context, payment *models.Payment) error
	InsertErrorLog(ctx context.Context, entry *models.ErrorLog) error
	DividendByYear(ctx context.Context, year int) ([]models.Dividend, error)
	MarkDividendCompleted(ctx context.Context, year int) error
	Transaction(ctx context.Context, fn func(tx Ledger) error) error
}

// EconomicsUpdate is the full post-reconciliation aggregate state for
// one member. It is written as a field map underneath so zero values
// (a drained account balance) reach the database.
type EconomicsUpdate struct {
	NrOfShares       int
	TotalInvestment  decimal.Decimal
	CurrentValue     decimal.Decimal
	Reinvested       decimal.Decimal
	AccountBalance   decimal.Decimal
	Disbursed        decimal.Decimal
	LastDividendYear int
	IssuedDividend   time.Time
}

// GormLedger backs the Ledger interface with a *gorm.DB. The engine
// gets its own instance built on the shared pool, never a
// request-scoped session.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) EconomicsPage(ctx context.Context, offset, limit int) ([]models.Economics, error) {
	var records []models.Economics
	err := l.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (l *GormLedger) SharesByMember(ctx context.Context, memberId int) ([]models.Share, error) {
	var shares []models.Share
	err := l.db.WithContext(ctx).
		Where("member_id = ?", memberId).
		Order("purchased_at, id").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (l *GormLedger) SharesByMemberBeforeYear(ctx context.Context, memberId int, year int) ([]models.Share, error) {
	cutoff := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var shares []models.Share
	err := l.db.WithContext(ctx).
		Where("member_id = ? AND purchased_at < ?", memberId, cutoff).
		Order("purchased_at, id").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (l *GormLedger) UpdateShareValue(ctx context.Context, shareId int, currentValue decimal.Decimal) error {
	return l.db.WithContext(ctx).
		Model(&models.Share{}).
		Where("id = ?", shareId).
		Update("current_value", currentValue).Error
}

func (l *GormLedger) InsertShares(ctx context.Context, shares []models.Share) error {
	if len(shares) == 0 {
		return nil
	}
	return l.db.WithContext(ctx).Create(&shares).Error
}

func (l *GormLedger) UpdateEconomics(ctx context.Context, id int, update EconomicsUpdate) error {
	return l.db.WithContext(ctx).
		Model(&models.Economics{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"nr_of_shares":       update.NrOfShares,
			"total_investment":   update.TotalInvestment,
			"current_value":      update.CurrentValue,
			"reinvested":         update.Reinvested,
			"account_balance":    update.AccountBalance,
			"disbursed":          update.Disbursed,
			"last_dividend_year": update.LastDividendYear,
			"issued_dividend":    update.IssuedDividend,
		}).Error
}

func (l *GormLedger) InsertPayment(ctx context.Context, payment *models.Payment) error {
	return l.db.WithContext(ctx).Create(payment).Error
}

func (l *GormLedger) InsertErrorLog(ctx context.Context, entry *models.ErrorLog) error {
	return l.db.WithContext(ctx).Create(entry).Error
}

func (l *GormLedger) DividendByYear(ctx context.Context, year int) ([]models.Dividend, error) {
	var dividends []models.Dividend
	if err := l.db.WithContext(ctx).Where("payment_year = ?", year).Find(&dividends).Error; err != nil {
		return nil, err
	}
	return dividends, nil
}

func (l *GormLedger) MarkDividendCompleted(ctx context.Context, year int) error {
	return l.db.WithContext(ctx).
		Model(&models.Dividend{}).
		Where("payment_year = ?", year).
		Update("completed", true).Error
}

func (l *GormLedger) Transaction(ctx context.Context, fn func(tx Ledger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormLedger{db: tx})
	})
}
