package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/utils"
	"gorm.io/gorm"
)

// Economics is the per-member aggregate ledger. Outside a running
// fulfillment it mirrors the member's share lots:
//
//	nr_of_shares     == count(lots)
//	total_investment == sum(lot.initial_value)
//	current_value    == sum(lot.current_value)
//
// AccountBalance holds undistributed dividend; Disbursed accumulates
// paid-out dividend; LastDividendYear guards against a year being
// applied twice.
type Economics struct {
	ID               int             `gorm:"primaryKey" json:"id"`
	MemberId         int             `gorm:"not null;uniqueIndex" json:"member_id"`
	NrOfShares       int             `gorm:"not null;default:0" json:"nr_of_shares"`
	TotalInvestment  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_investment"`
	CurrentValue     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"current_value"`
	Reinvested       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"reinvested"`
	AccountBalance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"account_balance"`
	PayOut           bool            `gorm:"not null;default:false" json:"pay_out"`
	Disbursed        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"disbursed"`
	LastDividendYear int             `gorm:"not null;default:0" json:"last_dividend_year"`
	IssuedDividend   *time.Time      `json:"issued_dividend"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEconomics struct {
	MemberId         int             `json:"member_id" binding:"required"`
	NrOfShares       int             `json:"nr_of_shares"`
	TotalInvestment  decimal.Decimal `json:"total_investment"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	Reinvested       decimal.Decimal `json:"reinvested"`
	AccountBalance   decimal.Decimal `json:"account_balance"`
	PayOut           bool            `json:"pay_out"`
	Disbursed        decimal.Decimal `json:"disbursed"`
	LastDividendYear int             `json:"last_dividend_year"`
	IssuedDividend   *time.Time      `json:"issued_dividend"`
}

var economicsColumns = map[string]bool{
	"member_id": true, "nr_of_shares": true, "pay_out": true,
	"last_dividend_year": true, "created_at": true,
}

func (input *NewEconomics) assign(eco *Economics) {
	eco.MemberId = input.MemberId
	eco.NrOfShares = input.NrOfShares
	eco.TotalInvestment = input.TotalInvestment
	eco.CurrentValue = input.CurrentValue
	eco.Reinvested = input.Reinvested
	eco.AccountBalance = input.AccountBalance
	eco.PayOut = input.PayOut
	eco.Disbursed = input.Disbursed
	eco.LastDividendYear = input.LastDividendYear
	eco.IssuedDividend = input.IssuedDividend
}

func CreateEconomics(ctx context.Context, input *NewEconomics) (*Economics, error) {
	var eco Economics
	input.assign(&eco)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&eco).Error; err != nil {
		return nil, err
	}
	return &eco, nil
}

func GetEconomics(ctx context.Context, id int) (*Economics, error) {
	db := config.GetDB()
	var eco Economics
	err := db.WithContext(ctx).First(&eco, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &eco, nil
}

func GetEconomicsByMember(ctx context.Context, memberId int) (*Economics, error) {
	db := config.GetDB()
	var eco Economics
	err := db.WithContext(ctx).Where("member_id = ?", memberId).First(&eco).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &eco, nil
}

func ListEconomics(ctx context.Context, q ListQuery) ([]Economics, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Economics{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Economics{}), economicsColumns)
	if err != nil {
		return nil, 0, err
	}
	var records []Economics
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func CountEconomics(ctx context.Context) (int64, error) {
	db := config.GetDB()
	var total int64
	if err := db.WithContext(ctx).Model(&Economics{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func UpdateEconomics(ctx context.Context, id int, input *NewEconomics) (*Economics, error) {
	eco, err := GetEconomics(ctx, id)
	if err != nil {
		return nil, err
	}
	input.assign(eco)

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(eco).Error; err != nil {
		return nil, err
	}
	return eco, nil
}

func DeleteEconomics(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Economics{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
