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

// Dividend is the per-year declaration of the amount to distribute per
// share. Completed flips true exactly once, after a fulfillment run has
// attempted every member (even when some of them failed).
type Dividend struct {
	ID               int             `gorm:"primaryKey" json:"id"`
	DividendPerShare decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"dividend_per_share"`
	PaymentYear      int             `gorm:"not null;uniqueIndex" json:"payment_year"`
	Completed        bool            `gorm:"not null;default:false" json:"completed"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDividend struct {
	DividendPerShare decimal.Decimal `json:"dividend_per_share" binding:"required"`
	PaymentYear      int             `json:"payment_year" binding:"required"`
	Completed        bool            `json:"completed"`
}

var dividendColumns = map[string]bool{
	"payment_year": true, "completed": true, "created_at": true,
}

func CreateDividend(ctx context.Context, input *NewDividend) (*Dividend, error) {
	dividend := Dividend{
		DividendPerShare: input.DividendPerShare,
		PaymentYear:      input.PaymentYear,
		Completed:        input.Completed,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&dividend).Error; err != nil {
		return nil, err
	}
	return &dividend, nil
}

func GetDividend(ctx context.Context, id int) (*Dividend, error) {
	db := config.GetDB()
	var dividend Dividend
	err := db.WithContext(ctx).First(&dividend, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dividend, nil
}

// GetDividendByYear returns all declarations for the year; callers
// treat anything other than exactly one as a precondition failure.
func GetDividendByYear(ctx context.Context, year int) ([]Dividend, error) {
	db := config.GetDB()
	var dividends []Dividend
	if err := db.WithContext(ctx).Where("payment_year = ?", year).Find(&dividends).Error; err != nil {
		return nil, err
	}
	return dividends, nil
}

func ListDividends(ctx context.Context, q ListQuery) ([]Dividend, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Dividend{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Dividend{}), dividendColumns)
	if err != nil {
		return nil, 0, err
	}
	var dividends []Dividend
	if err := query.Find(&dividends).Error; err != nil {
		return nil, 0, err
	}
	return dividends, total, nil
}

func UpdateDividend(ctx context.Context, id int, input *NewDividend) (*Dividend, error) {
	dividend, err := GetDividend(ctx, id)
	if err != nil {
		return nil, err
	}
	dividend.DividendPerShare = input.DividendPerShare
	dividend.PaymentYear = input.PaymentYear
	dividend.Completed = input.Completed

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(dividend).Error; err != nil {
		return nil, err
	}
	return dividend, nil
}

func DeleteDividend(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Dividend{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
