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

// Share is one purchased equity unit. CurrentValue only decreases after
// creation (dividend devaluation floors it at zero); lots are never
// deleted by the fulfillment engine, only added through reinvestment.
type Share struct {
	ID           int             `gorm:"primaryKey" json:"id"`
	MemberId     int             `gorm:"not null;index" json:"member_id"`
	Comment      string          `gorm:"size:255" json:"comment"`
	InitialValue decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"initial_value"`
	CurrentValue decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"current_value"`
	PurchasedAt  time.Time       `gorm:"not null" json:"purchased_at"`
	Origin       ShareOrigin     `gorm:"size:20;not null;default:Purchased" json:"origin"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShare struct {
	MemberId     int             `json:"member_id" binding:"required"`
	Comment      string          `json:"comment"`
	InitialValue decimal.Decimal `json:"initial_value" binding:"required"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PurchasedAt  time.Time       `json:"purchased_at" binding:"required"`
	Origin       ShareOrigin     `json:"origin"`
}

var shareColumns = map[string]bool{
	"member_id": true, "purchased_at": true, "initial_value": true,
	"current_value": true, "origin": true, "created_at": true,
}

func (input *NewShare) assign(share *Share) {
	share.MemberId = input.MemberId
	share.Comment = input.Comment
	share.InitialValue = input.InitialValue
	share.CurrentValue = input.CurrentValue
	share.PurchasedAt = input.PurchasedAt
	share.Origin = input.Origin
}

func CreateShare(ctx context.Context, input *NewShare) (*Share, error) {
	if input.InitialValue.IsNegative() || input.CurrentValue.IsNegative() {
		return nil, errors.New("share value cannot be negative")
	}
	if input.CurrentValue.IsZero() {
		input.CurrentValue = input.InitialValue
	}
	if input.Origin == "" {
		input.Origin = ShareOriginPurchased
	}

	var share Share
	input.assign(&share)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func GetShare(ctx context.Context, id int) (*Share, error) {
	db := config.GetDB()
	var share Share
	err := db.WithContext(ctx).First(&share, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func ListShares(ctx context.Context, q ListQuery) ([]Share, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Share{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Share{}), shareColumns)
	if err != nil {
		return nil, 0, err
	}
	var shares []Share
	if err := query.Find(&shares).Error; err != nil {
		return nil, 0, err
	}
	return shares, total, nil
}

// GetSharesByMember returns every lot the member owns, oldest first.
func GetSharesByMember(ctx context.Context, memberId int) ([]Share, error) {
	db := config.GetDB()
	var shares []Share
	err := db.WithContext(ctx).
		Where("member_id = ?", memberId).
		Order("purchased_at, id").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// GetSharesByMemberBeforeYear returns only lots purchased before Jan 1
// of the given year. Historical fulfillment reads through this so lots
// minted by later, already-processed rounds stay untouched.
func GetSharesByMemberBeforeYear(ctx context.Context, memberId int, year int) ([]Share, error) {
	db := config.GetDB()
	cutoff := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var shares []Share
	err := db.WithContext(ctx).
		Where("member_id = ? AND purchased_at < ?", memberId, cutoff).
		Order("purchased_at, id").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func UpdateShare(ctx context.Context, id int, input *NewShare) (*Share, error) {
	if input.InitialValue.IsNegative() || input.CurrentValue.IsNegative() {
		return nil, errors.New("share value cannot be negative")
	}

	share, err := GetShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Origin == "" {
		input.Origin = share.Origin
	}
	input.assign(share)

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(share).Error; err != nil {
		return nil, err
	}
	return share, nil
}

func DeleteShare(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Share{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
