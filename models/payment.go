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

// Payment is a scheduled cash disbursement of accrued dividend.
// PaidOut is flipped by the manual banking workflow, never by the
// fulfillment engine.
type Payment struct {
	ID        int             `gorm:"primaryKey" json:"id"`
	MemberId  int             `gorm:"not null;index" json:"member_id"`
	Year      int             `gorm:"not null" json:"year"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaidOut   bool            `gorm:"not null;default:false" json:"paid_out"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	MemberId int             `json:"member_id" binding:"required"`
	Year     int             `json:"year" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	PaidOut  bool            `json:"paid_out"`
}

var paymentColumns = map[string]bool{
	"member_id": true, "year": true, "amount": true, "paid_out": true,
	"created_at": true,
}

func CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	payment := Payment{
		MemberId: input.MemberId,
		Year:     input.Year,
		Amount:   input.Amount,
		PaidOut:  input.PaidOut,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	db := config.GetDB()
	var payment Payment
	err := db.WithContext(ctx).First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func ListPayments(ctx context.Context, q ListQuery) ([]Payment, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Payment{}), paymentColumns)
	if err != nil {
		return nil, 0, err
	}
	var payments []Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func UpdatePayment(ctx context.Context, id int, input *NewPayment) (*Payment, error) {
	payment, err := GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.MemberId = input.MemberId
	payment.Year = input.Year
	payment.Amount = input.Amount
	payment.PaidOut = input.PaidOut

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func DeletePayment(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Payment{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
