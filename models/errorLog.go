package models

import (
	"context"
	"errors"
	"time"

	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/utils"
	"gorm.io/gorm"
)

// ErrorLog is append-only. The fulfillment engine writes one row per
// failed member (member_id set) or per failed batch page (member_id
// nil); operators clear Resolved through the admin frontend.
type ErrorLog struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	MemberId  *int      `gorm:"index" json:"member_id"`
	ShareId   *int      `json:"share_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Resolved  bool      `gorm:"not null;default:false" json:"resolved"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ErrorLog) TableName() string {
	return "errors"
}

type NewErrorLog struct {
	MemberId *int   `json:"member_id"`
	ShareId  *int   `json:"share_id"`
	Comment  string `json:"comment" binding:"required"`
	Resolved bool   `json:"resolved"`
}

var errorLogColumns = map[string]bool{
	"member_id": true, "share_id": true, "resolved": true, "created_at": true,
}

func CreateErrorLog(ctx context.Context, input *NewErrorLog) (*ErrorLog, error) {
	entry := ErrorLog{
		MemberId: input.MemberId,
		ShareId:  input.ShareId,
		Comment:  input.Comment,
		Resolved: input.Resolved,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func GetErrorLog(ctx context.Context, id int) (*ErrorLog, error) {
	db := config.GetDB()
	var entry ErrorLog
	err := db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func ListErrorLogs(ctx context.Context, q ListQuery) ([]ErrorLog, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&ErrorLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&ErrorLog{}), errorLogColumns)
	if err != nil {
		return nil, 0, err
	}
	var entries []ErrorLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// UnresolvedErrorLogs is the monitoring surface: callers poll it after
// a fulfillment run to detect partial failure.
func UnresolvedErrorLogs(ctx context.Context) ([]ErrorLog, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&ErrorLog{}).Where("resolved = false").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []ErrorLog
	if err := db.WithContext(ctx).Where("resolved = false").Order("id").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func UpdateErrorLog(ctx context.Context, id int, input *NewErrorLog) (*ErrorLog, error) {
	entry, err := GetErrorLog(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.MemberId = input.MemberId
	entry.ShareId = input.ShareId
	entry.Comment = input.Comment
	entry.Resolved = input.Resolved

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func DeleteErrorLog(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&ErrorLog{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
