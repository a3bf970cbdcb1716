package models

import (
	"context"
	"errors"
	"time"

	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/utils"
	"gorm.io/gorm"
)

// Lead is a pending share order from the public order form, waiting to
// be approved into a member (or merged into an existing one via
// ExistingId).
type Lead struct {
	ID                  int        `gorm:"primaryKey" json:"id"`
	Firstname           string     `gorm:"size:100" json:"firstname"`
	Lastname            string     `gorm:"size:100" json:"lastname"`
	BirthDate           *time.Time `json:"birth_date"`
	OrgName             string     `gorm:"size:255" json:"org_name"`
	OrgNumber           string     `gorm:"size:50" json:"org_number"`
	StreetAddress       string     `gorm:"size:255" json:"street_address"`
	ZipCode             string     `gorm:"size:20" json:"zip_code"`
	Locality            string     `gorm:"size:100" json:"locality"`
	Email               string     `gorm:"size:255;not null" json:"email"`
	Telephone           string     `gorm:"size:50" json:"telephone"`
	ExistingId          int        `json:"existing_id"`
	QuantityShares      int        `gorm:"not null" json:"quantity_shares"`
	GenerateCertificate bool       `gorm:"not null;default:false" json:"generate_certificate"`
	PurchasedAt         *time.Time `json:"purchased_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLead struct {
	Firstname           string     `json:"firstname"`
	Lastname            string     `json:"lastname"`
	BirthDate           *time.Time `json:"birth_date"`
	OrgName             string     `json:"org_name"`
	OrgNumber           string     `json:"org_number"`
	StreetAddress       string     `json:"street_address"`
	ZipCode             string     `json:"zip_code"`
	Locality            string     `json:"locality"`
	Email               string     `json:"email" binding:"required"`
	Telephone           string     `json:"telephone"`
	ExistingId          int        `json:"existing_id"`
	QuantityShares      int        `json:"quantity_shares" binding:"required"`
	GenerateCertificate bool       `json:"generate_certificate"`
	PurchasedAt         *time.Time `json:"purchased_at"`
}

var leadColumns = map[string]bool{
	"firstname": true, "lastname": true, "email": true, "existing_id": true,
	"quantity_shares": true, "created_at": true,
}

func (input *NewLead) assign(lead *Lead) {
	lead.Firstname = input.Firstname
	lead.Lastname = input.Lastname
	lead.BirthDate = input.BirthDate
	lead.OrgName = input.OrgName
	lead.OrgNumber = input.OrgNumber
	lead.StreetAddress = input.StreetAddress
	lead.ZipCode = input.ZipCode
	lead.Locality = input.Locality
	lead.Email = input.Email
	lead.Telephone = input.Telephone
	lead.ExistingId = input.ExistingId
	lead.QuantityShares = input.QuantityShares
	lead.GenerateCertificate = input.GenerateCertificate
	lead.PurchasedAt = input.PurchasedAt
}

func CreateLead(ctx context.Context, input *NewLead) (*Lead, error) {
	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	var lead Lead
	input.assign(&lead)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func GetLead(ctx context.Context, id int) (*Lead, error) {
	db := config.GetDB()
	var lead Lead
	err := db.WithContext(ctx).First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func ListLeads(ctx context.Context, q ListQuery) ([]Lead, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Lead{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Lead{}), leadColumns)
	if err != nil {
		return nil, 0, err
	}
	var leads []Lead
	if err := query.Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func UpdateLead(ctx context.Context, id int, input *NewLead) (*Lead, error) {
	lead, err := GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	input.assign(lead)

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(lead).Error; err != nil {
		return nil, err
	}
	return lead, nil
}

func DeleteLead(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Lead{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
