package models

import (
	"context"
	"errors"
	"time"

	"github.com/solarpark-se/members_backend/config"
	"github.com/solarpark-se/members_backend/utils"
	"gorm.io/gorm"
)

// Member identity is immutable once created; contact attributes are
// editable through the admin frontend.
type Member struct {
	ID            int        `gorm:"primaryKey" json:"id"`
	Firstname     string     `gorm:"size:100" json:"firstname"`
	Lastname      string     `gorm:"size:100" json:"lastname"`
	OrgName       string     `gorm:"size:255" json:"org_name"`
	OrgNumber     string     `gorm:"size:50" json:"org_number"`
	BirthDate     *time.Time `json:"birth_date"`
	StreetAddress string     `gorm:"size:255" json:"street_address"`
	ZipCode       string     `gorm:"size:20" json:"zip_code"`
	Locality      string     `gorm:"size:100" json:"locality"`
	Telephone     string     `gorm:"size:50" json:"telephone"`
	Email         string     `gorm:"size:255;not null" json:"email" binding:"required"`
	Bank          string     `gorm:"size:100" json:"bank"`
	Swish         string     `gorm:"size:50" json:"swish"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMember struct {
	Firstname     string     `json:"firstname"`
	Lastname      string     `json:"lastname"`
	OrgName       string     `json:"org_name"`
	OrgNumber     string     `json:"org_number"`
	BirthDate     *time.Time `json:"birth_date"`
	StreetAddress string     `json:"street_address"`
	ZipCode       string     `json:"zip_code"`
	Locality      string     `json:"locality"`
	Telephone     string     `json:"telephone"`
	Email         string     `json:"email" binding:"required"`
	Bank          string     `json:"bank"`
	Swish         string     `json:"swish"`
}

var memberColumns = map[string]bool{
	"firstname": true, "lastname": true, "org_name": true, "org_number": true,
	"zip_code": true, "locality": true, "email": true, "created_at": true,
}

func (input *NewMember) validate() error {
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Telephone != "" {
		if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
			return errors.New("invalid telephone number")
		}
	}
	return nil
}

func (input *NewMember) assign(member *Member) {
	member.Firstname = input.Firstname
	member.Lastname = input.Lastname
	member.OrgName = input.OrgName
	member.OrgNumber = input.OrgNumber
	member.BirthDate = input.BirthDate
	member.StreetAddress = input.StreetAddress
	member.ZipCode = input.ZipCode
	member.Locality = input.Locality
	member.Telephone = input.Telephone
	member.Email = input.Email
	member.Bank = input.Bank
	member.Swish = input.Swish
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var member Member
	input.assign(&member)

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func GetMember(ctx context.Context, id int) (*Member, error) {
	db := config.GetDB()
	var member Member
	err := db.WithContext(ctx).First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func ListMembers(ctx context.Context, q ListQuery) ([]Member, int64, error) {
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query, err := q.Apply(db.WithContext(ctx).Model(&Member{}), memberColumns)
	if err != nil {
		return nil, 0, err
	}
	var members []Member
	if err := query.Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func UpdateMember(ctx context.Context, id int, input *NewMember) (*Member, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	member, err := GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	input.assign(member)

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func DeleteMember(ctx context.Context, id int) (bool, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&Member{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
