package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/smallbiznis/movieshop/internal/entitlement/domain"
)

// Profile is the billing record of one customer.
type Profile struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID           snowflake.ID `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:ux_profiles_user"`
	CreditCardNumber string       `json:"credit_card_number" gorm:"column:credit_card_number;type:varchar(12);not null"`
	CardExpiration   time.Time    `json:"card_expiration" gorm:"column:card_expiration;type:date;not null"`
	AddressLine1     string       `json:"address_line1" gorm:"column:address_line1;type:varchar(100);not null"`
	AddressLine2     string       `json:"address_line2" gorm:"column:address_line2;type:varchar(30)"`
	City             string       `json:"city" gorm:"type:varchar(50);not null"`
	State            string       `json:"state" gorm:"type:char(2);not null"`
	ZIPCode          string       `json:"zip_code" gorm:"column:zip_code;type:char(5);not null"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null"`

	Entitlements []entitlementdomain.Entitlement `json:"-" gorm:"-"`
}

func (Profile) TableName() string { return "profiles" }

// FormatAddress renders "Line1, Line2, City, ST ZIP", skipping an empty Line2.
func FormatAddress(p *Profile) string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	parts = append(parts, p.AddressLine1)
	if strings.TrimSpace(p.AddressLine2) != "" {
		parts = append(parts, p.AddressLine2)
	}
	parts = append(parts, p.City, p.State+" "+p.ZIPCode)
	return strings.Join(parts, ", ")
}
