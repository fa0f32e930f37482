package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AccessToken is a long-lived bearer token used for calls to the prepaid service.
type AccessToken struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Principal string            `gorm:"not null;uniqueIndex" json:"principal"`
	Token     string            `gorm:"not null" json:"-"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (AccessToken) TableName() string { return "access_tokens" }

// Expired reports whether the token is past its expiry at now.
func (t AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
