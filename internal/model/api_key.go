package model

import (
	"time"

	"gorm.io/gorm"
)

// APIKey is created once at payment verification and never mutated. Expired
// rows are skipped at verification time and swept opportunistically.
type APIKey struct {
	gorm.Model
	Name      string    `json:"name" gorm:"size:100"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	ExpiresIn time.Time `json:"expires_in" gorm:"index"`
	CreatedBy uint      `json:"created_by" gorm:"index;not null"`

	User User `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (k *APIKey) IsExpired() bool {
	return !k.ExpiresIn.IsZero() && time.Now().After(k.ExpiresIn)
}
