package model

import (
	"time"

	"gorm.io/gorm"
)

const defaultProfilePicture = "https://upload.wikimedia.org/wikipedia/commons/7/7c/Profile_avatar_placeholder_large.png"

type User struct {
	gorm.Model
	Name  string `json:"name" gorm:"not null"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	// Empty for accounts created through Google sign-in.
	Password       string `json:"-"`
	ProfilePicture string `json:"profile_picture"`

	ActivePlanID  *uint      `json:"active_plan_id"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`

	Files       []File       `json:"-"`
	WebsiteURLs []WebsiteURL `json:"-"`
	APIKeys     []APIKey     `json:"-" gorm:"foreignKey:CreatedBy"`
	ActivePlan  *Plan        `json:"-" gorm:"foreignKey:ActivePlanID"`
}

func (u *User) GetPublicProfile() map[string]interface{} {
	picture := u.ProfilePicture
	if picture == "" {
		picture = defaultProfilePicture
	}
	return map[string]interface{}{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"profile_picture": picture,
		"active_plan_id":  u.ActivePlanID,
		"plan_expires_at": u.PlanExpiresAt,
		"created_at":      u.CreatedAt,
	}
}
