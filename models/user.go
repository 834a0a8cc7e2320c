package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string       `gorm:"column:id;primaryKey;size:36" json:"id"`
	Username     string       `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	Email        string       `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Password     string       `gorm:"column:password;size:255;not null" json:"-"` // bcrypt hash
	Subscription Subscription `gorm:"column:subscription;type:text" json:"-"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Rooms is filled from room_members on read, never persisted through this struct.
	Rooms []string `gorm:"-" json:"rooms"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasSubscription reports whether a push subscription is stored for the user.
func (u User) HasSubscription() bool {
	return !u.Subscription.IsZero()
}

// Member is the public projection of a user embedded in room listings.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
