package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Room struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	MaxMembers  int       `gorm:"column:max_members;not null" json:"maxMembers"`
	MemberCount int       `gorm:"column:member_count;not null;default:0" json:"memberCount"`
	CreatedBy   string    `gorm:"column:created_by;size:36;index" json:"createdBy"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Members in join order, loaded from room_members.
	Members []Member `gorm:"-" json:"members"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
