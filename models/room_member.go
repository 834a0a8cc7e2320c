package models

import "time"

// RoomMember is the single source of truth for membership; both User.Rooms
// and Room.Members are read from it.
type RoomMember struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RoomID   string    `gorm:"column:room_id;size:36;not null;uniqueIndex:idx_room_member" json:"roomId"`
	UserID   string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_room_member;index" json:"userId"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime" json:"joinedAt"`
}

func (RoomMember) TableName() string {
	return "room_members"
}
