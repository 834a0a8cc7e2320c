package dal

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vnkhanh/roompush/models"
)

// CreateRoom inserts a room whose only member is the creator.
func CreateRoom(ctx context.Context, db *gorm.DB, name string, maxMembers int, creatorID string) (*models.Room, error) {
	if maxMembers < 1 {
		return nil, ErrInvalidMaxSize
	}

	room := models.Room{
		Name:        name,
		MaxMembers:  maxMembers,
		MemberCount: 1,
		CreatedBy:   creatorID,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
		if err := tx.Create(&models.RoomMember{RoomID: room.ID, UserID: creatorID}).Error; err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := attachMembers(ctx, db, []*models.Room{&room}); err != nil {
		return nil, err
	}
	return &room, nil
}

// JoinRoom adds userID to the room. The capacity check and the increment are
// one conditional UPDATE, and the unique (room_id, user_id) index backs the
// membership check, so concurrent joins cannot overfill a room or add a user
// twice.
func JoinRoom(ctx context.Context, db *gorm.DB, roomID, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.Select("id").Where("id = ?", roomID).First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("query room: %w", err)
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return fmt.Errorf("query user: %w", err)
		}
		if users == 0 {
			return ErrUserNotFound
		}

		var existing int64
		if err := tx.Model(&models.RoomMember{}).
			Where("room_id = ? AND user_id = ?", roomID, userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("query membership: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		res := tx.Model(&models.Room{}).
			Where("id = ? AND member_count < max_members", roomID).
			UpdateColumn("member_count", gorm.Expr("member_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("reserve seat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRoomFull
		}

		if err := tx.Create(&models.RoomMember{RoomID: roomID, UserID: userID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("insert membership: %w", err)
		}
		return nil
	})
}

func GetRoom(ctx context.Context, db *gorm.DB, roomID string) (*models.Room, error) {
	var room models.Room
	err := db.WithContext(ctx).Where("id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query room: %w", err)
	}
	if err := attachMembers(ctx, db, []*models.Room{&room}); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns every room, oldest first. limit <= 0 means no limit.
func ListRooms(ctx context.Context, db *gorm.DB, limit, offset int) ([]models.Room, error) {
	q := db.WithContext(ctx).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return findRooms(ctx, db, q)
}

// ListRoomsByUser returns the rooms userID is a member of, oldest first.
func ListRoomsByUser(ctx context.Context, db *gorm.DB, userID string) ([]models.Room, error) {
	q := db.WithContext(ctx).
		Where("id IN (?)", db.Model(&models.RoomMember{}).Select("room_id").Where("user_id = ?", userID)).
		Order("created_at ASC, id ASC")
	return findRooms(ctx, db, q)
}

func findRooms(ctx context.Context, db *gorm.DB, q *gorm.DB) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	ptrs := make([]*models.Room, len(rooms))
	for i := range rooms {
		ptrs[i] = &rooms[i]
	}
	if err := attachMembers(ctx, db, ptrs); err != nil {
		return nil, err
	}
	return rooms, nil
}

type memberRow struct {
	RoomID   string
	ID       string
	Username string
	Email    string
}

// attachMembers fills Room.Members in join order with a single query.
func attachMembers(ctx context.Context, db *gorm.DB, rooms []*models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]string, len(rooms))
	byID := make(map[string]*models.Room, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
		byID[r.ID] = r
		r.Members = []models.Member{}
	}

	var rows []memberRow
	if err := db.WithContext(ctx).Table("room_members").
		Select("room_members.room_id, users.id, users.username, users.email").
		Joins("JOIN users ON users.id = room_members.user_id").
		Where("room_members.room_id IN ?", ids).
		Order("room_members.id ASC").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("query members: %w", err)
	}
	for _, row := range rows {
		r := byID[row.RoomID]
		r.Members = append(r.Members, models.Member{ID: row.ID, Username: row.Username, Email: row.Email})
	}
	return nil
}

// Recipient is a room member as seen by the notification fan-out.
type Recipient struct {
	UserID       string
	Email        string
	Subscription models.Subscription
}

// RoomRecipients lists every member of the room in join order, with their
// stored subscription (possibly empty).
func RoomRecipients(ctx context.Context, db *gorm.DB, roomID string) ([]Recipient, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("query room: %w", err)
	}
	if n == 0 {
		return nil, ErrRoomNotFound
	}

	var users []models.User
	if err := db.WithContext(ctx).
		Select("users.id, users.email, users.subscription").
		Joins("JOIN room_members ON room_members.user_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("room_members.id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}

	out := make([]Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, Recipient{UserID: u.ID, Email: u.Email, Subscription: u.Subscription})
	}
	return out, nil
}
