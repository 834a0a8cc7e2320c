package dal

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vnkhanh/roompush/models"
)

// CreateUser inserts u. A taken email or username yields ErrUserExists.
func CreateUser(ctx context.Context, db *gorm.DB, u *models.User) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", u.Email, u.Username).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}

	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	return getUser(ctx, db, "email = ?", email)
}

// GetUserByID loads the user together with the ids of the rooms it belongs to.
func GetUserByID(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	return getUser(ctx, db, "id = ?", id)
}

func getUser(ctx context.Context, db *gorm.DB, query string, arg any) (*models.User, error) {
	var u models.User
	err := db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	rooms, err := roomIDsOf(ctx, db, u.ID)
	if err != nil {
		return nil, err
	}
	u.Rooms = rooms
	return &u, nil
}

func roomIDsOf(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	rooms := []string{}
	if err := db.WithContext(ctx).Model(&models.RoomMember{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("room_id", &rooms).Error; err != nil {
		return nil, fmt.Errorf("query user rooms: %w", err)
	}
	return rooms, nil
}

// SetSubscription replaces (or with a zero value, clears) the stored push subscription.
func SetSubscription(ctx context.Context, db *gorm.DB, userID string, sub models.Subscription) error {
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("subscription", sub)
	if res.Error != nil {
		return fmt.Errorf("update subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// StaleSubscription names a subscription the push service reported as gone.
type StaleSubscription struct {
	UserID       string
	Subscription models.Subscription
}

// ClearSubscriptions drops stale subscriptions. A row is only cleared while it
// still holds the stale blob, so a subscription saved in the meantime stays.
// It returns how many rows were cleared.
func ClearSubscriptions(ctx context.Context, db *gorm.DB, stale []StaleSubscription) (int64, error) {
	var cleared int64
	for _, s := range stale {
		if s.Subscription.IsZero() {
			continue
		}
		res := db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND subscription = ?", s.UserID, s.Subscription).
			Update("subscription", gorm.Expr("NULL"))
		if res.Error != nil {
			return cleared, fmt.Errorf("clear subscription of %s: %w", s.UserID, res.Error)
		}
		cleared += res.RowsAffected
	}
	return cleared, nil
}
