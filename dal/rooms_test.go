package dal_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/vnkhanh/roompush/dal"
	"github.com/vnkhanh/roompush/models"
	"github.com/vnkhanh/roompush/testutil"
)

func newUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "h"}
	if err := dal.CreateUser(context.Background(), db, &u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &u
}

func TestCreateRoomHasOnlyCreator(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := newUser(t, db, "owner")

	room, err := dal.CreateRoom(ctx, db, "general", 5, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(room.Members) != 1 || room.Members[0].ID != owner.ID {
		t.Fatalf("members = %+v, want only the creator", room.Members)
	}
	if room.MemberCount != 1 {
		t.Errorf("MemberCount = %d, want 1", room.MemberCount)
	}

	if _, err := dal.CreateRoom(ctx, db, "empty", 0, owner.ID); !errors.Is(err, dal.ErrInvalidMaxSize) {
		t.Errorf("expected ErrInvalidMaxSize, got %v", err)
	}
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := newUser(t, db, "owner")
	bob := newUser(t, db, "bob")
	carol := newUser(t, db, "carol")

	room, err := dal.CreateRoom(ctx, db, "pair", 2, owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := dal.JoinRoom(ctx, db, room.ID, bob.ID); err != nil {
		t.Fatalf("bob join: %v", err)
	}
	if err := dal.JoinRoom(ctx, db, room.ID, bob.ID); !errors.Is(err, dal.ErrAlreadyMember) {
		t.Errorf("second join: expected ErrAlreadyMember, got %v", err)
	}
	if err := dal.JoinRoom(ctx, db, room.ID, carol.ID); !errors.Is(err, dal.ErrRoomFull) {
		t.Errorf("join full room: expected ErrRoomFull, got %v", err)
	}
	if err := dal.JoinRoom(ctx, db, "missing", carol.ID); !errors.Is(err, dal.ErrRoomNotFound) {
		t.Errorf("unknown room: expected ErrRoomNotFound, got %v", err)
	}
	if err := dal.JoinRoom(ctx, db, room.ID, "ghost"); !errors.Is(err, dal.ErrUserNotFound) {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}

	got, err := dal.GetRoom(ctx, db, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MemberCount != 2 || len(got.Members) != 2 {
		t.Fatalf("room = %+v, want 2 members", got)
	}
	// join order is preserved
	if got.Members[0].ID != owner.ID || got.Members[1].ID != bob.ID {
		t.Errorf("member order = %+v", got.Members)
	}

	// both sides of the relation agree
	u, _ := dal.GetUserByID(ctx, db, bob.ID)
	if len(u.Rooms) != 1 || u.Rooms[0] != room.ID {
		t.Errorf("bob.Rooms = %v, want [%s]", u.Rooms, room.ID)
	}
}

// The test database has a single connection, so these joins run one at a
// time. The capacity guard under real parallelism relies on postgres row
// locking; TestJoinUsesSeatCounter pins the guard itself.
func TestManyJoinersRespectCapacity(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := newUser(t, db, "owner")

	const capacity = 4
	room, err := dal.CreateRoom(ctx, db, "crowded", capacity, owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	var users []*models.User
	for i := 0; i < 10; i++ {
		users = append(users, newUser(t, db, fmt.Sprintf("u%d", i)))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
		full   int
	)
	for _, u := range users {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := dal.JoinRoom(ctx, db, room.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, dal.ErrRoomFull):
				full++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	if joined != capacity-1 {
		t.Errorf("joined = %d, want %d", joined, capacity-1)
	}
	if full != len(users)-(capacity-1) {
		t.Errorf("rejected = %d, want %d", full, len(users)-(capacity-1))
	}

	got, _ := dal.GetRoom(ctx, db, room.ID)
	if len(got.Members) != capacity || got.MemberCount != capacity {
		t.Errorf("room has %d members (count %d), want %d", len(got.Members), got.MemberCount, capacity)
	}
}

func TestJoinUsesSeatCounter(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := newUser(t, db, "owner")
	bob := newUser(t, db, "bob")

	room, err := dal.CreateRoom(ctx, db, "held", 3, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	// two seats reserved by joins still in flight, no membership rows yet
	if err := db.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("member_count", 3).Error; err != nil {
		t.Fatal(err)
	}

	if err := dal.JoinRoom(ctx, db, room.ID, bob.ID); !errors.Is(err, dal.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	var rows int64
	db.Model(&models.RoomMember{}).Where("room_id = ?", room.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("membership rows = %d, want 1", rows)
	}
}

func TestListRooms(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")

	if _, err := dal.CreateRoom(ctx, db, "one", 3, alice.ID); err != nil {
		t.Fatal(err)
	}
	r2, _ := dal.CreateRoom(ctx, db, "two", 3, bob.ID)
	if err := dal.JoinRoom(ctx, db, r2.ID, alice.ID); err != nil {
		t.Fatal(err)
	}

	all, err := dal.ListRooms(ctx, db, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("ListRooms returned %d rooms, want 2", len(all))
	}

	page, _ := dal.ListRooms(ctx, db, 1, 1)
	if len(page) != 1 {
		t.Errorf("limit 1 returned %d rooms", len(page))
	}

	mine, err := dal.ListRoomsByUser(ctx, db, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("alice is in %d rooms, want 2", len(mine))
	}
	bobs, _ := dal.ListRoomsByUser(ctx, db, bob.ID)
	if len(bobs) != 1 || bobs[0].ID != r2.ID {
		t.Errorf("bob rooms = %+v, want only %s", bobs, r2.ID)
	}
	for _, r := range bobs {
		if len(r.Members) != 2 {
			t.Errorf("room %s members = %+v", r.Name, r.Members)
		}
	}

	none, err := dal.ListRoomsByUser(ctx, db, "nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("unknown user rooms = %v, %v", none, err)
	}
}

func TestRoomRecipients(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")

	room, _ := dal.CreateRoom(ctx, db, "r", 5, alice.ID)
	_ = dal.JoinRoom(ctx, db, room.ID, bob.ID)
	_ = dal.SetSubscription(ctx, db, bob.ID, models.Subscription(`{"endpoint":"https://p/1"}`))

	got, err := dal.RoomRecipients(ctx, db, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("recipients = %+v", got)
	}
	if got[0].UserID != alice.ID || !got[0].Subscription.IsZero() {
		t.Errorf("alice recipient = %+v", got[0])
	}
	if got[1].UserID != bob.ID || got[1].Subscription.IsZero() {
		t.Errorf("bob recipient = %+v", got[1])
	}

	if _, err := dal.RoomRecipients(ctx, db, "missing"); !errors.Is(err, dal.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}
