package talk

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/store"
)

type fakeSession struct {
	msgs [][]byte
}

func (f *fakeSession) Send(msg []byte) { f.msgs = append(f.msgs, msg) }

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *store.Pool) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	pool := &store.Pool{DB: db}

	mock.ExpectQuery("SELECT id, name, owner, admin, users FROM talks ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner", "admin", "users"}))

	svc, err := Init(context.Background(), pool)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return svc, mock, pool
}

func TestCreateRegistersRoom(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("INSERT INTO talks").
		WithArgs("general", uint32(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	room, err := svc.Create(context.Background(), "general", 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if room.ID != 7 || room.Owner != 1 {
		t.Fatalf("unexpected room: %+v", room)
	}

	if talks := svc.Talks(1); len(talks) != 1 || talks[0].ID != 7 {
		t.Fatalf("expected owner to see the new room, got %v", talks)
	}
}

func TestJoinAddsMemberAndPersists(t *testing.T) {
	svc, mock, _ := newTestService(t)

	svc.mu.Lock()
	svc.rooms[5] = &domain.Talk{ID: 5, Name: "lobby", Owner: 1}
	svc.mu.Unlock()

	sess := &fakeSession{}
	svc.Connect(2, sess)

	mock.ExpectExec("UPDATE talks SET admin = \\$1, users = \\$2 WHERE id = \\$3").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint32(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Join(context.Background(), 2, 5); err != nil {
		t.Fatalf("Join: %v", err)
	}

	users := svc.Users(2, 5)
	if len(users) != 1 || users[0] != 2 {
		t.Fatalf("expected member 2 to be joined, got %v", users)
	}
	if len(sess.msgs) != 1 || string(sess.msgs[0]) != "joined" {
		t.Fatalf("expected a 'joined' ack, got %v", sess.msgs)
	}
}

func TestJoinUnknownRoomSendsError(t *testing.T) {
	svc, _, _ := newTestService(t)
	sess := &fakeSession{}
	svc.Connect(2, sess)

	if err := svc.Join(context.Background(), 2, 999); err == nil {
		t.Fatal("expected an error for an unknown room")
	}
	if len(sess.msgs) != 1 || string(sess.msgs[0]) != "!!! wrong talk id" {
		t.Fatalf("expected a wrong-talk-id error, got %v", sess.msgs)
	}
}

func TestRemoveRequiresOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.mu.Lock()
	svc.rooms[5] = &domain.Talk{ID: 5, Name: "lobby", Owner: 1, Users: []uint32{2}}
	svc.mu.Unlock()

	sess := &fakeSession{}
	svc.Connect(2, sess)

	if err := svc.Remove(context.Background(), 2, 2, 5); err == nil {
		t.Fatal("expected non-owner removal to fail")
	}
}

func TestDeleteRemovesRoomFromRegistry(t *testing.T) {
	svc, mock, _ := newTestService(t)
	svc.mu.Lock()
	svc.rooms[5] = &domain.Talk{ID: 5, Name: "lobby", Owner: 1}
	svc.mu.Unlock()

	sess := &fakeSession{}
	svc.Connect(1, sess)

	mock.ExpectExec("DELETE FROM talks WHERE id = \\$1").
		WithArgs(uint32(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Delete(context.Background(), 1, 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if talks := svc.Talks(1); len(talks) != 0 {
		t.Fatalf("expected room to be gone, got %v", talks)
	}
}

func TestMessageBroadcastsToRoomMembers(t *testing.T) {
	svc, mock, _ := newTestService(t)
	svc.mu.Lock()
	svc.rooms[5] = &domain.Talk{ID: 5, Name: "lobby", Owner: 1, Users: []uint32{1, 2, 3}}
	svc.mu.Unlock()

	s2, s3 := &fakeSession{}, &fakeSession{}
	svc.Connect(2, s2)
	svc.Connect(3, s3)

	mock.ExpectExec("INSERT INTO public_messages1").
		WithArgs(uint32(5), sqlmock.AnyArg(), "hey", uint32(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	talkID := uint32(5)
	if err := svc.Message(context.Background(), 1, &talkID, 0, "hey"); err != nil {
		t.Fatalf("Message: %v", err)
	}

	if len(s2.msgs) != 1 || string(s2.msgs[0]) != "hey" {
		t.Fatalf("expected member 2 to receive the broadcast, got %v", s2.msgs)
	}
	if len(s3.msgs) != 1 || string(s3.msgs[0]) != "hey" {
		t.Fatalf("expected member 3 to receive the broadcast, got %v", s3.msgs)
	}
}

func TestMessagePrivateSendsToRecipientOnly(t *testing.T) {
	svc, mock, _ := newTestService(t)
	recipient := &fakeSession{}
	svc.Connect(9, recipient)

	mock.ExpectExec("INSERT INTO private_messages1").
		WithArgs(uint32(9), sqlmock.AnyArg(), "hi there", uint32(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := svc.Message(context.Background(), 1, nil, 9, "hi there"); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if len(recipient.msgs) != 1 || string(recipient.msgs[0]) != "hi there" {
		t.Fatalf("expected the private message to be delivered, got %v", recipient.msgs)
	}
}

func TestHistoryReturnsPersistedMessages(t *testing.T) {
	svc, mock, _ := newTestService(t)
	now := time.Now()

	mock.ExpectQuery("SELECT talk_id, time, text, user_id FROM public_messages1").
		WithArgs(uint32(5), 50).
		WillReturnRows(sqlmock.NewRows([]string{"talk_id", "time", "text", "user_id"}).
			AddRow(5, now, "hello", 1))

	msgs, err := svc.History(context.Background(), 5, 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "hello" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}
