// Package talk is the chat room service backing the WebSocket /talk
// surface: room membership, presence, and message fan-out. Grounded
// on original_source/src/handler/talk.rs's TalkService, with the
// actor-mailbox session registry replaced by the goroutine-safe maps
// the Concurrency model (spec.md §5) calls for — "many readers for
// send_message, exclusive for structural mutation" is exactly what
// sync.RWMutex gives a plain map.
package talk

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/store"
)

// Session is the seam to a connected WebSocket client. internal/httpapi
// implements it over a gorilla/websocket connection's outbound writer
// goroutine; Send must never block the caller for long (the
// implementation should buffer or drop rather than stall a broadcast
// over one slow reader).
type Session interface {
	Send(msg []byte)
}

// Service owns the in-memory room registry and session directory. All
// exported methods are safe for concurrent use.
type Service struct {
	store *store.Pool

	mu       sync.RWMutex
	rooms    map[uint32]*domain.Talk
	sessions map[uint32]Session
}

// Init loads every persisted talk room into memory, matching
// TalkService::init's load-all-talks-at-startup behavior.
func Init(ctx context.Context, st *store.Pool) (*Service, error) {
	talks, err := st.ListTalks(ctx)
	if err != nil {
		return nil, fmt.Errorf("talk: init: %w", err)
	}
	rooms := make(map[uint32]*domain.Talk, len(talks))
	for i := range talks {
		t := talks[i]
		rooms[t.ID] = &t
	}
	return &Service{store: st, rooms: rooms, sessions: make(map[uint32]Session)}, nil
}

// Connect registers uid's live session, replacing a previous session
// for the same user if one existed.
func (s *Service) Connect(uid uint32, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[uid] = sess
}

// Disconnect removes uid's live session.
func (s *Service) Disconnect(uid uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, uid)
}

func (s *Service) send(uid uint32, msg []byte) {
	s.mu.RLock()
	sess, ok := s.sessions[uid]
	s.mu.RUnlock()
	if ok {
		sess.Send(msg)
	}
}

func (s *Service) sendError(uid uint32, text string) {
	s.send(uid, []byte("!!! "+text))
}

// Create registers a new chat room owned by owner.
func (s *Service) Create(ctx context.Context, name string, owner uint32) (domain.Talk, error) {
	t := &domain.Talk{Name: name, Owner: owner}
	if err := s.store.InsertTalk(ctx, t); err != nil {
		return domain.Talk{}, fmt.Errorf("talk: create: %w", err)
	}
	s.mu.Lock()
	s.rooms[t.ID] = t
	s.mu.Unlock()
	return *t, nil
}

// Join adds uid to talkID's membership, persisting the updated roster
// and acknowledging "joined" to uid only; the roster is not broadcast.
func (s *Service) Join(ctx context.Context, uid, talkID uint32) error {
	s.mu.Lock()
	room, ok := s.rooms[talkID]
	if !ok {
		s.mu.Unlock()
		s.sendError(uid, "wrong talk id")
		return apierr.ErrNotFound
	}
	if containsUint32(room.Users, uid) {
		s.mu.Unlock()
		s.sendError(uid, "already joined")
		return nil
	}
	room.Users = append(room.Users, uid)
	snapshot := *room
	s.mu.Unlock()

	if err := s.store.UpdateTalkMembers(ctx, &snapshot); err != nil {
		logger.Error("talk: persist join failed", "talk_id", talkID, "user_id", uid, "error", err.Error())
		s.sendError(uid, "join failed")
		return err
	}
	s.send(uid, []byte("joined"))
	return nil
}

// Remove drops targetUID from talkID's membership. Only the room's
// owner may remove a member (matching the original's owner-only
// REMOVE_USER gate).
func (s *Service) Remove(ctx context.Context, actorUID, targetUID, talkID uint32) error {
	s.mu.Lock()
	room, ok := s.rooms[talkID]
	if !ok {
		s.mu.Unlock()
		s.sendError(actorUID, "wrong talk id")
		return apierr.ErrNotFound
	}
	if room.Owner != actorUID {
		s.mu.Unlock()
		s.sendError(actorUID, "wrong user id")
		return apierr.ErrUnauthorized
	}
	room.Users = removeUint32(room.Users, targetUID)
	room.Admin = removeUint32(room.Admin, targetUID)
	snapshot := *room
	s.mu.Unlock()

	if err := s.store.UpdateTalkMembers(ctx, &snapshot); err != nil {
		s.sendError(actorUID, "remove failed")
		return err
	}
	s.send(actorUID, []byte("removed"))
	return nil
}

// Admin promotes targetUID to room-admin. Only the owner may promote.
func (s *Service) Admin(ctx context.Context, actorUID, targetUID, talkID uint32) error {
	s.mu.Lock()
	room, ok := s.rooms[talkID]
	if !ok {
		s.mu.Unlock()
		s.sendError(actorUID, "wrong talk id")
		return apierr.ErrNotFound
	}
	if room.Owner != actorUID {
		s.mu.Unlock()
		s.sendError(actorUID, "wrong user id")
		return apierr.ErrUnauthorized
	}
	if !containsUint32(room.Admin, targetUID) {
		room.Admin = append(room.Admin, targetUID)
	}
	snapshot := *room
	s.mu.Unlock()

	if err := s.store.UpdateTalkMembers(ctx, &snapshot); err != nil {
		s.sendError(actorUID, "admin update failed")
		return err
	}
	s.send(actorUID, []byte("promoted"))
	return nil
}

// Delete removes a room entirely. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, uid, talkID uint32) error {
	s.mu.Lock()
	room, ok := s.rooms[talkID]
	if !ok {
		s.mu.Unlock()
		s.sendError(uid, "wrong talk")
		return apierr.ErrNotFound
	}
	if room.Owner != uid {
		s.mu.Unlock()
		s.sendError(uid, "wrong talk")
		return apierr.ErrUnauthorized
	}
	delete(s.rooms, talkID)
	s.mu.Unlock()

	if err := s.store.DeleteTalk(ctx, talkID); err != nil {
		s.sendError(uid, "wrong talk")
		return err
	}
	s.send(uid, []byte("deleted"))
	return nil
}

// Users returns talkID's membership, sent back to the requesting session.
func (s *Service) Users(requesterUID, talkID uint32) []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[talkID]
	if !ok {
		s.sendError(requesterUID, "wrong talk id")
		return nil
	}
	out := append([]uint32(nil), room.Users...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Talks returns every room uid belongs to, or every room at all when
// uid is the privileged "0" sentinel the original's GetTalks used for
// an unscoped listing.
func (s *Service) Talks(uid uint32) []domain.Talk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Talk
	for _, room := range s.rooms {
		if uid == 0 || room.Owner == uid || containsUint32(room.Users, uid) {
			out = append(out, *room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Message persists and broadcasts a chat message. talkID nil sends a
// private message to toUID instead of a room broadcast, matching the
// original's "pass talk_id for public, None for private" contract.
func (s *Service) Message(ctx context.Context, fromUID uint32, talkID *uint32, toUID uint32, text string) error {
	now := time.Now().UTC()
	if talkID != nil {
		msg := domain.PublicMessage{TalkID: *talkID, Time: now, Text: text, UserID: fromUID}
		if err := s.store.InsertPublicMessage(ctx, msg); err != nil {
			return fmt.Errorf("talk: insert public message: %w", err)
		}
		s.broadcastRoom(*talkID, text)
		return nil
	}

	msg := domain.PrivateMessage{ToID: toUID, Time: now, Text: text, UserID: fromUID}
	if err := s.store.InsertPrivateMessage(ctx, msg); err != nil {
		return fmt.Errorf("talk: insert private message: %w", err)
	}
	s.send(toUID, []byte(text))
	return nil
}

func (s *Service) broadcastRoom(talkID uint32, text string) {
	s.mu.RLock()
	room, ok := s.rooms[talkID]
	var members []uint32
	if ok {
		members = append([]uint32(nil), room.Users...)
	}
	s.mu.RUnlock()
	for _, uid := range members {
		s.send(uid, []byte(text))
	}
}

// History returns a room's public message backlog, newest first.
func (s *Service) History(ctx context.Context, talkID uint32, limit int) ([]domain.PublicMessage, error) {
	return s.store.PublicHistory(ctx, talkID, limit)
}

func containsUint32(xs []uint32, v uint32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func removeUint32(xs []uint32, v uint32) []uint32 {
	out := xs[:0]
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
