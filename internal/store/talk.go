package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/pixelforum/internal/domain"
)

// GetTalk loads a chat room by id.
func (p *Pool) GetTalk(ctx context.Context, id uint32) (*domain.Talk, error) {
	var t domain.Talk
	var admin, users pq.Int32Array
	err := p.DB.QueryRowContext(ctx,
		`SELECT id, name, owner, admin, users FROM talks WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Owner, &admin, &users)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get talk: %w", err)
	}
	t.Admin = int32ArrayToUint32(admin)
	t.Users = int32ArrayToUint32(users)
	return &t, nil
}

// ListTalks returns every chat room, used to populate the in-memory
// room registry at startup.
func (p *Pool) ListTalks(ctx context.Context) ([]domain.Talk, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT id, name, owner, admin, users FROM talks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list talks: %w", err)
	}
	defer rows.Close()

	var out []domain.Talk
	for rows.Next() {
		var t domain.Talk
		var admin, users pq.Int32Array
		if err := rows.Scan(&t.ID, &t.Name, &t.Owner, &admin, &users); err != nil {
			return nil, fmt.Errorf("store: scan talk: %w", err)
		}
		t.Admin = int32ArrayToUint32(admin)
		t.Users = int32ArrayToUint32(users)
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTalk creates a new chat room.
func (p *Pool) InsertTalk(ctx context.Context, t *domain.Talk) error {
	return p.DB.QueryRowContext(ctx,
		`INSERT INTO talks (name, owner, admin, users) VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Name, t.Owner, uint32ArrayToInt32(t.Admin), uint32ArrayToInt32(t.Users),
	).Scan(&t.ID)
}

// UpdateTalkMembers persists the current admin/user membership lists.
func (p *Pool) UpdateTalkMembers(ctx context.Context, t *domain.Talk) error {
	_, err := p.DB.ExecContext(ctx,
		`UPDATE talks SET admin = $1, users = $2 WHERE id = $3`,
		uint32ArrayToInt32(t.Admin), uint32ArrayToInt32(t.Users), t.ID)
	return err
}

// DeleteTalk removes a chat room.
func (p *Pool) DeleteTalk(ctx context.Context, id uint32) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM talks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete talk: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertPublicMessage appends a broadcast message to a talk room's history.
func (p *Pool) InsertPublicMessage(ctx context.Context, m domain.PublicMessage) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO public_messages1 (talk_id, time, text, user_id) VALUES ($1, $2, $3, $4)`,
		m.TalkID, m.Time, m.Text, m.UserID)
	return err
}

// InsertPrivateMessage appends a direct message to its recipient's history.
func (p *Pool) InsertPrivateMessage(ctx context.Context, m domain.PrivateMessage) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO private_messages1 (to_id, time, text, user_id) VALUES ($1, $2, $3, $4)`,
		m.ToID, m.Time, m.Text, m.UserID)
	return err
}

// PublicHistory returns the most recent public messages for a room, newest first.
func (p *Pool) PublicHistory(ctx context.Context, talkID uint32, limit int) ([]domain.PublicMessage, error) {
	rows, err := p.DB.QueryContext(ctx,
		`SELECT talk_id, time, text, user_id FROM public_messages1 WHERE talk_id = $1 ORDER BY time DESC LIMIT $2`,
		talkID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: public history: %w", err)
	}
	defer rows.Close()

	var out []domain.PublicMessage
	for rows.Next() {
		var m domain.PublicMessage
		if err := rows.Scan(&m.TalkID, &m.Time, &m.Text, &m.UserID); err != nil {
			return nil, fmt.Errorf("store: scan public message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func int32ArrayToUint32(a pq.Int32Array) []uint32 {
	out := make([]uint32, len(a))
	for i, v := range a {
		out[i] = uint32(v)
	}
	return out
}

func uint32ArrayToInt32(a []uint32) pq.Int32Array {
	out := make(pq.Int32Array, len(a))
	for i, v := range a {
		out[i] = int32(v)
	}
	return out
}
