package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/pixelforum/internal/domain"
)

const psnTitlesByNpIDQuery = `SELECT np_id, np_communication_id, progress, earned_platinum, earned_gold,
	earned_silver, earned_bronze, last_update_date, is_visible
	FROM psn_user_trophy_titles WHERE np_id = $1 ORDER BY last_update_date DESC OFFSET $2 LIMIT 20`

const psnSetByNpIDQuery = `SELECT np_id, np_communication_id, is_visible
	FROM psn_user_trophy_sets WHERE np_id = $1 AND np_communication_id = $2`

// insertTrophyTitleQuery upserts one title row, keeping whichever side
// (existing row vs. incoming) has the larger progress/earned counts —
// PSN trophy progress is monotonic, so the larger value is always the
// more current one regardless of the order titles arrive in.
const insertTrophyTitleQuery = `INSERT INTO psn_user_trophy_titles
	(np_id, np_communication_id, progress, earned_platinum, earned_gold, earned_silver, earned_bronze, last_update_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (np_id, np_communication_id) DO UPDATE SET
		progress = GREATEST(psn_user_trophy_titles.progress, EXCLUDED.progress),
		earned_platinum = GREATEST(psn_user_trophy_titles.earned_platinum, EXCLUDED.earned_platinum),
		earned_gold = GREATEST(psn_user_trophy_titles.earned_gold, EXCLUDED.earned_gold),
		earned_silver = GREATEST(psn_user_trophy_titles.earned_silver, EXCLUDED.earned_silver),
		earned_bronze = GREATEST(psn_user_trophy_titles.earned_bronze, EXCLUDED.earned_bronze),
		last_update_date = GREATEST(psn_user_trophy_titles.last_update_date, EXCLUDED.last_update_date),
		is_visible = psn_user_trophy_titles.progress <= EXCLUDED.progress`

// GetTrophyTitles returns one page (20 rows) of a linked account's
// per-game trophy progress, most recently updated first.
func (p *Pool) GetTrophyTitles(ctx context.Context, npID string, page uint32) ([]domain.UserTrophyTitle, error) {
	offset := (page - 1) * 20
	rows, err := p.DB.QueryContext(ctx, psnTitlesByNpIDQuery, npID, offset)
	if err != nil {
		return nil, fmt.Errorf("store: get trophy titles: %w", err)
	}
	defer rows.Close()

	var out []domain.UserTrophyTitle
	for rows.Next() {
		var t domain.UserTrophyTitle
		if err := rows.Scan(&t.NpID, &t.NpCommunicationID, &t.Progress, &t.EarnedPlatinum,
			&t.EarnedGold, &t.EarnedSilver, &t.EarnedBronze, &t.LastUpdateDate, &t.IsVisible); err != nil {
			return nil, fmt.Errorf("store: scan trophy title: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertTrophyTitles writes each title with monotonic-max-wins
// semantics; a single failed row does not abort the batch, matching
// the best-effort nature of a background sync. Errors are joined and
// returned after every row has been attempted.
func (p *Pool) UpsertTrophyTitles(ctx context.Context, titles []domain.UserTrophyTitle) error {
	var errs []error
	for _, t := range titles {
		if _, err := p.DB.ExecContext(ctx, insertTrophyTitleQuery,
			t.NpID, t.NpCommunicationID, t.Progress, t.EarnedPlatinum, t.EarnedGold,
			t.EarnedSilver, t.EarnedBronze, t.LastUpdateDate); err != nil {
			errs = append(errs, fmt.Errorf("np_communication_id %s: %w", t.NpCommunicationID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("store: upsert trophy titles: %w", errors.Join(errs...))
	}
	return nil
}

// GetTrophySetMeta loads the existing visibility/identity row for a
// (np_id, np_communication_id) pair, without its trophy array, so
// is_visible can be read without decoding the (potentially large)
// trophy JSON array.
func (p *Pool) GetTrophySetMeta(ctx context.Context, npID, npCommunicationID string) (*domain.UserTrophySet, error) {
	var s domain.UserTrophySet
	err := p.DB.QueryRowContext(ctx, psnSetByNpIDQuery, npID, npCommunicationID).
		Scan(&s.NpID, &s.NpCommunicationID, &s.IsVisible)
	if err != nil {
		return nil, fmt.Errorf("store: get trophy set meta: %w", err)
	}
	return &s, nil
}

// GetTrophySetTrophies loads the trophy_set JSON array for a
// (np_id, np_communication_id) pair. Returns ErrNotFound if no row
// exists yet for this pair (the common case for a game synced for the
// first time).
func (p *Pool) GetTrophySetTrophies(ctx context.Context, npID, npCommunicationID string) ([]domain.Trophy, error) {
	var raw []byte
	err := p.DB.QueryRowContext(ctx,
		`SELECT trophy_set FROM psn_user_trophy_sets WHERE np_id = $1 AND np_communication_id = $2`,
		npID, npCommunicationID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get trophy set trophies: %w", err)
	}
	return decodeTrophies(raw)
}

// UpsertTrophySet writes the full trophy array for a linked account's
// game, overwriting trophy_set and is_visible.
func (p *Pool) UpsertTrophySet(ctx context.Context, s *domain.UserTrophySet) error {
	raw, err := encodeTrophies(s.Trophies)
	if err != nil {
		return fmt.Errorf("store: encode trophy set: %w", err)
	}
	_, err = p.DB.ExecContext(ctx, `
		INSERT INTO psn_user_trophy_sets (np_id, np_communication_id, trophy_set, is_visible)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (np_id, np_communication_id) DO UPDATE SET
			trophy_set = EXCLUDED.trophy_set,
			is_visible = EXCLUDED.is_visible`,
		s.NpID, s.NpCommunicationID, raw, s.IsVisible)
	if err != nil {
		return fmt.Errorf("store: upsert trophy set: %w", err)
	}
	return nil
}
