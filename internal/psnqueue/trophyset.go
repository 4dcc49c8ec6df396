package psnqueue

import (
	"context"
	"errors"

	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/store"
)

// upsertTrophySetPreserving writes a freshly fetched trophy set,
// first reconciling it against whatever is already stored so that a
// first_earned_date is never lost and a trophy set that has
// regressed (fewer earned trophies than before, e.g. the account hid
// it) is marked not visible.
//
// Grounded on query_update_user_trophy_set in
// original_source/src/handler/psn.rs.
func (a *Actor) upsertTrophySetPreserving(ctx context.Context, fresh *domain.UserTrophySet) error {
	existing, err := a.store.GetTrophySetTrophies(ctx, fresh.NpID, fresh.NpCommunicationID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil {
		reconcileTrophySet(fresh, existing)
	}

	return a.store.UpsertTrophySet(ctx, fresh)
}

// reconcileTrophySet mutates fresh in place: for each incoming
// trophy, if a matching old trophy already had a first_earned_date,
// that date is carried forward (and, if the incoming trophy has no
// earned_date of its own, the old earned_date is kept too). If the
// number of earned trophies dropped compared to the old set, the
// whole set is flagged not visible.
func reconcileTrophySet(fresh *domain.UserTrophySet, old []domain.Trophy) {
	oldByID := make(map[uint32]domain.Trophy, len(old))
	for _, t := range old {
		oldByID[t.TrophyID] = t
	}

	earnedCount, earnedCountOld := 0, 0
	for i := range fresh.Trophies {
		t := &fresh.Trophies[i]
		if t.EarnedDate != nil {
			earnedCount++
		}
		oldT, ok := oldByID[t.TrophyID]
		if !ok || oldT.FirstEarnedDate == nil {
			continue
		}
		earnedCountOld++
		t.FirstEarnedDate = oldT.FirstEarnedDate
		if t.EarnedDate == nil {
			t.EarnedDate = oldT.EarnedDate
		}
	}

	if earnedCount < earnedCountOld {
		fresh.IsVisible = false
	}
}
