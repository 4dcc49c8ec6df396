package psnqueue

import (
	"testing"
	"time"

	"github.com/ignite/pixelforum/internal/domain"
)

func TestReconcileTrophySetCarriesForwardFirstEarnedDate(t *testing.T) {
	firstEarned := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := []domain.Trophy{
		{TrophyID: 1, EarnedDate: &firstEarned, FirstEarnedDate: &firstEarned},
	}

	newEarned := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh := &domain.UserTrophySet{
		IsVisible: true,
		Trophies: []domain.Trophy{
			{TrophyID: 1, EarnedDate: &newEarned},
		},
	}

	reconcileTrophySet(fresh, old)

	if fresh.Trophies[0].FirstEarnedDate == nil || !fresh.Trophies[0].FirstEarnedDate.Equal(firstEarned) {
		t.Fatalf("expected first_earned_date preserved, got %v", fresh.Trophies[0].FirstEarnedDate)
	}
	if !fresh.Trophies[0].EarnedDate.Equal(newEarned) {
		t.Fatalf("expected fresh earned_date to win when present, got %v", fresh.Trophies[0].EarnedDate)
	}
}

func TestReconcileTrophySetKeepsOldEarnedDateWhenFreshMissesIt(t *testing.T) {
	earned := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := []domain.Trophy{
		{TrophyID: 1, EarnedDate: &earned, FirstEarnedDate: &earned},
	}
	fresh := &domain.UserTrophySet{
		IsVisible: true,
		Trophies:  []domain.Trophy{{TrophyID: 1}},
	}

	reconcileTrophySet(fresh, old)

	if fresh.Trophies[0].EarnedDate == nil {
		t.Fatal("expected earned_date to be carried forward from the old row")
	}
}

func TestReconcileTrophySetHidesRegressedSet(t *testing.T) {
	earned := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := []domain.Trophy{
		{TrophyID: 1, EarnedDate: &earned, FirstEarnedDate: &earned},
		{TrophyID: 2, EarnedDate: &earned, FirstEarnedDate: &earned},
	}
	// fresh sync only reports one of the two previously-earned trophies.
	fresh := &domain.UserTrophySet{
		IsVisible: true,
		Trophies: []domain.Trophy{
			{TrophyID: 1, EarnedDate: &earned},
			{TrophyID: 2},
		},
	}

	reconcileTrophySet(fresh, old)

	if fresh.IsVisible {
		t.Fatal("expected a regressed earned count to hide the trophy set")
	}
}
