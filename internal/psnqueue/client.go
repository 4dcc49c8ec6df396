package psnqueue

import (
	"context"

	"github.com/ignite/pixelforum/internal/domain"
)

// TitlesPage is one page of a trophy-titles listing, as returned by
// the PSN API's title-list endpoint.
type TitlesPage struct {
	TotalResults uint32
	Titles       []domain.UserTrophyTitle
}

// TrophySetPage is a single game's full trophy list as returned by the
// PSN API.
type TrophySetPage struct {
	Trophies []domain.Trophy
}

// Client is the network seam to the PlayStation Network API. The
// concrete implementation (internal/psnclient) builds this on
// internal/pkg/httpretry and an OAuth2 token source; tests substitute
// a fake.
type Client interface {
	Authenticate(ctx context.Context, npsso, refreshToken *string) error
	GetProfile(ctx context.Context, onlineID string) (domain.UserPSNProfile, error)
	GetTitles(ctx context.Context, onlineID string, offset uint32) (TitlesPage, error)
	GetTrophySet(ctx context.Context, onlineID, npCommunicationID string) (TrophySetPage, error)
}
