package store

import (
	"encoding/json"

	"github.com/ignite/pixelforum/internal/domain"
)

// Trophy sets are stored as a jsonb column rather than the Postgres
// composite-array literal the original hand-built via string
// formatting — parameterized JSON avoids constructing SQL by string
// concatenation entirely.
func encodeTrophies(trophies []domain.Trophy) ([]byte, error) {
	return json.Marshal(trophies)
}

func decodeTrophies(raw []byte) ([]domain.Trophy, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []domain.Trophy
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
