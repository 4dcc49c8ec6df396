package store

import (
	"fmt"

	"github.com/ignite/pixelforum/internal/apierr"
)

// patchBuilder composes a "SET col = $n, ..." clause from whichever
// optional fields a partial-update request actually set, replacing
// the original's AsChangeset derive (Rust's Option<T> fields skip a
// column when None) with an explicit typed builder that yields
// (sql, params) rather than a hand-built string.
type patchBuilder struct {
	sets []string
	args []interface{}
}

func (b *patchBuilder) set(col string, val interface{}) {
	b.args = append(b.args, val)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

func (b *patchBuilder) setIfString(col string, val *string) {
	if val != nil {
		b.set(col, *val)
	}
}

func (b *patchBuilder) setIfBool(col string, val *bool) {
	if val != nil {
		b.set(col, *val)
	}
}

// build renders "SET ..." plus the trailing id placeholder for a
// "WHERE id = $n" clause, failing with apierr.ErrBadRequest if the
// caller set no field at all.
func (b *patchBuilder) build(id uint32) (setClause string, idPlaceholder string, args []interface{}, err error) {
	if len(b.sets) == 0 {
		return "", "", nil, fmt.Errorf("%w: no fields to update", apierr.ErrBadRequest)
	}
	args = append(b.args, id)
	idPlaceholder = fmt.Sprintf("$%d", len(args))
	setClause = b.sets[0]
	for _, s := range b.sets[1:] {
		setClause += ", " + s
	}
	return setClause, idPlaceholder, args, nil
}

// TopicPatch carries the optional fields a topic-update request may
// set; a nil field leaves the column untouched.
type TopicPatch struct {
	Title     *string
	Body      *string
	Thumbnail *string
	IsLocked  *bool
	IsVisible *bool
}

// PostPatch carries the optional fields a post-update request may set.
type PostPatch struct {
	Content   *string
	IsLocked  *bool
	IsVisible *bool
}

// UserPatch carries the optional profile fields a user-update request
// may set (username/avatar/signature/show_email, per spec.md's
// mutable-field list — email and privilege are changed through
// dedicated admin/auth flows, not this patch).
type UserPatch struct {
	Username  *string
	AvatarURL *string
	Signature *string
	ShowEmail *bool
}
