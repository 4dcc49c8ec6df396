// Package apierr implements the service's error taxonomy: a small set
// of sentinel errors plus three wrapped variants that carry data
// (IdsFromCache, InvalidURL, BadRequestDetail), rendered to HTTP
// status codes by Render.
package apierr

import (
	"errors"
	"fmt"
)

var (
	ErrInternal       = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrNotFound       = errors.New("not found")
	ErrNoContent      = errors.New("no content")
	ErrNoCache        = errors.New("no cache found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAuthTimeout    = errors.New("authentication timeout, please login again")
	ErrWrongPassword  = errors.New("password is wrong")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidUser    = errors.New("invalid username")
	ErrInvalidPass    = errors.New("invalid password")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrBlocked        = errors.New("user is blocked")
	ErrNotActive      = errors.New("user is not activated yet")
	ErrParse          = errors.New("parsing error")
	ErrDatabaseRead   = errors.New("database read error")
	ErrPostgres       = errors.New("postgres error")
	ErrRedis          = errors.New("redis error")
	ErrTimeout        = errors.New("connection timeout")
	ErrConnect        = errors.New("connection error")
	ErrMailService    = errors.New("mail service error")
)

// IdsFromCache is returned by the cache-through layer on a partial or
// total cache miss. IDs lists the entity ids that must be re-fetched
// from the primary store; callers fall back to the store and
// fire-and-forget a cache repair, they never propagate this error to
// an HTTP client.
type IdsFromCache struct {
	IDs []uint32
}

func (e *IdsFromCache) Error() string {
	return fmt.Sprintf("ids not found in cache: %v", e.IDs)
}

// InvalidURL is returned when an outbound request (e.g. to the PSN
// API) was built with a malformed URL.
type InvalidURL struct {
	URL string
}

func (e *InvalidURL) Error() string { return "invalid url: " + e.URL }

// BadRequestDetail carries a user-facing validation message, rendered
// as a 400 whose message is Detail instead of a generic message.
type BadRequestDetail struct {
	Detail string
}

func (e *BadRequestDetail) Error() string { return e.Detail }
