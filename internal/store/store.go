// Package store is the primary-store (Postgres) repository layer: a
// connection pool plus a registry of statements prepared once at
// startup, queried by name instead of one struct field per query.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Statement names, prepared once in Open and looked up by Pool methods.
const (
	stmtUsersByID     = "users_by_id"
	stmtTopicsByID    = "topics_by_id"
	stmtPostsByID     = "posts_by_id"
	stmtCategoriesAll = "categories_all"
	stmtInsertUser    = "insert_user"
	stmtInsertTopic   = "insert_topic"
	stmtInsertPost    = "insert_post"
	stmtInsertCategory = "insert_category"
	stmtDeleteCategory = "delete_category"
	stmtMaxUserID     = "max_user_id"
	stmtMaxTopicID    = "max_topic_id"
	stmtMaxPostID     = "max_post_id"
	stmtMaxCategoryID = "max_category_id"
)

// registryQueries is the fixed name -> SQL mapping prepared at Open.
// Queries with a variable IN(...) list (UsersByID/TopicsByID/PostsByID)
// are built per-call instead, since database/sql has no native
// support for a variadic placeholder list in a prepared statement.
var registryQueries = map[string]string{
	stmtCategoriesAll: `SELECT id, name, thumbnail, topic_count, post_count FROM categories ORDER BY id`,
	stmtInsertUser: `INSERT INTO users (username, email, hashed_password, avatar_url, signature, show_email, privilege, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
	stmtInsertTopic: `INSERT INTO topics (user_id, category_id, title, body, thumbnail, is_locked, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
	stmtInsertPost: `INSERT INTO posts (user_id, topic_id, category_id, post_id, post_content, is_locked, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
	stmtInsertCategory: `INSERT INTO categories (name, thumbnail, topic_count, post_count) VALUES ($1, $2, 0, 0) RETURNING id`,
	stmtDeleteCategory: `DELETE FROM categories WHERE id = $1`,
	stmtMaxUserID:       `SELECT COALESCE(MAX(id), 0) FROM users`,
	stmtMaxTopicID:      `SELECT COALESCE(MAX(id), 0) FROM topics`,
	stmtMaxPostID:       `SELECT COALESCE(MAX(id), 0) FROM posts`,
	stmtMaxCategoryID:   `SELECT COALESCE(MAX(id), 0) FROM categories`,
}

// Pool wraps a *sql.DB plus every statement prepared at startup,
// looked up by name instead of carrying one field per query.
type Pool struct {
	DB    *sql.DB
	stmts map[string]*sql.Stmt
}

// Open connects to Postgres and prepares the fixed statement registry.
// Per-call IN(...) queries (by-id batch lookups) are not prepared here.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*Pool, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	p := &Pool{DB: db, stmts: make(map[string]*sql.Stmt, len(registryQueries))}
	for name, query := range registryQueries {
		stmt, err := db.PrepareContext(ctx, query)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("store: prepare %s: %w", name, err)
		}
		p.stmts[name] = stmt
	}
	return p, nil
}

// Close releases every prepared statement and the underlying pool.
func (p *Pool) Close() error {
	for _, stmt := range p.stmts {
		stmt.Close()
	}
	return p.DB.Close()
}

func (p *Pool) stmt(name string) *sql.Stmt {
	s, ok := p.stmts[name]
	if !ok {
		panic("store: unknown prepared statement " + name)
	}
	return s
}

// idPlaceholders builds a "$1,$2,...,$n" placeholder list for a
// variadic IN(...) clause, and the matching []interface{} args.
func idPlaceholders(ids []uint32) (string, []interface{}) {
	args := make([]interface{}, len(ids))
	ph := ""
	for i, id := range ids {
		if i > 0 {
			ph += ","
		}
		ph += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return ph, args
}
