// Package sqlite implements types.Store on a single SQLite file.
//
// Each document is a JSON body in the documents table, keyed by collection
// and id. The pool holds one connection, so transactions are serialized and
// every ConditionalPatch is a read-modify-write inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Store is a types.Store backed by SQLite.
type Store struct {
	mu     sync.RWMutex
	closed bool
	db     *sql.DB
	path   string
	log    *zap.SugaredLogger
}

var _ types.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// Open creates dataDir if needed and opens (or creates) the database in it.
func Open(ctx context.Context, dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string{}, pragmas...), schemaDDL...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing schema: %w", err)
		}
	}

	s := &Store{db: db, path: path, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Debugw("sqlite store opened", "path", path)
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// begin starts a transaction unless the store is closed.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func encode(f types.Fields) (string, error) {
	if f == nil {
		f = types.Fields{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return string(b), nil
}

func decode(body string) (types.Fields, error) {
	var f types.Fields
	if err := json.Unmarshal([]byte(body), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if f == nil {
		f = types.Fields{}
	}
	return f, nil
}

// load reads one body inside tx.
func load(ctx context.Context, tx *sql.Tx, collection, id string) (types.Fields, error) {
	var body string
	err := tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(body)
}

func save(ctx context.Context, tx *sql.Tx, collection, id string, f types.Fields) error {
	body, err := encode(f)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		body, now(), collection, id)
	return err
}

// Insert stores a new document.
func (s *Store) Insert(ctx context.Context, collection, id string, fields types.Fields) error {
	if id == "" {
		return types.ErrInvalidID
	}
	body, err := encode(fields)
	if err != nil {
		return err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s/%s", types.ErrDuplicateID, collection, id)
	}

	ts := now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, body, ts, ts); err != nil {
		return fmt.Errorf("inserting %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Update sets and unsets fields on an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, set types.Fields, unset []string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	doc, err := load(ctx, tx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range set {
		doc[k] = v
	}
	for _, k := range unset {
		delete(doc, k)
	}
	if err := save(ctx, tx, collection, id, doc); err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Get returns the document body.
func (s *Store) Get(ctx context.Context, collection, id string) (types.Fields, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var body string
	err = db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(body)
}

// Remove deletes the document.
func (s *Store) Remove(ctx context.Context, collection, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Find returns matching documents ordered by id. The filter is applied to
// decoded bodies.
func (s *Store) Find(ctx context.Context, collection string, filter types.Fields) ([]types.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []types.Record{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
		}
		if doc.Matches(filter) {
			results = append(results, types.Record{ID: id, Fields: doc})
		}
	}
	return results, rows.Err()
}

// ConditionalPatch applies patch inside one transaction.
func (s *Store) ConditionalPatch(ctx context.Context, collection, id string, patch types.Patch) (types.Fields, bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	doc, err := load(ctx, tx, collection, id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := doc.ApplyPatch(patch); err != nil {
		return nil, true, err
	}
	if err := save(ctx, tx, collection, id, doc); err != nil {
		return nil, true, err
	}
	if err := tx.Commit(); err != nil {
		return nil, true, err
	}
	return doc, true, nil
}

// Collections returns the names of collections holding at least one
// document.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database. Idempotent.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
