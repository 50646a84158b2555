package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

const (
	jsonlExt = ".jsonl"
	idKey    = "id"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line.
// Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL replaces path with records, one per line. The file is written
// to a temp file and renamed into place.
func writeJSONL(path string, records []json.RawMessage) error {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.Write(rec)
		buf.WriteByte('\n')
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Export writes every collection to dir as <collection>.jsonl, one document
// per line with its id under "id". It returns the written paths.
func (s *Store) Export(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	collections, err := s.Collections(ctx)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, c := range collections {
		docs, err := s.Find(ctx, c, nil)
		if err != nil {
			return written, err
		}
		records := make([]json.RawMessage, 0, len(docs))
		for _, d := range docs {
			out := d.Fields.Clone()
			out[idKey] = d.ID
			b, err := json.Marshal(out)
			if err != nil {
				return written, fmt.Errorf("encoding %s/%s: %w", c, d.ID, err)
			}
			records = append(records, b)
		}
		path := filepath.Join(dir, c+jsonlExt)
		if err := writeJSONL(path, records); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	s.log.Infow("exported", "dir", dir, "collections", len(written))
	return written, nil
}

// Import loads every *.jsonl file in dir into the collection named by the
// file. Existing documents with the same id are replaced. The load runs in
// one transaction. Lines that are malformed or lack an id are skipped. It
// returns the number of documents loaded.
func (s *Store) Import(ctx context.Context, dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+jsonlExt))
	if err != nil {
		return 0, err
	}
	sort.Strings(matches)

	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ts := now()
	loaded := 0
	for _, path := range matches {
		collection := strings.TrimSuffix(filepath.Base(path), jsonlExt)
		records, err := readJSONL(path)
		if err != nil {
			return 0, err
		}
		for _, rec := range records {
			var doc types.Fields
			if err := json.Unmarshal(rec, &doc); err != nil {
				continue
			}
			id := doc.String(idKey)
			if id == "" {
				continue
			}
			delete(doc, idKey)
			body, err := encode(doc)
			if err != nil {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
				collection, id, body, ts, ts); err != nil {
				return 0, fmt.Errorf("loading %s/%s: %w", collection, id, err)
			}
			loaded++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	s.log.Infow("imported", "dir", dir, "documents", loaded)
	return loaded, nil
}
