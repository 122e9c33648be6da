package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/decisiontree/internal/types"
)

// TreeRecord is one row of the trees table.
type TreeRecord struct {
	ID         types.TreeID `db:"tree_id"`
	Name       string       `db:"name"`
	Definition string       `db:"definition"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

// Decode parses the stored JSON definition.
func (r TreeRecord) Decode() (types.TreeDefinition, error) {
	var def types.TreeDefinition
	if err := json.Unmarshal([]byte(r.Definition), &def); err != nil {
		return types.TreeDefinition{}, fmt.Errorf("decode tree %q: %w", r.Name, err)
	}
	return def, nil
}

// TreeStore persists tree definitions by name. It stores definitions as
// given; compiling them is the caller's job.
type TreeStore struct {
	queries *Queries
	now     func() time.Time
}

// NewTreeStore creates a store over the named queries.
func NewTreeStore(queries *Queries) *TreeStore {
	return &TreeStore{
		queries: queries,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Put inserts or replaces the definition stored under name. Replacing keeps
// the original tree ID and creation time.
func (s *TreeStore) Put(ctx context.Context, name string, def types.TreeDefinition) (TreeRecord, error) {
	if name == "" {
		return TreeRecord{}, fmt.Errorf("tree name must not be empty")
	}

	data, err := json.Marshal(def)
	if err != nil {
		return TreeRecord{}, fmt.Errorf("encode tree %q: %w", name, err)
	}
	if len(data) > types.MaxDefinitionSize {
		return TreeRecord{}, fmt.Errorf("tree %q: %w (%d bytes)", name, types.ErrDefinitionTooLarge, len(data))
	}

	now := s.now()
	if _, err := s.queries.Exec(ctx, "upsert-tree", string(types.NewTreeID()), name, string(data), now, now); err != nil {
		return TreeRecord{}, fmt.Errorf("store tree %q: %w", name, err)
	}
	return s.Get(ctx, name)
}

// Get returns the record stored under name, or ErrTreeNotFound.
func (s *TreeStore) Get(ctx context.Context, name string) (TreeRecord, error) {
	var rec TreeRecord
	err := s.queries.Get(ctx, "get-tree-by-name", &rec, name)
	if errors.Is(err, sql.ErrNoRows) {
		return TreeRecord{}, fmt.Errorf("%w: %q", types.ErrTreeNotFound, name)
	}
	if err != nil {
		return TreeRecord{}, fmt.Errorf("load tree %q: %w", name, err)
	}
	return rec, nil
}

// List returns every stored tree ordered by name.
func (s *TreeStore) List(ctx context.Context) ([]TreeRecord, error) {
	var recs []TreeRecord
	if err := s.queries.Select(ctx, "list-trees", &recs); err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	return recs, nil
}

// Delete removes the tree stored under name, or returns ErrTreeNotFound.
func (s *TreeStore) Delete(ctx context.Context, name string) error {
	res, err := s.queries.Exec(ctx, "delete-tree", name)
	if err != nil {
		return fmt.Errorf("delete tree %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tree %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", types.ErrTreeNotFound, name)
	}
	return nil
}
