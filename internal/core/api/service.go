// Package api exposes named decision trees over gRPC.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/tree"
	"github.com/solatis/decisiontree/internal/types"
)

// Store persists tree definitions by name. Implemented by *db.TreeStore.
type Store interface {
	Put(ctx context.Context, name string, def types.TreeDefinition) (db.TreeRecord, error)
	Get(ctx context.Context, name string) (db.TreeRecord, error)
	List(ctx context.Context) ([]db.TreeRecord, error)
	Delete(ctx context.Context, name string) error
}

// Service is the named-tree registry. Compiled trees are cached per name;
// a cached *tree.Tree is never mutated; AppendChild swaps in a new one.
type Service struct {
	store  Store
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*entry
}

type entry struct {
	record db.TreeRecord
	tree   *tree.Tree
}

// NewService creates the registry over store.
func NewService(store Store, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		cache:  make(map[string]*entry),
	}, nil
}

// PutTree compiles def and stores it under name, replacing any previous tree.
// Nothing is stored when def does not compile.
func (s *Service) PutTree(ctx context.Context, name string, def types.TreeDefinition) (db.TreeRecord, error) {
	if name == "" {
		return db.TreeRecord{}, fmt.Errorf("%w: tree name is required", errInvalidRequest)
	}

	t, err := tree.New(def)
	if err != nil {
		return db.TreeRecord{}, fmt.Errorf("tree %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Put(ctx, name, t.Definition())
	if err != nil {
		return db.TreeRecord{}, err
	}
	s.cache[name] = &entry{record: rec, tree: t}

	s.logger.InfoContext(ctx, "tree stored", "tree", name, "tree_id", rec.ID, "leaves", len(t.Leaves()))
	return rec, nil
}

// GetTree returns the stored record and compiled tree for name.
func (s *Service) GetTree(ctx context.Context, name string) (db.TreeRecord, *tree.Tree, error) {
	e, err := s.load(ctx, name)
	if err != nil {
		return db.TreeRecord{}, nil, err
	}
	return e.record, e.tree, nil
}

// ListTrees returns every stored tree ordered by name.
func (s *Service) ListTrees(ctx context.Context) ([]db.TreeRecord, error) {
	return s.store.List(ctx)
}

// DeleteTree removes name from the store and the cache.
func (s *Service) DeleteTree(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	delete(s.cache, name)

	s.logger.InfoContext(ctx, "tree deleted", "tree", name)
	return nil
}

// Evaluate runs record through the tree stored under name.
func (s *Service) Evaluate(ctx context.Context, name string, record any) (tree.Result, error) {
	e, err := s.load(ctx, name)
	if err != nil {
		return tree.Result{}, err
	}
	return e.tree.Match(record), nil
}

// AppendChild adds node under the root of the named tree and persists the
// result. The stored and cached tree are unchanged when node is invalid.
func (s *Service) AppendChild(ctx context.Context, name string, node types.NodeDefinition) (types.TreeDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.loadLocked(ctx, name)
	if err != nil {
		return types.TreeDefinition{}, err
	}

	next, err := tree.New(e.tree.Definition())
	if err != nil {
		return types.TreeDefinition{}, fmt.Errorf("tree %q: %w", name, err)
	}
	if _, err := next.AppendChild(node); err != nil {
		return types.TreeDefinition{}, fmt.Errorf("tree %q: %w", name, err)
	}

	def := next.Definition()
	rec, err := s.store.Put(ctx, name, def)
	if err != nil {
		return types.TreeDefinition{}, err
	}
	s.cache[name] = &entry{record: rec, tree: next}

	s.logger.InfoContext(ctx, "child appended", "tree", name, "children", len(def.Children))
	return def, nil
}

func (s *Service) load(ctx context.Context, name string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, name)
}

// loadLocked fills the cache from the store. Caller holds the write lock.
func (s *Service) loadLocked(ctx context.Context, name string) (*entry, error) {
	if e, ok := s.cache[name]; ok {
		return e, nil
	}

	rec, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	def, err := rec.Decode()
	if err != nil {
		return nil, err
	}
	t, err := tree.New(def)
	if err != nil {
		return nil, fmt.Errorf("tree %q: %w", name, err)
	}

	e := &entry{record: rec, tree: t}
	s.cache[name] = e
	s.logger.DebugContext(ctx, "tree loaded", "tree", name, "tree_id", rec.ID)
	return e, nil
}
