// Package index implements the index writer: buffered updates and
// deletes that become searchable only at commit, plus the
// wipe-and-rebuild open handshake with an optional rolling backup.
package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cairnforge/vfsearch/internal/db"
	"github.com/cairnforge/vfsearch/internal/domain"
)

// store is the consumer interface for writer operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Rename(ctx context.Context, src, dst string) error
}

// Config holds writer settings.
type Config struct {
	// KeyPrefix is prepended to every document root path to form the
	// storage key.
	KeyPrefix string
	// BackupPrefix is where the previous index generation is parked
	// during a fresh open.
	BackupPrefix string
	// Backup enables the rolling snapshot before the open-time wipe.
	Backup bool
}

// Writer buffers document updates and deletes until Commit. This
// writer only supports full-rebuild semantics: opening it fresh wipes
// every existing document (after the optional backup snapshot).
type Writer struct {
	store store
	cfg   Config
	log   *zap.Logger

	mu      sync.Mutex
	pending map[string]*domain.Document // keyed by root path; later Update wins
	deletes []string                    // path prefixes, applied before updates
	closed  bool
}

// Open creates a writer. With create=true it performs the
// wipe-and-rebuild handshake: snapshot the current documents under the
// backup prefix (if enabled), then clear all existing documents.
func Open(ctx context.Context, s store, cfg Config, create bool, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		store:   s,
		cfg:     cfg,
		log:     log,
		pending: make(map[string]*domain.Document),
	}
	if create {
		if err := w.wipe(ctx); err != nil {
			return nil, fmt.Errorf("open index writer: %w", err)
		}
	}
	return w, nil
}

// Update buffers an upsert. A second Update for the same path before
// Commit overwrites the prior pending document.
func (w *Writer) Update(path string, doc *domain.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrWriterClosed
	}
	w.pending[path] = doc
	return nil
}

// Delete buffers removal of every document whose stored root path is
// the given prefix or lies under it as a path segment. "/a/b" removes
// "/a/b" and "/a/b/c" but not "/a/bc".
func (w *Writer) Delete(pathPrefix string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrWriterClosed
	}
	w.deletes = append(w.deletes, pathPrefix)
	return nil
}

// Commit applies buffered deletes, then buffered updates, and clears
// the buffers. Failures leave the buffers intact so callers can retry
// the commit.
func (w *Writer) Commit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrWriterClosed
	}

	for _, prefix := range w.deletes {
		if err := w.deleteSubtree(ctx, prefix); err != nil {
			return fmt.Errorf("commit deletes %q: %w", prefix, err)
		}
	}

	if len(w.pending) > 0 {
		items := make([]db.HashSetItem, 0, len(w.pending))
		for path, doc := range w.pending {
			items = append(items, db.HashSetItem{
				Key:    w.cfg.KeyPrefix + path,
				Fields: buildHashFields(doc),
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
		if err := w.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("commit updates: %w", err)
		}
	}

	w.log.Debug("index commit",
		zap.Int("updated", len(w.pending)),
		zap.Int("delete_prefixes", len(w.deletes)),
	)
	w.pending = make(map[string]*domain.Document)
	w.deletes = nil
	return nil
}

// Close discards uncommitted changes and rejects further operations.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	if len(w.pending) > 0 || len(w.deletes) > 0 {
		w.log.Warn("closing index writer with uncommitted changes",
			zap.Int("pending", len(w.pending)),
			zap.Int("delete_prefixes", len(w.deletes)),
		)
	}
	w.closed = true
	w.pending = nil
	w.deletes = nil
	return nil
}

// deleteSubtree removes matching documents. SCAN over-matches on raw
// string prefixes, so candidates are filtered to exact path or
// segment children before deletion.
func (w *Writer) deleteSubtree(ctx context.Context, prefix string) error {
	keys, err := w.store.Scan(ctx, w.cfg.KeyPrefix+escapeGlob(prefix)+"*")
	if err != nil {
		return err
	}

	var victims []string
	for _, key := range keys {
		path := strings.TrimPrefix(key, w.cfg.KeyPrefix)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			victims = append(victims, key)
		}
	}
	if len(victims) == 0 {
		return nil
	}
	return w.store.DelMulti(ctx, victims)
}

// wipe snapshots the current index under the backup prefix (replacing
// the previous snapshot) and clears all documents. Without backups it
// just clears.
func (w *Writer) wipe(ctx context.Context) error {
	keys, err := w.store.Scan(ctx, w.cfg.KeyPrefix+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if !w.cfg.Backup {
		return w.store.DelMulti(ctx, keys)
	}

	old, err := w.store.Scan(ctx, w.cfg.BackupPrefix+"*")
	if err != nil {
		return err
	}
	if err := w.store.DelMulti(ctx, old); err != nil {
		return err
	}

	for _, key := range keys {
		path := strings.TrimPrefix(key, w.cfg.KeyPrefix)
		if err := w.store.Rename(ctx, key, w.cfg.BackupPrefix+path); err != nil {
			return err
		}
	}
	w.log.Info("index backed up and cleared",
		zap.Int("documents", len(keys)),
		zap.String("backup_prefix", w.cfg.BackupPrefix),
	)
	return nil
}

// escapeGlob escapes SCAN MATCH metacharacters in a literal prefix.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)
