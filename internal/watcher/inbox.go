// Package watcher imports CSV files dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/Sanjit42/naming-service/internal/logger"
)

// Subdirectories of the inbox that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// ImportFunc imports one inbox file. name is the file name relative to the inbox.
type ImportFunc func(ctx context.Context, name string, r io.Reader) error

// Config configures an Inbox.
type Config struct {
	Dir      string
	Pattern  string
	Debounce time.Duration
}

// Inbox watches Dir and imports every file matching Pattern once writes to it
// have been quiet for Debounce. Imported files move to processed/, files whose
// import fails move to failed/.
type Inbox struct {
	cfg    Config
	fn     ImportFunc
	mu     sync.Mutex
	queued map[string]time.Time
}

// New validates cfg and returns an inbox that imports through fn.
func New(cfg Config, fn ImportFunc) (*Inbox, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = "*.csv"
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, fmt.Errorf("invalid inbox pattern %q", cfg.Pattern)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	return &Inbox{cfg: cfg, fn: fn, queued: make(map[string]time.Time)}, nil
}

// Matches reports whether name, relative to the inbox, should be imported.
func (ib *Inbox) Matches(name string) bool {
	ok, err := doublestar.Match(ib.cfg.Pattern, filepath.ToSlash(name))
	return err == nil && ok
}

// ProcessExisting imports the files already waiting in the inbox and returns how many were handled.
func (ib *Inbox) ProcessExisting(ctx context.Context) (int, error) {
	if err := ib.prepare(); err != nil {
		return 0, err
	}
	names, err := doublestar.Glob(os.DirFS(ib.cfg.Dir), ib.cfg.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("glob inbox: %w", err)
	}

	n := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		if filepath.Dir(name) != "." {
			continue
		}
		ib.process(ctx, name)
		n++
	}
	return n, nil
}

// Run imports existing files, then watches the inbox until ctx is done.
func (ib *Inbox) Run(ctx context.Context) error {
	if _, err := ib.ProcessExisting(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(ib.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", ib.cfg.Dir, err)
	}
	logger.InfoLog(ctx, "watching inbox %s for %s", ib.cfg.Dir, ib.cfg.Pattern)

	ticker := time.NewTicker(max(ib.cfg.Debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			ib.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.WarnLog(ctx, "inbox watcher error: %v", err)

		case now := <-ticker.C:
			ib.flush(ctx, now)
		}
	}
}

func (ib *Inbox) prepare() error {
	for _, dir := range []string{ib.cfg.Dir, filepath.Join(ib.cfg.Dir, ProcessedDir), filepath.Join(ib.cfg.Dir, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (ib *Inbox) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	name, err := filepath.Rel(ib.cfg.Dir, event.Name)
	if err != nil || !ib.Matches(name) {
		return
	}

	ib.mu.Lock()
	ib.queued[name] = time.Now()
	ib.mu.Unlock()
}

// flush imports the queued files that have not changed for a full debounce period.
func (ib *Inbox) flush(ctx context.Context, now time.Time) {
	var ready []string
	ib.mu.Lock()
	for name, last := range ib.queued {
		if now.Sub(last) >= ib.cfg.Debounce {
			ready = append(ready, name)
			delete(ib.queued, name)
		}
	}
	ib.mu.Unlock()

	for _, name := range ready {
		if ctx.Err() != nil {
			return
		}
		ib.process(ctx, name)
	}
}

func (ib *Inbox) process(ctx context.Context, name string) {
	path := filepath.Join(ib.cfg.Dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	dest := ProcessedDir
	if err := ib.importFile(ctx, name, path); err != nil {
		logger.ErrorLog(ctx, "inbox import of %s failed: %v", name, err)
		dest = FailedDir
	}

	target := filepath.Join(ib.cfg.Dir, dest, name)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(ib.cfg.Dir, dest, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	}
	if err := os.Rename(path, target); err != nil {
		logger.ErrorLog(ctx, "failed to move %s to %s: %v", name, dest, err)
	}
}

func (ib *Inbox) importFile(ctx context.Context, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ib.fn(ctx, name, f)
}
