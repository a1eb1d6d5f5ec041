// internal/app/store/sessions/filesystem.go
package sessions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gsessions "github.com/gorilla/sessions"
)

// filePrefix is the name prefix gorilla's FilesystemStore uses for session files.
const filePrefix = "session_"

// NewFilesystemStore returns gorilla's FilesystemStore rooted at dir, creating
// dir if needed. Cookies always carry a signed id.
func NewFilesystemStore(dir string, hashKey []byte, lifetime time.Duration, opts gsessions.Options) (*gsessions.FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", dir, err)
	}
	fs := gsessions.NewFilesystemStore(dir, hashKey)
	if opts.Path == "" {
		opts.Path = "/"
	}
	fs.Options = &opts
	fs.MaxAge(int(lifetime / time.Second))
	return fs, nil
}

// DirSweeper removes session files that have not been written for longer
// than the session lifetime.
type DirSweeper struct {
	Dir      string
	Lifetime time.Duration
	now      func() time.Time
}

// NewDirSweeper returns a sweeper for dir.
func NewDirSweeper(dir string, lifetime time.Duration) *DirSweeper {
	return &DirSweeper{Dir: dir, Lifetime: lifetime, now: time.Now}
}

// Sweep deletes expired files and returns how many were removed.
func (d *DirSweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	cutoff := d.now().Add(-d.Lifetime)
	n := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(d.Dir, e.Name())); err == nil {
				n++
			}
		}
	}
	return n, nil
}
