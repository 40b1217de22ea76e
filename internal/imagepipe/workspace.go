// internal/imagepipe/workspace.go

package imagepipe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Workspace is the cleanup arena for one handler invocation. Every path it
// hands out is removed by a single Cleanup call.
type Workspace struct {
	dir   string
	mu    sync.Mutex
	paths []string
}

// NewWorkspace returns a workspace rooted at dir.
func NewWorkspace(dir string) *Workspace {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Workspace{dir: dir}
}

// Path registers and returns the location for name inside the workspace.
func (w *Workspace) Path(name string) string {
	p := filepath.Join(w.dir, filepath.Base(name))
	w.mu.Lock()
	w.paths = append(w.paths, p)
	w.mu.Unlock()
	return p
}

// Paths returns the registered paths in creation order.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Cleanup removes every registered path. Paths that were never created are skipped.
func (w *Workspace) Cleanup() {
	w.mu.Lock()
	paths := w.paths
	w.paths = nil
	w.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", p).Msg("failed to remove temporary file")
		}
	}
}
