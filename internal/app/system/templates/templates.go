// internal/app/system/templates/templates.go
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Set is a group of templates contributed by one feature. Each file defines
// one or more named templates with {{define "name"}}.
type Set struct {
	Name     string
	FS       fs.FS
	Patterns []string
}

var (
	regMu sync.Mutex
	sets  = map[string]Set{}
)

// Register adds a feature's template set. Features call it from init.
func Register(s Set) {
	regMu.Lock()
	defer regMu.Unlock()
	sets[s.Name] = s
}

func registered() []Set {
	regMu.Lock()
	defer regMu.Unlock()
	names := make([]string, 0, len(sets))
	for n := range sets {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Set, 0, len(names))
	for _, n := range names {
		out = append(out, sets[n])
	}
	return out
}

// Engine holds the parsed templates of every registered set.
type Engine struct {
	dev  bool
	mu   sync.RWMutex
	root *template.Template
	log  *zap.Logger
}

// New returns an unbooted engine. In dev mode templates are re-parsed on
// every render.
func New(dev bool) *Engine {
	return &Engine{dev: dev}
}

// Boot parses all registered sets.
func (e *Engine) Boot(logger *zap.Logger) error {
	e.log = logger
	root, err := parse()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.root = root
	e.mu.Unlock()
	logger.Debug("templates parsed", zap.Int("sets", len(registered())))
	return nil
}

func parse() (*template.Template, error) {
	root := template.New("")
	for _, s := range registered() {
		for _, p := range s.Patterns {
			if _, err := root.ParseFS(s.FS, p); err != nil {
				return nil, fmt.Errorf("parse templates %q (%s): %w", s.Name, p, err)
			}
		}
	}
	return root, nil
}

// Render executes the named template into w with status 200.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	e.RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes the named template into a buffer first so a failed
// render can still produce a clean 500.
func (e *Engine) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	root, err := e.current()
	if err != nil {
		e.fail(w, r, name, err)
		return
	}

	var buf bytes.Buffer
	if err := root.ExecuteTemplate(&buf, name, data); err != nil {
		e.fail(w, r, name, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (e *Engine) current() (*template.Template, error) {
	if e.dev {
		return parse()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.root == nil {
		return nil, fmt.Errorf("template engine not booted")
	}
	return e.root, nil
}

func (e *Engine) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	if e.log != nil {
		e.log.Error("template render failed",
			zap.String("template", name),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
