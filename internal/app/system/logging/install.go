// internal/app/system/logging/install.go
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// installed tracks every logger handed to Install that has not been undone.
// The most recent one owns zap.L(), zap.S() and the standard log package.
var installed struct {
	mu      sync.Mutex
	entries []*installEntry
	undo    func()
}

type installEntry struct {
	logger *zap.Logger
}

// Install makes l the process-wide logger: zap.L(), zap.S() and the standard
// library log package. The returned func removes l again. Undoing the most
// recent install hands the globals to the previous logger still installed;
// undoing an older one leaves the globals alone. Once every install is
// undone the state from before the first Install is back.
func Install(l *zap.Logger) func() {
	installed.mu.Lock()
	defer installed.mu.Unlock()

	e := &installEntry{logger: l}
	installed.entries = append(installed.entries, e)
	activate(l)

	var once sync.Once
	return func() { once.Do(func() { uninstall(e) }) }
}

func uninstall(e *installEntry) {
	installed.mu.Lock()
	defer installed.mu.Unlock()

	idx := -1
	for i, cur := range installed.entries {
		if cur == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	wasActive := idx == len(installed.entries)-1
	installed.entries = append(installed.entries[:idx], installed.entries[idx+1:]...)
	if !wasActive {
		return
	}

	if n := len(installed.entries); n > 0 {
		activate(installed.entries[n-1].logger)
		return
	}
	installed.undo()
	installed.undo = nil
}

// activate points the globals at l. The stored undo always returns to the
// state from before the first Install.
func activate(l *zap.Logger) {
	if installed.undo != nil {
		installed.undo()
	}
	restoreGlobals := zap.ReplaceGlobals(l)
	restoreStd := zap.RedirectStdLog(l)
	installed.undo = func() {
		restoreStd()
		restoreGlobals()
	}
}
