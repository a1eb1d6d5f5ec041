// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"context"
	"fmt"
)

// Step names, in the order Bootstrap runs them.
const (
	StepResolveSettings = "resolve settings"
	StepShell           = "construct shell"
	StepDatabase        = "bind database"
	StepKeyValue        = "connect key-value store"
	StepCSRF            = "install csrf protection"
	StepSessions        = "install sessions"
	StepLogging         = "configure logging"
	StepRoutes          = "register routes"
)

// Step is one bootstrap stage. Each step may rely on everything earlier
// steps put on the App.
type Step struct {
	Name string
	Run  func(ctx context.Context, a *App) error
}

// Steps wires the app's lifecycle. The order is fixed: CSRF and session
// middleware must be in the chain before any route is registered.
var Steps = []Step{
	{Name: StepResolveSettings, Run: resolveSettings},
	{Name: StepShell, Run: buildShell},
	{Name: StepDatabase, Run: bindDatabase},
	{Name: StepKeyValue, Run: connectKeyValue},
	{Name: StepCSRF, Run: installCSRF},
	{Name: StepSessions, Run: installSessions},
	{Name: StepLogging, Run: configureLogging},
	{Name: StepRoutes, Run: registerRoutes},
}

// StepError reports the step that stopped bootstrap. Err is the cause and
// is reachable with errors.Is and errors.As.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("bootstrap: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// State is where an App is in its lifecycle.
type State int

const (
	StateStarting State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
