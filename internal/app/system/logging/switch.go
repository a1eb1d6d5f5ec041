// internal/app/system/logging/switch.go
package logging

import (
	"io"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Switch is a zapcore.Core whose destination can be replaced after loggers
// built on it have been handed out. Loggers derived with With follow the
// replacement too.
type Switch struct {
	target atomic.Pointer[coreBox]
}

type coreBox struct{ core zapcore.Core }

// NewSwitch returns a Switch that starts out writing to initial.
func NewSwitch(initial zapcore.Core) *Switch {
	s := &Switch{}
	s.Set(initial)
	return s
}

// Set replaces the destination core.
func (s *Switch) Set(c zapcore.Core) {
	if c == nil {
		c = zapcore.NewNopCore()
	}
	s.target.Store(&coreBox{core: c})
}

func (s *Switch) current() zapcore.Core { return s.target.Load().core }

// Logger builds a logger on s with caller info and error stacktraces.
func (s *Switch) Logger() *zap.Logger {
	return zap.New(s, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func (s *Switch) Enabled(l zapcore.Level) bool { return s.current().Enabled(l) }

func (s *Switch) With(fields []zapcore.Field) zapcore.Core {
	return &switchWith{parent: s, fields: fields}
}

func (s *Switch) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if s.Enabled(ent.Level) {
		return ce.AddCore(ent, s)
	}
	return ce
}

func (s *Switch) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return s.current().Write(ent, fields)
}

func (s *Switch) Sync() error { return s.current().Sync() }

// switchWith carries fields added by With and applies them to whatever core
// the parent points at when the entry is written.
type switchWith struct {
	parent *Switch
	fields []zapcore.Field
}

func (w *switchWith) Enabled(l zapcore.Level) bool { return w.parent.Enabled(l) }

func (w *switchWith) With(fields []zapcore.Field) zapcore.Core {
	all := make([]zapcore.Field, 0, len(w.fields)+len(fields))
	all = append(all, w.fields...)
	all = append(all, fields...)
	return &switchWith{parent: w.parent, fields: all}
}

func (w *switchWith) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if w.Enabled(ent.Level) {
		return ce.AddCore(ent, w)
	}
	return ce
}

func (w *switchWith) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return w.parent.current().With(w.fields).Write(ent, fields)
}

func (w *switchWith) Sync() error { return w.parent.Sync() }

// ConsoleCore is a console-only core in the process line format, used before
// the file sink exists.
func ConsoleCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(EncoderConfig()), zapcore.Lock(zapcore.AddSync(w)), level)
}
