package garden

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Logger is the leveled logger every module writes through. With returns a logger whose
// lines carry a component tag such as "assets" or "render".
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	With(component string) Logger
}

// logSink is shared by a logger and everything derived from it with With.
type logSink struct {
	mu    sync.Mutex
	debug bool
	frame func() uint64
	out   *log.Logger
	err   *log.Logger
}

// GardenLogger writes "[prefix f=<frame> component] LEVEL: message". Debug and info lines go
// to the normal writer, warnings and errors to the error writer.
type GardenLogger struct {
	sink      *logSink
	prefix    string
	component string
}

func NewDefaultLogger(prefix string, debug bool) *GardenLogger {
	return NewGardenLogger(prefix, debug, os.Stdout, os.Stderr)
}

func NewGardenLogger(prefix string, debug bool, out, errOut io.Writer) *GardenLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &GardenLogger{
		sink: &logSink{
			debug: debug,
			out:   log.New(out, "", flags),
			err:   log.New(errOut, "", flags),
		},
		prefix: prefix,
	}
}

// SetFrameSource tags every following line with the frame number fn reports.
func (l *GardenLogger) SetFrameSource(fn func() uint64) {
	l.sink.mu.Lock()
	l.sink.frame = fn
	l.sink.mu.Unlock()
}

func (l *GardenLogger) With(component string) Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &GardenLogger{sink: l.sink, prefix: l.prefix, component: component}
}

func (l *GardenLogger) DebugEnabled() bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.debug
}

func (l *GardenLogger) SetDebug(enabled bool) {
	l.sink.mu.Lock()
	l.sink.debug = enabled
	l.sink.mu.Unlock()
}

func (l *GardenLogger) tag() string {
	l.sink.mu.Lock()
	frame := l.sink.frame
	l.sink.mu.Unlock()

	tag := l.prefix
	if frame != nil {
		tag = fmt.Sprintf("%s f=%d", tag, frame())
	}
	if l.component != "" {
		tag += " " + l.component
	}
	return tag
}

func (l *GardenLogger) write(level Level, format string, args ...any) {
	if level == LevelDebug && !l.DebugEnabled() {
		return
	}
	line := fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
	if tag := l.tag(); tag != "" {
		line = "[" + tag + "] " + line
	}
	if level >= LevelWarn {
		l.sink.err.Print(line)
	} else {
		l.sink.out.Print(line)
	}
}

func (l *GardenLogger) Debugf(format string, args ...any) { l.write(LevelDebug, format, args...) }
func (l *GardenLogger) Infof(format string, args ...any)  { l.write(LevelInfo, format, args...) }
func (l *GardenLogger) Warnf(format string, args ...any)  { l.write(LevelWarn, format, args...) }
func (l *GardenLogger) Errorf(format string, args ...any) { l.write(LevelError, format, args...) }

// LoggingModule installs a GardenLogger that stamps each line with the current frame.
type LoggingModule struct {
	Prefix string
	Debug  bool
	// Out and Err default to stdout and stderr.
	Out io.Writer
	Err io.Writer
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	prefix := m.Prefix
	if prefix == "" {
		prefix = "garden"
	}
	out, errOut := m.Out, m.Err
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	logger := NewGardenLogger(prefix, m.Debug, out, errOut)
	logger.SetFrameSource(app.Frame)
	app.addResources(logger)
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool    { return false }
func (n *nopLogger) SetDebug(bool)         {}
func (n *nopLogger) Debugf(string, ...any) {}
func (n *nopLogger) Infof(string, ...any)  {}
func (n *nopLogger) Warnf(string, ...any)  {}
func (n *nopLogger) Errorf(string, ...any) {}
func (n *nopLogger) With(string) Logger    { return n }

// Logger returns the installed Logger resource, or a no-op logger. Never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	if l, ok := Resource[GardenLogger](app); ok {
		return l
	}
	return NewNopLogger()
}
