package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Level gates how chatty a Logger is.
type Level int

const (
	// LevelQuiet suppresses everything except warnings.
	LevelQuiet Level = iota
	// LevelInfo reports episode-level progress.
	LevelInfo
	// LevelDebug additionally reports per-tick arbitration decisions.
	LevelDebug
)

// ParseLevel maps a flag value onto a Level. Unknown names fall back to info.
func ParseLevel(name string) Level {
	switch name {
	case "quiet", "warn":
		return LevelQuiet
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelQuiet:
		return "quiet"
	case LevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// Logger is a levelled view over Logf. It is passed explicitly to the
// simulation components instead of a process-wide debug flag. A nil *Logger
// is valid and discards everything.
type Logger struct {
	level  Level
	prefix string
}

// NewLogger returns a Logger writing through Logf at the given level.
func NewLogger(level Level, prefix string) *Logger {
	return &Logger{level: level, prefix: prefix}
}

// With returns a copy of the logger with an additional prefix segment.
func (l *Logger) With(prefix string) *Logger {
	if l == nil {
		return nil
	}
	p := prefix
	if l.prefix != "" {
		p = l.prefix + " " + prefix
	}
	return &Logger{level: l.level, prefix: p}
}

// Level reports the configured level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelQuiet
	}
	return l.level
}

// Warnf always logs unless the logger is nil.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l == nil {
		return
	}
	l.emit("WARN ", format, v...)
}

// Infof logs at LevelInfo and above.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l == nil || l.level < LevelInfo {
		return
	}
	l.emit("", format, v...)
}

// Debugf logs at LevelDebug only.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l == nil || l.level < LevelDebug {
		return
	}
	l.emit("DEBUG ", format, v...)
}

func (l *Logger) emit(tag, format string, v ...interface{}) {
	if l.prefix != "" {
		Logf(tag+"["+l.prefix+"] "+format, v...)
		return
	}
	Logf(tag+format, v...)
}
