// Package conlog is a small leveled console logger with colored
// highlight variants for sweep progress output.
package conlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger writes timestamped, leveled lines to a single destination.
// Color output degrades automatically when the destination is not a
// terminal.
type Logger struct {
	name string
	out  io.Writer

	magenta *color.Color
	green   *color.Color
	cyan    *color.Color
	yellow  *color.Color
	red     *color.Color
}

// New returns a logger writing to stdout.
func New(name string) *Logger {
	return NewWithWriter(name, color.Output)
}

// NewWithWriter returns a logger for tests or redirected output.
func NewWithWriter(name string, out io.Writer) *Logger {
	return &Logger{
		name:    name,
		out:     out,
		magenta: color.New(color.FgMagenta),
		green:   color.New(color.FgGreen),
		cyan:    color.New(color.FgCyan),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
	}
}

// Infof logs an uncolored info line.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit("INFO", nil, format, args...)
}

// Errorf logs a red error line.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit("ERROR", l.red, format, args...)
}

// Bannerf logs a magenta info line, used for configuration and problem
// banners.
func (l *Logger) Bannerf(format string, args ...interface{}) {
	l.emit("INFO", l.magenta, format, args...)
}

// Donef logs a green info line, used when a problem block completes.
func (l *Logger) Donef(format string, args ...interface{}) {
	l.emit("INFO", l.green, format, args...)
}

// Medianf logs a cyan info line, used for per-problem median blocks.
func (l *Logger) Medianf(format string, args ...interface{}) {
	l.emit("INFO", l.cyan, format, args...)
}

// Summaryf logs a yellow info line, used for the final grouped summary.
func (l *Logger) Summaryf(format string, args ...interface{}) {
	l.emit("INFO", l.yellow, format, args...)
}

func (l *Logger) emit(level string, c *color.Color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c != nil {
		msg = c.Sprint(msg)
	}
	fmt.Fprintf(l.out, "%s %s %s %s\n",
		time.Now().Format("2006-01-02 15:04:05"), l.name, level, msg)
}

// Fatalf logs an error line and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Errorf(format, args...)
	os.Exit(1)
}
