package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// Level tags a line for styling and log severity.
type Level int

const (
	LevelInfo Level = iota
	LevelHeading
	LevelProgress
	LevelSuccess
	LevelMuted
	LevelError
	LevelRule
)

// Sink receives finished progress lines.
type Sink interface {
	WriteLine(level Level, line string) error
}

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#8B949E")
)

// TerminalSink writes styled lines to a terminal.
type TerminalSink struct {
	w      io.Writer
	styles map[Level]lipgloss.Style
}

// NewTerminalSink returns a sink styling for w. When w is not a terminal
// the renderer falls back to plain text.
func NewTerminalSink(w io.Writer) *TerminalSink {
	r := lipgloss.NewRenderer(w)
	return &TerminalSink{
		w: w,
		styles: map[Level]lipgloss.Style{
			LevelInfo:     r.NewStyle(),
			LevelHeading:  r.NewStyle().Bold(true).Foreground(accent),
			LevelProgress: r.NewStyle().Foreground(warning),
			LevelSuccess:  r.NewStyle().Foreground(success),
			LevelMuted:    r.NewStyle().Foreground(dim),
			LevelError:    r.NewStyle().Foreground(danger),
			LevelRule:     r.NewStyle().Foreground(info),
		},
	}
}

func (s *TerminalSink) WriteLine(level Level, line string) error {
	style, ok := s.styles[level]
	if !ok {
		style = s.styles[LevelInfo]
	}
	_, err := fmt.Fprintln(s.w, style.Render(line))
	return err
}

// WriterSink writes plain lines to any writer, such as a log file.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLine(_ Level, line string) error {
	_, err := fmt.Fprintln(s.w, ansi.Strip(line))
	return err
}

// FileSink is a WriterSink that owns its file.
type FileSink struct {
	WriterSink
	f *os.File
}

// NewFileSink opens path for appending, creating parent directories.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating progress log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening progress log: %w", err)
	}
	return &FileSink{WriterSink: WriterSink{w: f}, f: f}, nil
}

func (s *FileSink) Close() error {
	return s.f.Close()
}

// LogSink forwards lines to a zap logger. Error lines are logged at warn.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) WriteLine(level Level, line string) error {
	if level == LevelRule {
		return nil
	}
	line = ansi.Strip(line)
	if level == LevelError {
		s.log.Warn(line)
	} else {
		s.log.Info(line)
	}
	return nil
}
