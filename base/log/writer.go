package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// GlobalWriter is the global log writer.
var GlobalWriter *LogWriter = nil

// LogWriter writes formatted log lines to stderr or a log file.
type LogWriter struct {
	writeLock  sync.Mutex
	isStderr   bool
	isTerminal bool
	file       *os.File
}

// NewStderrWriter creates a new log writer that will write to stderr.
// Color is only used when stderr is an actual terminal, the browser
// launches the host with stderr piped.
func NewStderrWriter() *LogWriter {
	return &LogWriter{
		file:       os.Stderr,
		isStderr:   true,
		isTerminal: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// NewFileWriter creates a new log writer that will write to a file. The file
// path will be <dir>/2006-01-02-15-04-05.log (with current date and time).
func NewFileWriter(dir string) (*LogWriter, error) {
	_ = os.MkdirAll(dir, 0o777)
	logFile := fmt.Sprintf("%s.log", time.Now().UTC().Format("2006-01-02-15-04-05"))
	file, err := os.Create(filepath.Join(dir, logFile))
	if err != nil {
		return nil, err
	}
	return &LogWriter{
		file:     file,
		isStderr: false,
	}, nil
}

// Write writes the buffer to the writer.
func (l *LogWriter) Write(buf []byte) (int, error) {
	if l == nil {
		return 0, fmt.Errorf("log writer not initialized")
	}
	l.writeLock.Lock()
	defer l.writeLock.Unlock()

	return l.file.Write(buf)
}

// WriteLine formats and writes a single log line.
func (l *LogWriter) WriteLine(line *logLine) {
	if l == nil {
		return
	}
	l.writeLock.Lock()
	defer l.writeLock.Unlock()

	fmt.Fprintln(l.file, formatLine(line, l.UsesColor()))
}

// IsStderr returns true if writer was initialized with stderr.
func (l *LogWriter) IsStderr() bool {
	return l != nil && l.isStderr
}

// UsesColor returns true if log lines should carry color codes.
func (l *LogWriter) UsesColor() bool {
	return l != nil && l.isStderr && l.isTerminal
}

// Close closes the writer.
func (l *LogWriter) Close() {
	if l != nil && !l.isStderr {
		_ = l.file.Close()
	}
}

// CleanOldLogs deletes all logs in dir that are older than threshold.
func CleanOldLogs(dir string, threshold time.Duration) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read dir: %w", err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		logDateStr := strings.TrimSuffix(f.Name(), ".log")
		logDate, err := time.Parse("2006-01-02-15-04-05", logDateStr)
		if err != nil {
			continue
		}

		if logDate.Add(threshold).Before(time.Now()) {
			_ = os.Remove(filepath.Join(dir, f.Name()))
		}
	}
	return nil
}
