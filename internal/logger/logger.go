package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the severity of an operational log message.
// The order here defines their numerical value (DEBUG=0, INFO=1, etc.)
// A logger set to INFO will show INFO, WARN, ERROR, SUCCESS, but NOT DEBUG.
type LogLevel int

const (
	TRACE   LogLevel = iota // 0 - Most verbose, for things like every single request
	DEBUG                   // 1 - Detailed debugging information
	INFO                    // 2 - General information
	WARN                    // 3 - Warnings
	ERROR                   // 4 - Errors
	SUCCESS                 // 5 - Success messages (e.g., payload landed)
)

// Logger writes two parallel streams: an operational stream with leveled,
// timestamped technical detail, and a narrative stream holding the
// human-readable walkthrough text. Each stream also lands in its own file
// under the configured log directory.
type Logger struct {
	infoLogger    *log.Logger
	warnLogger    *log.Logger
	errorLogger   *log.Logger
	debugLogger   *log.Logger
	traceLogger   *log.Logger
	successLogger *log.Logger

	narrative *log.Logger

	opFile  *os.File
	eduFile *os.File

	mu       sync.Mutex
	minLevel LogLevel
	closed   bool
}

// New creates a Logger whose streams tee to stdout/stderr and to timestamped
// files under logDir. The directory is created if missing.
func New(minLevel LogLevel, logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	opFile, err := os.Create(filepath.Join(logDir, fmt.Sprintf("xsslab_operational_%s.log", stamp)))
	if err != nil {
		return nil, fmt.Errorf("create operational log: %w", err)
	}
	eduFile, err := os.Create(filepath.Join(logDir, fmt.Sprintf("xsslab_explained_%s.log", stamp)))
	if err != nil {
		opFile.Close()
		return nil, fmt.Errorf("create narrative log: %w", err)
	}

	flags := log.Ldate | log.Ltime
	out := io.MultiWriter(os.Stdout, opFile)
	errOut := io.MultiWriter(os.Stderr, opFile)

	return &Logger{
		infoLogger:    log.New(out, "[INFO] ", flags),
		warnLogger:    log.New(errOut, "[WARN] ", flags),
		errorLogger:   log.New(errOut, "[ERROR] ", flags),
		debugLogger:   log.New(out, "[DEBUG] ", flags),
		traceLogger:   log.New(out, "[TRACE] ", flags),
		successLogger: log.New(out, "[SUCCESS] ", flags),
		narrative:     log.New(io.MultiWriter(os.Stdout, eduFile), "", 0),
		opFile:        opFile,
		eduFile:       eduFile,
		minLevel:      minLevel,
	}, nil
}

// NewConsole creates a console-only Logger with no file sinks. Used by tests
// and by early startup before the log directory is known.
func NewConsole(minLevel LogLevel) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		infoLogger:    log.New(os.Stdout, "[INFO] ", flags),
		warnLogger:    log.New(os.Stderr, "[WARN] ", flags),
		errorLogger:   log.New(os.Stderr, "[ERROR] ", flags),
		debugLogger:   log.New(os.Stdout, "[DEBUG] ", flags),
		traceLogger:   log.New(os.Stdout, "[TRACE] ", flags),
		successLogger: log.New(os.Stdout, "[SUCCESS] ", flags),
		narrative:     log.New(os.Stdout, "", 0),
		minLevel:      minLevel,
	}
}

func (l *Logger) log(level LogLevel, logger *log.Logger, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed && level >= l.minLevel {
		logger.Printf(format, v...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(INFO, l.infoLogger, format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(WARN, l.warnLogger, format, v...)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(ERROR, l.errorLogger, format, v...)
}

// Debug logs a debug message. Only active if minLevel is DEBUG.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(DEBUG, l.debugLogger, format, v...)
}

// Trace logs a trace message. Only active if minLevel is TRACE.
func (l *Logger) Trace(format string, v ...interface{}) {
	l.log(TRACE, l.traceLogger, format, v...)
}

// Success logs a success message, typically for a payload that landed.
func (l *Logger) Success(format string, v ...interface{}) {
	l.log(SUCCESS, l.successLogger, format, v...)
}

// SetMinLevel sets the minimum operational logging level.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Narrative writes plain walkthrough text to the narrative stream.
func (l *Logger) Narrative(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.narrative.Printf(format, v...)
}

// Section writes a banner-delimited section header to the narrative stream.
func (l *Logger) Section(title string) {
	separator := "======================================================================"
	l.Narrative("\n%s", separator)
	l.Narrative("%s", title)
	l.Narrative("%s", separator)
}

// Step records a numbered walkthrough step on both streams.
func (l *Logger) Step(num int, title, description string) {
	l.Narrative("\n[Step %d] %s", num, title)
	l.Narrative("%s\n", description)
	l.Info("Step %d: %s", num, title)
}

// Payload shows a payload and its explanation on the narrative stream.
func (l *Logger) Payload(payload, explanation string) {
	l.Narrative("\nPayload: %s", payload)
	l.Narrative("Explanation: %s", explanation)
	l.Info("Payload: %s", payload)
}

// ExplainSuccess narrates why an exploit attempt worked.
func (l *Logger) ExplainSuccess(what, why string) {
	l.Narrative("\n[+] SUCCESS: %s", what)
	l.Narrative("\nWhy it worked:")
	l.Narrative("  %s\n", why)
	l.Success("Exploit successful: %s", what)
}

// ExplainFailure narrates why an attempt failed; suggestion may be empty.
func (l *Logger) ExplainFailure(what, why, suggestion string) {
	l.Narrative("\n[-] FAILED: %s", what)
	l.Narrative("\nWhy it failed:")
	l.Narrative("  %s", why)
	if suggestion != "" {
		l.Narrative("\nSuggested next step:\n  %s\n", suggestion)
	}
	l.Warn("Exploit failed: %s", what)
}

// HTTPRequest records an outgoing request on the operational stream.
func (l *Logger) HTTPRequest(method, url string, fields map[string]string) {
	l.Debug("HTTP %s %s", method, url)
	if len(fields) > 0 {
		l.Debug("Request fields: %v", fields)
	}
}

// HTTPResponse records a response status and a bounded body prefix.
func (l *Logger) HTTPResponse(status int, snippet string) {
	const maxSnippet = 200
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}
	l.Debug("Response status: %d", status)
	if snippet != "" {
		l.Debug("Response snippet: %s", snippet)
	}
}

// Close flushes and closes both file sinks and terminates both streams:
// writes arriving after Close are discarded under the lock rather than
// racing the closed file handles. Safe to call more than once and on a
// console-only logger. The interrupt path relies on this: it closes the
// logger and exits while the walkthrough goroutine may still be logging.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.opFile != nil {
		l.opFile.Close()
		l.opFile = nil
	}
	if l.eduFile != nil {
		l.eduFile.Close()
		l.eduFile = nil
	}
}
