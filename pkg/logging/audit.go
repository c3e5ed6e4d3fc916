package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AuditLevel is the level recorded in the audit log.
type AuditLevel string

const (
	AuditInfo    AuditLevel = "info"
	AuditSuccess AuditLevel = "success"
	AuditWarning AuditLevel = "warning"
	AuditError   AuditLevel = "error"
)

const (
	auditTimeFormat = "2006-01-02 15:04:05"
	auditFilePrefix = "stow-manager-"
)

// Audit appends one line per event to a daily log file in the repository:
//
//	[2006-01-02 15:04:05] SUCCESS: Package 'zsh' installed successfully
//
// Every event is also echoed to the diagnostics logger, so -v shows it.
type Audit struct {
	logger zerolog.Logger
	echo   zerolog.Logger
	closer io.Closer
	now    func() time.Time
}

// AuditFileName returns the log file name used for the given day.
func AuditFileName(day time.Time) string {
	return auditFilePrefix + day.Format("20060102") + ".log"
}

// OpenAudit opens (creating if needed) today's audit log under logDir.
// A nil clock means time.Now.
func OpenAudit(logDir string, now func() time.Time) (*Audit, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, AuditFileName(now()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	a := NewAudit(file, now)
	a.closer = file
	return a, nil
}

// NewAudit builds an audit logger writing to w.
func NewAudit(w io.Writer, now func() time.Time) *Audit {
	if now == nil {
		now = time.Now
	}
	writer := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprint(i)) + ":"
		},
	}
	return &Audit{
		logger: zerolog.New(writer),
		echo:   GetLogger("audit"),
		now:    now,
	}
}

// NopAudit discards every event.
func NopAudit() *Audit {
	return &Audit{
		logger: zerolog.Nop(),
		echo:   zerolog.Nop(),
		now:    time.Now,
	}
}

// Log records msg at level.
func (a *Audit) Log(level AuditLevel, msg string) {
	a.logger.Log().
		Str(zerolog.LevelFieldName, string(level)).
		Str(zerolog.TimestampFieldName, a.now().Format(auditTimeFormat)).
		Msg(msg)

	switch level {
	case AuditError:
		a.echo.Error().Msg(msg)
	case AuditWarning:
		a.echo.Warn().Msg(msg)
	default:
		a.echo.Info().Str("audit_level", string(level)).Msg(msg)
	}
}

func (a *Audit) Info(format string, args ...interface{}) {
	a.Log(AuditInfo, fmt.Sprintf(format, args...))
}

func (a *Audit) Success(format string, args ...interface{}) {
	a.Log(AuditSuccess, fmt.Sprintf(format, args...))
}

func (a *Audit) Warning(format string, args ...interface{}) {
	a.Log(AuditWarning, fmt.Sprintf(format, args...))
}

func (a *Audit) Error(format string, args ...interface{}) {
	a.Log(AuditError, fmt.Sprintf(format, args...))
}

// Close releases the underlying file, if any.
func (a *Audit) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
