package logx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter forwards zerolog JSON lines to systemd-journald.
// Structured fields become upper-cased journal fields.
type journalWriter struct {
	min zerolog.Level
}

// newJournalWriter returns nil when journald is not available on this host.
func newJournalWriter(min zerolog.Level) *journalWriter {
	if !journal.Enabled() {
		return nil
	}
	return &journalWriter{min: min}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min {
		return len(p), nil
	}
	msg, vars := journalFields(p)
	if msg == "" {
		return len(p), nil
	}
	// Never fail the other sinks because journald hiccuped.
	_ = journal.Send(msg, journalPriority(level), vars)
	return len(p), nil
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level == zerolog.WarnLevel:
		return journal.PriWarning
	case level == zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// journalFields decodes one zerolog JSON line into (message, vars).
func journalFields(p []byte) (string, map[string]string) {
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return strings.TrimSpace(string(p)), nil
	}
	msg, _ := m[zerolog.MessageFieldName].(string)
	vars := make(map[string]string, len(m))
	for k, v := range m {
		if k == zerolog.MessageFieldName || k == zerolog.TimestampFieldName || k == zerolog.LevelFieldName {
			continue
		}
		key := journalKey(k)
		if key == "" {
			continue
		}
		vars[key] = fmt.Sprint(v)
	}
	return msg, vars
}

// journalKey maps a zerolog field name to a valid journal field name
// ([A-Z0-9_], not starting with '_').
func journalKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), "_")
}
