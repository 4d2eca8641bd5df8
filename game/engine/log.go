package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogCategory classifies a game log entry
type LogCategory string

const (
	LogInfo        LogCategory = "info"
	LogSuccess     LogCategory = "success"
	LogDanger      LogCategory = "danger"
	LogEvent       LogCategory = "event"
	LogCatastrophe LogCategory = "catastrophe"
	LogBanter      LogCategory = "banter"
)

// LogEntry is a structured record of a notable game event
type LogEntry struct {
	ID        string      `json:"id"`
	Sequence  int         `json:"sequence"`
	Round     int         `json:"round"`
	Category  LogCategory `json:"category"`
	Message   string      `json:"message"`
	PlayerID  *int        `json:"player_id,omitempty"`
	SpaceID   *int        `json:"space_id,omitempty"`
	Amount    int64       `json:"amount,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type logOpt func(*LogEntry)

func forPlayer(id int) logOpt {
	return func(l *LogEntry) { l.PlayerID = &id }
}

func atSpace(id int) logOpt {
	return func(l *LogEntry) { l.SpaceID = &id }
}

func withAmount(v int64) logOpt {
	return func(l *LogEntry) { l.Amount = v }
}

// record appends an entry to the snapshot, dropping the oldest past the cap,
// and mirrors it to the structured logger at debug level.
func (e *GameEngine) record(cat LogCategory, msg string, opts ...logOpt) {
	s := e.state
	seq := 1
	if n := len(s.Logs); n > 0 {
		seq = s.Logs[n-1].Sequence + 1
	}
	entry := LogEntry{
		ID:        uuid.New().String(),
		Sequence:  seq,
		Round:     s.Round,
		Category:  cat,
		Message:   msg,
		Timestamp: e.now(),
	}
	for _, o := range opts {
		o(&entry)
	}
	s.Logs = append(s.Logs, entry)
	if len(s.Logs) > MaxLogEntries {
		s.Logs = append([]LogEntry(nil), s.Logs[len(s.Logs)-MaxLogEntries:]...)
	}
	e.logger.Debug("game log", "category", cat, "round", s.Round, "message", msg)
}

func (e *GameEngine) recordf(cat LogCategory, opts []logOpt, format string, args ...any) {
	e.record(cat, fmt.Sprintf(format, args...), opts...)
}
