package models

import (
	"encoding/json"
	"time"
)

// Action names the kind of mutation an audit entry records.
type Action string

const (
	ActionAdded   Action = "added"
	ActionEdited  Action = "edited"
	ActionDeleted Action = "deleted"
)

// LogEntry is one line of the audit history. Name is a snapshot taken when the
// entry was written, so entries outlive the item they describe.
type LogEntry struct {
	ID        int64
	Name      string
	Action    Action
	Timestamp time.Time
}

type logEntryJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Action    Action `json:"action"`
	Time      int64  `json:"time"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// MarshalJSON writes the millisecond epoch under "time", the key the browser app used.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(logEntryJSON{
		ID:     e.ID,
		Name:   e.Name,
		Action: e.Action,
		Time:   e.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON accepts both "time" and the "timestamp" key some builds wrote.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var raw logEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ms := raw.Time
	if ms == 0 {
		ms = raw.Timestamp
	}
	*e = LogEntry{
		ID:        raw.ID,
		Name:      raw.Name,
		Action:    raw.Action,
		Timestamp: time.UnixMilli(ms),
	}
	return nil
}
