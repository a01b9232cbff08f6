// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

import (
	"time"

	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/model"
)

// EntryChangedEvent is published after every successful entry mutation.  It
// carries identifiers only; entry content never leaves the database.
type EntryChangedEvent struct {
	EventID string `json:"event_id"`
	Kind    string `json:"kind"`
	OwnerID uint64 `json:"owner_id"`
	EntryID uint64 `json:"entry_id"`
	Day     string `json:"day"`
	At      string `json:"at"`
}

// FromChange converts an in-process change notification to its wire form.
func FromChange(ev journal.EntryChanged) EntryChangedEvent {
	return EntryChangedEvent{
		EventID: ev.EventID.String(),
		Kind:    string(ev.Kind),
		OwnerID: ev.OwnerID,
		EntryID: ev.EntryID,
		Day:     ev.Day.Format(model.DayLayout),
		At:      ev.At.UTC().Format(time.RFC3339Nano),
	}
}
