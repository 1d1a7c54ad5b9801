// Package audit defines the outbound audit-logging contract.
// The Postgres implementation lives in infrastructure/storage/postgres.
package audit

import (
	"context"

	"ledgercore/internal/core/id"
)

// Action identifies what happened to the audited entity.
type Action string

const (
	ActionPost    Action = "post"
	ActionReverse Action = "reverse"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
)

// Entity types emitted by the posting path.
const (
	EntityJournalPosting  = "journal_posting"
	EntityJournalReversal = "journal_reversal"
)

// Entry is one audit record. Payload carries the full line set and totals
// for postings; it is marshalled by the sink implementation.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Payload    any
}

// Sink receives audit records. Implementations joining the ambient
// transaction make the audit trail atomic with the posting itself.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// NopSink discards all records. Use in tests.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(ctx context.Context, entry Entry) error { return nil }
