package journal

import (
	"context"
	"time"

	"ledgercore/internal/core/id"
)

// ListFilter narrows journal listings.
type ListFilter struct {
	SourceType string
	SourceID   *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines persistence operations for journal entries.
// Entries and lines are write-once: no update methods exist.
type Repository interface {
	// InsertEntry persists the journal header.
	InsertEntry(ctx context.Context, entry *Entry) error

	// InsertLines persists lines in the given order; line_number is
	// authoritative and must round-trip on read.
	InsertLines(ctx context.Context, journalID id.ID, lines []Line) error

	// GetByID loads the header without lines.
	GetByID(ctx context.Context, companyID, journalID id.ID) (*Entry, error)

	// GetWithLines loads the header and its lines ordered by line_number.
	GetWithLines(ctx context.Context, companyID, journalID id.ID) (*Entry, error)

	// List retrieves entries with filtering, newest first.
	List(ctx context.Context, companyID id.ID, filter ListFilter) ([]*Entry, error)
}
