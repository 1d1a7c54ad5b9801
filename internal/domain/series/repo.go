package series

import (
	"context"
	"time"

	"ledgercore/internal/core/id"
)

// Issued is the outcome of an atomic counter advance: the ordinal that was
// handed out plus the formatting attributes read from the same row.
type Issued struct {
	Ordinal      int64      `db:"ordinal"`
	Prefix       string     `db:"prefix"`
	Separator    string     `db:"separator"`
	NumberLength int        `db:"number_length"`
	YearFormat   YearFormat `db:"year_format"`
}

// Repository defines persistence operations for number series.
type Repository interface {
	// NextOrdinal advances the counter for (company, documentType) and
	// returns the issued ordinal together with formatting attributes.
	//
	// The advance MUST be a single atomic statement: concurrent callers
	// serialize on the series row and never observe the same ordinal.
	// When the series' reset rule fires (its stored period marker differs
	// from the one derived from referenceDate), the counter restarts from
	// the starting number within the same statement.
	//
	// Returns a SERIES_NOT_FOUND error when no active series matches.
	NextOrdinal(ctx context.Context, companyID id.ID, documentType string, referenceDate time.Time) (*Issued, error)

	Create(ctx context.Context, s *Series) error
	GetByDocumentType(ctx context.Context, companyID id.ID, documentType string) (*Series, error)
	List(ctx context.Context, companyID id.ID) ([]*Series, error)

	// Update modifies series attributes with optimistic locking.
	Update(ctx context.Context, s *Series) error

	// SetNextValue overrides the counter (migration/onboarding only).
	SetNextValue(ctx context.Context, companyID id.ID, documentType string, value int64) error
}
