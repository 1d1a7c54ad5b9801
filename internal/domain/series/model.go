// Package series provides named, scoped counters that issue formatted
// sequential document numbers (INV-2025-00001).
package series

import (
	"context"
	"fmt"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
)

// YearFormat controls the year part embedded in formatted numbers.
type YearFormat string

const (
	YearNone YearFormat = "none"
	YearYY   YearFormat = "yy"
	YearYYYY YearFormat = "yyyy"
)

// Part renders the year portion for a reference date, empty for YearNone.
func (f YearFormat) Part(t time.Time) string {
	switch f {
	case YearYY:
		return t.Format("06")
	case YearYYYY:
		return t.Format("2006")
	default:
		return ""
	}
}

// Valid reports whether the format is one of the closed set.
func (f YearFormat) Valid() bool {
	switch f {
	case YearNone, YearYY, YearYYYY:
		return true
	}
	return false
}

// ResetRule controls when a series counter returns to its starting number.
type ResetRule string

const (
	ResetNever   ResetRule = "never"
	ResetYearly  ResetRule = "yearly"
	ResetMonthly ResetRule = "monthly"
)

// PeriodMarker derives the persisted rollover marker for a reference date.
// The marker, not the formatted year part, is what rollover detection
// compares against: back-dated postings can make the two diverge.
func (r ResetRule) PeriodMarker(t time.Time) string {
	switch r {
	case ResetYearly:
		return t.Format("2006")
	case ResetMonthly:
		return t.Format("2006-01")
	default:
		return ""
	}
}

// Valid reports whether the rule is one of the closed set.
func (r ResetRule) Valid() bool {
	switch r {
	case ResetNever, ResetYearly, ResetMonthly:
		return true
	}
	return false
}

// Scope determines the uniqueness boundary of a series.
type Scope string

const (
	ScopeCompany   Scope = "company"
	ScopeBranch    Scope = "branch"
	ScopeWarehouse Scope = "warehouse"
)

// Valid reports whether the scope is one of the closed set.
func (s Scope) Valid() bool {
	switch s {
	case ScopeCompany, ScopeBranch, ScopeWarehouse:
		return true
	}
	return false
}

// Series is a persisted numbering counter, one per (company, document type).
// CurrentValue is the NEXT number to issue; it is monotonically
// non-decreasing except when the reset rule fires at a period boundary.
type Series struct {
	ID           id.ID  `db:"id" json:"id"`
	CompanyID    id.ID  `db:"company_id" json:"companyId"`
	DocumentType string `db:"document_type" json:"documentType"`

	Prefix       string     `db:"prefix" json:"prefix"`
	Separator    string     `db:"separator" json:"separator"`
	NumberLength int        `db:"number_length" json:"numberLength"`
	YearFormat   YearFormat `db:"year_format" json:"yearFormat"`
	ResetRule    ResetRule  `db:"reset_rule" json:"resetRule"`
	Scope        Scope      `db:"scope" json:"scope"`

	StartingNumber int64 `db:"starting_number" json:"startingNumber"`
	CurrentValue   int64 `db:"current_value" json:"currentValue"`

	// LastResetPeriod is the rollover marker of the last allocation
	// ("2025" or "2025-03", empty for never-resetting series).
	LastResetPeriod string `db:"last_reset_period" json:"lastResetPeriod,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSeries creates a series with generated ID and standard defaults.
func NewSeries(companyID id.ID, documentType, prefix string) *Series {
	now := time.Now().UTC()
	return &Series{
		ID:             id.New(),
		CompanyID:      companyID,
		DocumentType:   documentType,
		Prefix:         prefix,
		Separator:      "-",
		NumberLength:   5,
		YearFormat:     YearYYYY,
		ResetRule:      ResetYearly,
		Scope:          ScopeCompany,
		StartingNumber: 1,
		CurrentValue:   1,
		IsActive:       true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks series invariants.
func (s *Series) Validate(ctx context.Context) error {
	if id.IsNil(s.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if s.DocumentType == "" {
		return apperror.NewValidation("document type is required").
			WithDetail("field", "documentType")
	}
	if s.Prefix == "" {
		return apperror.NewValidation("prefix is required").
			WithDetail("field", "prefix")
	}
	if s.NumberLength < 1 || s.NumberLength > 12 {
		return apperror.NewValidation("number length must be between 1 and 12").
			WithDetail("field", "numberLength")
	}
	if !s.YearFormat.Valid() {
		return apperror.NewValidation("unknown year format").
			WithDetail("value", string(s.YearFormat))
	}
	if !s.ResetRule.Valid() {
		return apperror.NewValidation("unknown reset rule").
			WithDetail("value", string(s.ResetRule))
	}
	if !s.Scope.Valid() {
		return apperror.NewValidation("unknown series scope").
			WithDetail("value", string(s.Scope))
	}
	if s.StartingNumber < 1 {
		return apperror.NewValidation("starting number must be positive").
			WithDetail("field", "startingNumber")
	}
	if s.CurrentValue < s.StartingNumber {
		return apperror.NewValidation("current value may not precede starting number").
			WithDetail("field", "currentValue")
	}
	return nil
}

// Format composes the full document number for an issued ordinal.
// Pattern: prefix [+ sep + yearPart] + sep + zero-padded ordinal.
func (s *Series) Format(referenceDate time.Time, ordinal int64) string {
	return FormatNumber(s.Prefix, s.Separator, s.NumberLength, s.YearFormat, referenceDate, ordinal)
}

// FormatNumber composes a document number from raw series attributes.
func FormatNumber(prefix, separator string, numberLength int, yearFormat YearFormat, referenceDate time.Time, ordinal int64) string {
	if numberLength <= 0 {
		numberLength = 5
	}
	if yearPart := yearFormat.Part(referenceDate); yearPart != "" {
		return fmt.Sprintf("%s%s%s%s%0*d", prefix, separator, yearPart, separator, numberLength, ordinal)
	}
	return fmt.Sprintf("%s%s%0*d", prefix, separator, numberLength, ordinal)
}
