package dto

import (
	"time"

	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/series"
)

// CreateSeriesRequest creates a number series.
type CreateSeriesRequest struct {
	DocumentType   string `json:"documentType" binding:"required"`
	Prefix         string `json:"prefix" binding:"required"`
	Separator      string `json:"separator"`
	NumberLength   int    `json:"numberLength" binding:"omitempty,min=1,max=12"`
	YearFormat     string `json:"yearFormat" binding:"omitempty,oneof=none yy yyyy"`
	ResetRule      string `json:"resetRule" binding:"omitempty,oneof=never yearly monthly"`
	Scope          string `json:"scope" binding:"omitempty,oneof=company branch warehouse"`
	StartingNumber int64  `json:"startingNumber" binding:"omitempty,min=1"`
}

// ToSeries converts the DTO into a domain series.
func (r *CreateSeriesRequest) ToSeries(companyID id.ID) *series.Series {
	s := series.NewSeries(companyID, r.DocumentType, r.Prefix)
	if r.Separator != "" {
		s.Separator = r.Separator
	}
	if r.NumberLength > 0 {
		s.NumberLength = r.NumberLength
	}
	if r.YearFormat != "" {
		s.YearFormat = series.YearFormat(r.YearFormat)
	}
	if r.ResetRule != "" {
		s.ResetRule = series.ResetRule(r.ResetRule)
	}
	if r.Scope != "" {
		s.Scope = series.Scope(r.Scope)
	}
	if r.StartingNumber > 0 {
		s.StartingNumber = r.StartingNumber
		s.CurrentValue = r.StartingNumber
	}
	return s
}

// SetNextValueRequest overrides the series counter.
type SetNextValueRequest struct {
	NextValue int64 `json:"nextValue" binding:"required,min=1"`
}

// AllocateNumberRequest asks for the next document number. A zero date
// allocates against the current date.
type AllocateNumberRequest struct {
	Date time.Time `json:"date"`
}
