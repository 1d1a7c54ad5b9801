package series

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/pkg/logger"
)

// Allocation is the result of one numbering request.
type Allocation struct {
	// Number is the formatted document number (e.g. INV-2025-00001)
	Number string `json:"number"`

	// Ordinal is the raw counter value embedded in Number
	// (zero on the fallback path).
	Ordinal int64 `json:"ordinal"`

	// Fallback marks a degraded timestamp-derived number issued because
	// no active series exists. Uniqueness is not guaranteed.
	Fallback bool `json:"fallback,omitempty"`
}

// Allocator issues formatted sequential document numbers.
//
// The counter advance happens in the repository as one atomic statement and
// joins whatever transaction is carried in ctx, so a posting that rolls back
// never consumes a number.
type Allocator struct {
	repo Repository
	now  func() time.Time
}

// NewAllocator creates a new allocator.
func NewAllocator(repo Repository) *Allocator {
	return &Allocator{
		repo: repo,
		now:  time.Now,
	}
}

// WithNow overrides the clock (tests).
func (a *Allocator) WithNow(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// Allocate returns the next formatted number for (company, documentType)
// and durably advances the counter.
//
// When no active series exists the allocator degrades to a wall-clock
// timestamp number and logs a warning. That path trades format consistency
// for availability; it is not a design goal.
func (a *Allocator) Allocate(ctx context.Context, companyID id.ID, documentType string, referenceDate time.Time) (Allocation, error) {
	if id.IsNil(companyID) {
		return Allocation{}, apperror.NewValidation("company is required")
	}
	if documentType == "" {
		return Allocation{}, apperror.NewValidation("document type is required")
	}
	if referenceDate.IsZero() {
		referenceDate = a.now().UTC()
	}

	issued, err := a.repo.NextOrdinal(ctx, companyID, documentType, referenceDate)
	if err != nil {
		if apperror.IsSeriesNotFound(err) || apperror.IsNotFound(err) {
			return a.fallback(ctx, companyID, documentType), nil
		}
		return Allocation{}, fmt.Errorf("next ordinal for %s: %w", documentType, err)
	}

	number := FormatNumber(issued.Prefix, issued.Separator, issued.NumberLength, issued.YearFormat, referenceDate, issued.Ordinal)
	return Allocation{Number: number, Ordinal: issued.Ordinal}, nil
}

// fallback composes a non-guaranteed unique number from the wall clock.
func (a *Allocator) fallback(ctx context.Context, companyID id.ID, documentType string) Allocation {
	number := fmt.Sprintf("%s-%d", strings.ToUpper(documentType), a.now().UTC().UnixNano())

	logger.Warn(ctx, "no active number series, issuing timestamp fallback",
		"company_id", companyID,
		"document_type", documentType,
		"number", number,
	)

	return Allocation{Number: number, Fallback: true}
}

// Service provides series management (onboarding, migration, listing).
type Service struct {
	repo Repository
}

// NewService creates a new series management service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new series for a document type.
func (s *Service) Create(ctx context.Context, series *Series) error {
	if err := series.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByDocumentType(ctx, series.CompanyID, series.DocumentType); err == nil && existing != nil {
		return apperror.NewDuplicate("number series", "document type", series.DocumentType)
	} else if err != nil && !apperror.IsNotFound(err) && !apperror.IsSeriesNotFound(err) {
		return err
	}

	if err := s.repo.Create(ctx, series); err != nil {
		return fmt.Errorf("create series: %w", err)
	}

	logger.Info(ctx, "number series created",
		"company_id", series.CompanyID,
		"document_type", series.DocumentType,
		"prefix", series.Prefix)

	return nil
}

// GetByDocumentType retrieves a series.
func (s *Service) GetByDocumentType(ctx context.Context, companyID id.ID, documentType string) (*Series, error) {
	return s.repo.GetByDocumentType(ctx, companyID, documentType)
}

// List retrieves all series for a company.
func (s *Service) List(ctx context.Context, companyID id.ID) ([]*Series, error) {
	return s.repo.List(ctx, companyID)
}

// Deactivate stops a series from issuing numbers. Allocation requests for
// its document type will degrade to the fallback path.
func (s *Service) Deactivate(ctx context.Context, companyID id.ID, documentType string) error {
	series, err := s.repo.GetByDocumentType(ctx, companyID, documentType)
	if err != nil {
		return err
	}
	if !series.IsActive {
		return nil
	}
	series.IsActive = false
	series.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, series)
}

// SetNextValue overrides the next counter value (migration purposes).
func (s *Service) SetNextValue(ctx context.Context, companyID id.ID, documentType string, value int64) error {
	if value < 1 {
		return apperror.NewValidation("next value must be positive")
	}
	return s.repo.SetNextValue(ctx, companyID, documentType, value)
}
