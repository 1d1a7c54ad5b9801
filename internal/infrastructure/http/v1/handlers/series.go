package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgercore/internal/domain/series"
	"ledgercore/internal/infrastructure/http/v1/dto"
)

// SeriesHandler exposes number series management and allocation.
type SeriesHandler struct {
	BaseHandler
	series    *series.Service
	allocator *series.Allocator
}

// NewSeriesHandler creates a series handler.
func NewSeriesHandler(svc *series.Service, allocator *series.Allocator) *SeriesHandler {
	return &SeriesHandler{series: svc, allocator: allocator}
}

// Allocate handles POST /companies/:companyId/series/:documentType/allocate
func (h *SeriesHandler) Allocate(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	// Body is optional; an empty request allocates for the current date.
	var req dto.AllocateNumberRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	alloc, err := h.allocator.Allocate(c.Request.Context(), companyID, c.Param("documentType"), req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, alloc)
}

// Create handles POST /companies/:companyId/series
func (h *SeriesHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateSeriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := req.ToSeries(companyID)
	if err := h.series.Create(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, s.ID.String())
}

// Get handles GET /companies/:companyId/series/:documentType
func (h *SeriesHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	s, err := h.series.GetByDocumentType(c.Request.Context(), companyID, c.Param("documentType"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// List handles GET /companies/:companyId/series
func (h *SeriesHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	out, err := h.series.List(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: out, Count: len(out)})
}

// SetNextValue handles PUT /companies/:companyId/series/:documentType/next-value
func (h *SeriesHandler) SetNextValue(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.SetNextValueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.series.SetNextValue(c.Request.Context(), companyID, c.Param("documentType"), req.NextValue); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "counter updated")
}

// Deactivate handles DELETE /companies/:companyId/series/:documentType
func (h *SeriesHandler) Deactivate(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	if err := h.series.Deactivate(c.Request.Context(), companyID, c.Param("documentType")); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "series deactivated")
}
