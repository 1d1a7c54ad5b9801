package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgercore/internal/domain/journal"
	"ledgercore/internal/infrastructure/http/v1/dto"
)

// JournalHandler exposes GL posting, reversal and journal reads.
type JournalHandler struct {
	BaseHandler
	engine   *journal.Engine
	reverser *journal.Reverser
}

// NewJournalHandler creates a journal handler.
func NewJournalHandler(engine *journal.Engine, reverser *journal.Reverser) *JournalHandler {
	return &JournalHandler{engine: engine, reverser: reverser}
}

// Post handles POST /companies/:companyId/journals
func (h *JournalHandler) Post(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.PostJournalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	postingReq, err := req.ToPostingRequest(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	receipt, err := h.engine.Post(c.Request.Context(), postingReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, receipt)
}

// Reverse handles POST /companies/:companyId/journals/:journalId/reverse
func (h *JournalHandler) Reverse(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	journalID, ok := h.PathID(c, "journalId")
	if !ok {
		return
	}

	var req dto.ReverseJournalRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipt, err := h.reverser.Reverse(c.Request.Context(), companyID, journalID, req.ReversalDate, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, receipt)
}

// Get handles GET /companies/:companyId/journals/:journalId
func (h *JournalHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	journalID, ok := h.PathID(c, "journalId")
	if !ok {
		return
	}

	entry, err := h.engine.GetByID(c.Request.Context(), companyID, journalID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// List handles GET /companies/:companyId/journals
func (h *JournalHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.JournalListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := journal.ListFilter{
		SourceType: req.SourceType,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.From != "" {
		from, _ := time.Parse("2006-01-02", req.From)
		filter.FromDate = &from
	}
	if req.To != "" {
		to, _ := time.Parse("2006-01-02", req.To)
		filter.ToDate = &to
	}

	entries, err := h.engine.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: entries, Count: len(entries)})
}
