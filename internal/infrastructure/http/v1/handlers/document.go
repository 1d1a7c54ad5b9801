package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgercore/internal/domain/docflow"
	"ledgercore/internal/infrastructure/http/v1/dto"
	"ledgercore/internal/infrastructure/storage/postgres"
)

// DocumentHandler exposes document lifecycle operations.
type DocumentHandler struct {
	BaseHandler
	workflow *docflow.Workflow
	docs     *postgres.DocumentRepo
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(workflow *docflow.Workflow, docs *postgres.DocumentRepo) *DocumentHandler {
	return &DocumentHandler{workflow: workflow, docs: docs}
}

// Create handles POST /companies/:companyId/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := docflow.NewDocument(companyID, req.DocType, req.Number)
	if err := h.docs.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// Get handles GET /companies/:companyId/documents/:documentId
func (h *DocumentHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	docID, ok := h.PathID(c, "documentId")
	if !ok {
		return
	}

	doc, err := h.docs.GetByID(c.Request.Context(), companyID, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Transition handles POST /companies/:companyId/documents/:documentId/transition
func (h *DocumentHandler) Transition(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	docID, ok := h.PathID(c, "documentId")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role := docflow.Role(h.UserRole(c))
	result, err := h.workflow.ApplyTransition(
		c.Request.Context(), companyID, docID,
		docflow.State(req.Target), role, req.Reason,
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// AllowedTransitions handles GET /companies/:companyId/documents/:documentId/transitions
func (h *DocumentHandler) AllowedTransitions(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	docID, ok := h.PathID(c, "documentId")
	if !ok {
		return
	}

	doc, err := h.docs.GetByID(c.Request.Context(), companyID, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	role := docflow.Role(h.UserRole(c))
	h.OK(c, gin.H{
		"state":   doc.State,
		"targets": docflow.AllowedTargets(doc.State, role),
	})
}
