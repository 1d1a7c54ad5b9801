package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgercore/internal/domain/coa"
	"ledgercore/internal/infrastructure/http/v1/dto"
)

// AccountHandler exposes chart of accounts management.
type AccountHandler struct {
	BaseHandler
	accounts *coa.Service
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(accounts *coa.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create handles POST /companies/:companyId/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := req.ToAccount(companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.accounts.Create(c.Request.Context(), account); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, account.ID.String())
}

// Update handles PUT /companies/:companyId/accounts/:accountId
func (h *AccountHandler) Update(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	accountID, ok := h.PathID(c, "accountId")
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.accounts.GetByID(c.Request.Context(), companyID, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	account.Name = req.Name
	account.Group = req.Group
	if req.AllowManualEntry != nil {
		account.AllowManualEntry = *req.AllowManualEntry
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.Version = req.Version

	if err := h.accounts.Update(c.Request.Context(), account); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, account)
}

// Get handles GET /companies/:companyId/accounts/:accountId
func (h *AccountHandler) Get(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	accountID, ok := h.PathID(c, "accountId")
	if !ok {
		return
	}

	account, err := h.accounts.GetByID(c.Request.Context(), companyID, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, account)
}

// List handles GET /companies/:companyId/accounts
func (h *AccountHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.AccountListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := coa.ListFilter{
		Group:      req.Group,
		ActiveOnly: req.ActiveOnly,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.Type != "" {
		filter.Types = []coa.AccountType{coa.AccountType(req.Type)}
	}

	accounts, err := h.accounts.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: accounts, Count: len(accounts)})
}

// Tree handles GET /companies/:companyId/accounts/tree
func (h *AccountHandler) Tree(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	tree, err := h.accounts.Tree(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, tree)
}

// Deactivate handles DELETE /companies/:companyId/accounts/:accountId
func (h *AccountHandler) Deactivate(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	accountID, ok := h.PathID(c, "accountId")
	if !ok {
		return
	}

	if err := h.accounts.Deactivate(c.Request.Context(), companyID, accountID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "account deactivated")
}
