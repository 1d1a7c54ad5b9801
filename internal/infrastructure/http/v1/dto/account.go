package dto

import (
	"ledgercore/internal/core/id"
	"ledgercore/internal/domain/coa"
)

// CreateAccountRequest creates a chart of accounts entry.
type CreateAccountRequest struct {
	Code             string `json:"code" binding:"required"`
	Name             string `json:"name" binding:"required"`
	Type             string `json:"type" binding:"required,oneof=asset liability equity revenue expense"`
	Group            string `json:"group"`
	ParentID         string `json:"parentId" binding:"omitempty,uuid"`
	AllowManualEntry *bool  `json:"allowManualEntry"`
}

// ToAccount converts the DTO into a domain account.
func (r *CreateAccountRequest) ToAccount(companyID id.ID) (*coa.Account, error) {
	account := coa.NewAccount(companyID, r.Code, r.Name, coa.AccountType(r.Type))
	account.Group = r.Group
	if r.ParentID != "" {
		parentID, err := id.Parse(r.ParentID)
		if err != nil {
			return nil, err
		}
		account.ParentID = &parentID
	}
	if r.AllowManualEntry != nil {
		account.AllowManualEntry = *r.AllowManualEntry
	}
	return account, nil
}

// UpdateAccountRequest modifies account attributes.
type UpdateAccountRequest struct {
	Name             string `json:"name" binding:"required"`
	Group            string `json:"group"`
	AllowManualEntry *bool  `json:"allowManualEntry"`
	IsActive         *bool  `json:"isActive"`
	Version          int    `json:"version" binding:"required,min=1"`
}

// AccountListRequest filters account listings.
type AccountListRequest struct {
	PaginationRequest
	Type       string `form:"type" binding:"omitempty,oneof=asset liability equity revenue expense"`
	Group      string `form:"group"`
	ActiveOnly bool   `form:"activeOnly"`
}
