package journal

import (
	"context"
	"time"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

// AccountRole names the business meaning of an account inside a posting
// recipe. Which concrete account fills a role is company policy, resolved
// once per company into an AccountMapping.
type AccountRole string

const (
	RoleAccountsReceivable AccountRole = "accounts_receivable"
	RoleAccountsPayable    AccountRole = "accounts_payable"
	RoleSalesRevenue       AccountRole = "sales_revenue"
	RoleVATPayable         AccountRole = "vat_payable"
	RoleVATReceivable      AccountRole = "vat_receivable"
	RoleCash               AccountRole = "cash"
	RoleBank               AccountRole = "bank"
	RoleInventory          AccountRole = "inventory"
	RoleCOGS               AccountRole = "cogs"
	RoleSalaryExpense      AccountRole = "salary_expense"
	RolePayrollPayable     AccountRole = "payroll_payable"
	RoleInventoryGainLoss  AccountRole = "inventory_gain_loss"
)

// AccountMapping resolves account roles to concrete account ids for one
// company. Missing mappings fail fast at build time instead of silently
// skipping postings.
type AccountMapping map[AccountRole]id.ID

// Validate checks that every required role is mapped to a real account id.
func (m AccountMapping) Validate(required ...AccountRole) error {
	for _, role := range required {
		accountID, ok := m[role]
		if !ok || id.IsNil(accountID) {
			return apperror.NewValidation("account role is not mapped").
				WithDetail("role", string(role))
		}
	}
	return nil
}

// Resolve returns the account id for a role.
func (m AccountMapping) Resolve(role AccountRole) (id.ID, error) {
	accountID, ok := m[role]
	if !ok || id.IsNil(accountID) {
		return id.Nil(), apperror.NewValidation("account role is not mapped").
			WithDetail("role", string(role))
	}
	return accountID, nil
}

// RequestBuilder accumulates ledger lines for one business event,
// resolving account roles through a company mapping. Workflows (invoice
// posting, payroll, stock adjustment) express their recipes in roles only.
type RequestBuilder struct {
	companyID    id.ID
	mapping      AccountMapping
	sourceType   string
	sourceID     id.ID
	sourceNumber string
	date         time.Time
	description  string
	lines        []LineInput
	err          error
}

// NewRequestBuilder starts a posting request for one source document.
func NewRequestBuilder(companyID id.ID, mapping AccountMapping, sourceType string, sourceID id.ID) *RequestBuilder {
	return &RequestBuilder{
		companyID:  companyID,
		mapping:    mapping,
		sourceType: sourceType,
		sourceID:   sourceID,
		date:       time.Now().UTC(),
	}
}

// OnDate sets the posting date.
func (b *RequestBuilder) OnDate(date time.Time) *RequestBuilder {
	b.date = date
	return b
}

// WithSourceNumber records the originating document number.
func (b *RequestBuilder) WithSourceNumber(number string) *RequestBuilder {
	b.sourceNumber = number
	return b
}

// Describe sets the journal description.
func (b *RequestBuilder) Describe(description string) *RequestBuilder {
	b.description = description
	return b
}

// Debit adds a debit line against the account mapped to role.
func (b *RequestBuilder) Debit(role AccountRole, amount types.Money, description string) *RequestBuilder {
	return b.addLine(role, amount, types.ZeroMoney(), description)
}

// Credit adds a credit line against the account mapped to role.
func (b *RequestBuilder) Credit(role AccountRole, amount types.Money, description string) *RequestBuilder {
	return b.addLine(role, types.ZeroMoney(), amount, description)
}

func (b *RequestBuilder) addLine(role AccountRole, debit, credit types.Money, description string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	accountID, err := b.mapping.Resolve(role)
	if err != nil {
		b.err = err
		return b
	}
	b.lines = append(b.lines, LineInput{
		AccountID:   accountID,
		Debit:       debit,
		Credit:      credit,
		Description: description,
	})
	return b
}

// Build produces the posting request, surfacing the first role-resolution
// failure encountered while adding lines.
func (b *RequestBuilder) Build(ctx context.Context) (PostingRequest, error) {
	if b.err != nil {
		return PostingRequest{}, b.err
	}
	if len(b.lines) == 0 {
		return PostingRequest{}, apperror.NewValidation("posting request has no lines")
	}
	return PostingRequest{
		CompanyID:    b.companyID,
		SourceType:   b.sourceType,
		SourceID:     b.sourceID,
		SourceNumber: b.sourceNumber,
		Date:         b.date,
		Description:  b.description,
		Lines:        b.lines,
	}, nil
}
