package coa

import (
	"context"
	"sync"
	"testing"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memAccountRepo implements Repository in memory with the same locking and
// balance semantics as the Postgres store.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[id.ID]*Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[id.ID]*Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.CompanyID == account.CompanyID && existing.Code == account.Code {
			return apperror.NewDuplicate("account", "code", account.Code)
		}
	}
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *memAccountRepo) Update(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.accounts[account.ID]
	if !ok || existing.Version != account.Version {
		return apperror.NewConcurrentModification("account", account.ID)
	}
	clone := *account
	clone.Version++
	clone.CurrentBalance = existing.CurrentBalance
	r.accounts[account.ID] = &clone
	account.Version = clone.Version
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, companyID, accountID id.ID) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[accountID]
	if !ok || account.CompanyID != companyID {
		return nil, apperror.NewNotFound("account", accountID)
	}
	clone := *account
	return &clone, nil
}

func (r *memAccountRepo) GetByCode(_ context.Context, companyID id.ID, code string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.CompanyID == companyID && account.Code == code {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("account", code)
}

func (r *memAccountRepo) List(_ context.Context, companyID id.ID, filter ListFilter) ([]*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Account
	for _, account := range r.accounts {
		if account.CompanyID != companyID {
			continue
		}
		if filter.ActiveOnly && !account.IsActive {
			continue
		}
		clone := *account
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memAccountRepo) ApplyBalanceDelta(_ context.Context, companyID, accountID id.ID, delta types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[accountID]
	if !ok || account.CompanyID != companyID {
		return apperror.NewNotFound("account", accountID)
	}
	account.CurrentBalance = account.CurrentBalance.Add(delta)
	return nil
}

func newTestService() (*Service, *memAccountRepo) {
	repo := newMemAccountRepo()
	return NewService(repo, passthroughTxManager{}), repo
}

func TestService_CreateAndGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	account := NewAccount(companyID, "1000", "Cash", TypeAsset)
	if err := svc.Create(ctx, account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.GetByCode(ctx, companyID, "1000")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.ID != account.ID || got.Type != TypeAsset {
		t.Errorf("got account %s/%s", got.ID, got.Type)
	}
	if !got.CurrentBalance.Equal(types.ZeroMoney()) {
		t.Errorf("new account balance = %s, want 0", got.CurrentBalance)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	tests := []struct {
		name   string
		mutate func(*Account)
	}{
		{"nil company", func(a *Account) { a.CompanyID = id.Nil() }},
		{"empty code", func(a *Account) { a.Code = "" }},
		{"empty name", func(a *Account) { a.Name = "" }},
		{"unknown type", func(a *Account) { a.Type = "suspense" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := NewAccount(companyID, "1000", "Cash", TypeAsset)
			tt.mutate(account)
			err := svc.Create(ctx, account)
			if !apperror.HasCode(err, apperror.CodeValidation) {
				t.Errorf("err = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestService_CreateRejectsParentTypeMismatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	parent := NewAccount(companyID, "1000", "Current Assets", TypeAsset)
	if err := svc.Create(ctx, parent); err != nil {
		t.Fatalf("create parent: %v", err)
	}

	child := NewAccount(companyID, "4100", "Sales", TypeRevenue)
	child.ParentID = &parent.ID
	err := svc.Create(ctx, child)
	if !apperror.HasCode(err, apperror.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR for type mismatch", err)
	}

	child = NewAccount(companyID, "1010", "Petty Cash", TypeAsset)
	child.ParentID = &parent.ID
	if err := svc.Create(ctx, child); err != nil {
		t.Fatalf("same-type child rejected: %v", err)
	}
}

func TestService_UpdateNeverMovesBalance(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	companyID := id.New()

	account := NewAccount(companyID, "1000", "Cash", TypeAsset)
	if err := svc.Create(ctx, account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.ApplyBalanceDelta(ctx, companyID, account.ID, types.MustMoney("500.00")); err != nil {
		t.Fatalf("ApplyBalanceDelta failed: %v", err)
	}

	account.Name = "Cash and Equivalents"
	account.CurrentBalance = types.MustMoney("999999.00")
	if err := svc.Update(ctx, account); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := svc.GetByID(ctx, companyID, account.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Cash and Equivalents" {
		t.Errorf("name = %q", got.Name)
	}
	if !got.CurrentBalance.Equal(types.MustMoney("500.00")) {
		t.Errorf("balance = %s, want the posted 500.00", got.CurrentBalance)
	}
}

func TestService_UpdateDetectsConcurrentModification(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	account := NewAccount(companyID, "1000", "Cash", TypeAsset)
	if err := svc.Create(ctx, account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale := *account
	account.Name = "Cash A"
	if err := svc.Update(ctx, account); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	stale.Name = "Cash B"
	err := svc.Update(ctx, &stale)
	if !apperror.HasCode(err, apperror.CodeConcurrentModification) {
		t.Fatalf("err = %v, want CONCURRENT_MODIFICATION", err)
	}
}

func TestService_DeactivateIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	account := NewAccount(companyID, "1000", "Cash", TypeAsset)
	if err := svc.Create(ctx, account); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Deactivate(ctx, companyID, account.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	got, _ := svc.GetByID(ctx, companyID, account.ID)
	if got.IsActive {
		t.Error("account still active after Deactivate")
	}

	if err := svc.Deactivate(ctx, companyID, account.ID); err != nil {
		t.Errorf("second Deactivate returned %v, want nil", err)
	}
}

func TestService_TreeAssemblesHierarchy(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	companyID := id.New()

	root := NewAccount(companyID, "1000", "Assets", TypeAsset)
	childA := NewAccount(companyID, "1100", "Cash", TypeAsset)
	childA.ParentID = &root.ID
	childB := NewAccount(companyID, "1200", "Bank", TypeAsset)
	childB.ParentID = &root.ID
	orphan := NewAccount(companyID, "4000", "Revenue", TypeRevenue)
	missingParent := id.New()
	orphan.ParentID = &missingParent

	for _, a := range []*Account{root, childA, childB, orphan} {
		if err := svc.Create(ctx, a); err != nil {
			t.Fatalf("create %s: %v", a.Code, err)
		}
	}

	tree, err := svc.Tree(ctx, companyID)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}

	// Root and the orphan (parent unknown) both surface at top level.
	if len(tree) != 2 {
		t.Fatalf("got %d roots, want 2", len(tree))
	}
	byCode := make(map[string]*TreeNode, len(tree))
	for _, node := range tree {
		byCode[node.Code] = node
	}
	rootNode, ok := byCode["1000"]
	if !ok {
		t.Fatal("root account missing from tree")
	}
	if len(rootNode.Children) != 2 {
		t.Errorf("root has %d children, want 2", len(rootNode.Children))
	}
	if _, ok := byCode["4000"]; !ok {
		t.Error("orphan account not promoted to root")
	}
}
