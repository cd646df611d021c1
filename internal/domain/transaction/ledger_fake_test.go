package transaction_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"MyFinance/internal/domain/account"
	"MyFinance/internal/domain/budget"
	"MyFinance/internal/domain/pot"
	"MyFinance/internal/domain/shared"
	"MyFinance/internal/domain/transaction"
	appErrors "MyFinance/internal/errors"
	"MyFinance/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ledger is an in-memory store whose unit of work restores a snapshot on error.
type ledger struct {
	mu           sync.Mutex
	accounts     map[ulid.ULID]*account.Account
	budgets      map[ulid.ULID]*budget.Budget
	transactions map[ulid.ULID]*transaction.Transaction
	categories   map[ulid.ULID]ulid.ULID
	pots         map[ulid.ULID]*pot.Pot
	events       []transaction.Event

	applyDeltaFn func(budgetID ulid.ULID) error
}

func newLedger() *ledger {
	return &ledger{
		accounts:     make(map[ulid.ULID]*account.Account),
		budgets:      make(map[ulid.ULID]*budget.Budget),
		transactions: make(map[ulid.ULID]*transaction.Transaction),
		categories:   make(map[ulid.ULID]ulid.ULID),
		pots:         make(map[ulid.ULID]*pot.Pot),
	}
}

type snapshot struct {
	accounts     map[ulid.ULID]account.Account
	budgets      map[ulid.ULID]budget.Budget
	transactions map[ulid.ULID]transaction.Transaction
	pots         map[ulid.ULID]pot.Pot
}

func (l *ledger) snapshot() snapshot {
	s := snapshot{
		accounts:     make(map[ulid.ULID]account.Account, len(l.accounts)),
		budgets:      make(map[ulid.ULID]budget.Budget, len(l.budgets)),
		transactions: make(map[ulid.ULID]transaction.Transaction, len(l.transactions)),
		pots:         make(map[ulid.ULID]pot.Pot, len(l.pots)),
	}
	for k, v := range l.accounts {
		s.accounts[k] = *v
	}
	for k, v := range l.budgets {
		s.budgets[k] = *v
	}
	for k, v := range l.transactions {
		s.transactions[k] = *v
	}
	for k, v := range l.pots {
		s.pots[k] = *v
	}
	return s
}

func (l *ledger) restore(s snapshot) {
	l.accounts = make(map[ulid.ULID]*account.Account, len(s.accounts))
	for k, v := range s.accounts {
		v := v
		l.accounts[k] = &v
	}
	l.budgets = make(map[ulid.ULID]*budget.Budget, len(s.budgets))
	for k, v := range s.budgets {
		v := v
		l.budgets[k] = &v
	}
	l.transactions = make(map[ulid.ULID]*transaction.Transaction, len(s.transactions))
	for k, v := range s.transactions {
		v := v
		l.transactions[k] = &v
	}
	l.pots = make(map[ulid.ULID]*pot.Pot, len(s.pots))
	for k, v := range s.pots {
		v := v
		l.pots[k] = &v
	}
}

type txDepthKey struct{}

func (l *ledger) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txDepthKey{}) != nil {
		return fn(ctx)
	}

	before := l.snapshot()
	ctx, runHooks := shared.WithCommitHooks(context.WithValue(ctx, txDepthKey{}, true))
	if err := fn(ctx); err != nil {
		l.restore(before)
		return err
	}
	runHooks()
	return nil
}

func (l *ledger) seedAccount(userID ulid.ULID, balance int64) *account.Account {
	acc := &account.Account{Id: ulid.Make(), UserId: userID, Balance: balance}
	l.accounts[userID] = acc
	return acc
}

func (l *ledger) seedBudget(userID ulid.ULID, total int64) ulid.ULID {
	b := &budget.Budget{Id: ulid.Make(), UserId: userID, Name: "Groceries", TotalAmount: total, IsActive: true}
	b.Recompute()
	l.budgets[b.Id] = b
	return b.Id
}

func (l *ledger) seedPot(userID ulid.ULID, name string, target int64) ulid.ULID {
	p := &pot.Pot{Id: ulid.Make(), UserId: userID, Name: name, TargetAmount: target}
	l.pots[p.Id] = p
	return p.Id
}

func (l *ledger) saved(potID ulid.ULID) int64 {
	return l.pots[potID].SavedAmount
}

func (l *ledger) balance(userID ulid.ULID) int64 {
	return l.accounts[userID].Balance
}

func (l *ledger) budget(id ulid.ULID) budget.Budget {
	return *l.budgets[id]
}

// Accounts

func (l *ledger) GetOrCreate(_ context.Context, userID ulid.ULID) (*account.Account, error) {
	acc, ok := l.accounts[userID]
	if !ok {
		acc = &account.Account{Id: ulid.Make(), UserId: userID}
		l.accounts[userID] = acc
	}
	copied := *acc
	return &copied, nil
}

func (l *ledger) ApplyBalanceDelta(_ context.Context, accountID ulid.ULID, delta int64) error {
	for _, acc := range l.accounts {
		if acc.Id == accountID {
			acc.Balance += delta
			return nil
		}
	}
	return appErrors.ErrAccountNotFound
}

// Budgets

func (l *ledger) ApplyDelta(_ context.Context, budgetID ulid.ULID, amount int64, isDebit bool) (*budget.Budget, error) {
	if l.applyDeltaFn != nil {
		if err := l.applyDeltaFn(budgetID); err != nil {
			return nil, err
		}
	}
	b, ok := l.budgets[budgetID]
	if !ok {
		return nil, appErrors.ErrBudgetNotFound
	}
	b.ApplyChange(budget.Change(amount, isDebit))
	copied := *b
	return &copied, nil
}

func (l *ledger) EnsureOwned(_ context.Context, budgetID, userID ulid.ULID) error {
	if b, ok := l.budgets[budgetID]; ok && b.UserId == userID {
		return nil
	}
	return appErrors.ErrBudgetNotFound
}

type ownership struct {
	owners   map[ulid.ULID]ulid.ULID
	notFound error
}

func (o ownership) EnsureOwned(_ context.Context, id, userID ulid.ULID) error {
	if owner, ok := o.owners[id]; ok && owner == userID {
		return nil
	}
	return o.notFound
}

// Pots

type memoryPots struct {
	l *ledger
}

func (r memoryPots) Create(_ context.Context, p *pot.Pot) error {
	copied := *p
	r.l.pots[p.Id] = &copied
	return nil
}

func (r memoryPots) Update(_ context.Context, p *pot.Pot) error {
	stored, ok := r.l.pots[p.Id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *p
	copied.SavedAmount = stored.SavedAmount
	r.l.pots[p.Id] = &copied
	return nil
}

func (r memoryPots) Delete(_ context.Context, potID, _ ulid.ULID) error {
	delete(r.l.pots, potID)
	return nil
}

func (r memoryPots) GetByID(_ context.Context, potID, userID ulid.ULID) (*pot.Pot, error) {
	p, ok := r.l.pots[potID]
	if !ok || p.UserId != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r memoryPots) GetForUpdate(ctx context.Context, potID, userID ulid.ULID) (*pot.Pot, error) {
	if ctx.Value(txDepthKey{}) == nil {
		return nil, errors.New("row lock requested outside a unit of work")
	}
	return r.GetByID(ctx, potID, userID)
}

func (r memoryPots) GetByName(_ context.Context, name string, userID ulid.ULID) (*pot.Pot, error) {
	for _, p := range r.l.pots {
		if p.UserId == userID && strings.EqualFold(p.Name, name) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memoryPots) List(ctx context.Context, userID ulid.ULID, _ *pkg.PaginationParams) ([]*pot.Pot, int64, error) {
	out, _ := r.ListFirst(ctx, userID, len(r.l.pots))
	return out, int64(len(out)), nil
}

func (r memoryPots) ListFirst(_ context.Context, userID ulid.ULID, limit int) ([]*pot.Pot, error) {
	out := make([]*pot.Pot, 0)
	for _, p := range r.l.pots {
		if p.UserId == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Compare(out[j].Id) < 0 })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memoryPots) Totals(_ context.Context, userID ulid.ULID) (int64, int64, error) {
	var saved, target int64
	for _, p := range r.l.pots {
		if p.UserId == userID {
			saved += p.SavedAmount
			target += p.TargetAmount
		}
	}
	return saved, target, nil
}

func (r memoryPots) AddSavedAmount(_ context.Context, potID ulid.ULID, delta int64) error {
	p, ok := r.l.pots[potID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SavedAmount += delta
	return nil
}

type allowAllUsers struct{}

func (allowAllUsers) Exists(context.Context, ulid.ULID) error { return nil }

// Repository

type memoryRepository struct {
	l *ledger
}

func (r memoryRepository) Create(_ context.Context, tx *transaction.Transaction) error {
	copied := *tx
	r.l.transactions[tx.Id] = &copied
	return nil
}

func (r memoryRepository) Update(_ context.Context, tx *transaction.Transaction) error {
	if _, ok := r.l.transactions[tx.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *tx
	r.l.transactions[tx.Id] = &copied
	return nil
}

func (r memoryRepository) Delete(_ context.Context, id ulid.ULID) error {
	delete(r.l.transactions, id)
	return nil
}

func (r memoryRepository) GetByID(_ context.Context, id, userID ulid.ULID) (*transaction.Transaction, error) {
	tx, ok := r.l.transactions[id]
	if !ok || tx.UserId != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tx
	return &copied, nil
}

func (r memoryRepository) GetForUpdate(ctx context.Context, id, userID ulid.ULID) (*transaction.Transaction, error) {
	if ctx.Value(txDepthKey{}) == nil {
		return nil, errors.New("row lock requested outside a unit of work")
	}
	return r.GetByID(ctx, id, userID)
}

func (r memoryRepository) ExistsDuplicate(_ context.Context, key transaction.DuplicateKey) (bool, error) {
	for _, tx := range r.l.transactions {
		if tx.DuplicateKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryRepository) sorted(match func(*transaction.Transaction) bool) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0)
	for _, tx := range r.l.transactions {
		if match(tx) {
			copied := *tx
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Compare(out[j].Id) < 0 })
	return out
}

func (r memoryRepository) List(_ context.Context, userID ulid.ULID, _ *transaction.Filter, _ transaction.Sort, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	out := r.sorted(func(tx *transaction.Transaction) bool { return tx.UserId == userID })
	return out, int64(len(out)), nil
}

func (r memoryRepository) ListAll(_ context.Context, userID ulid.ULID, _ *transaction.Filter, _ transaction.Sort) ([]*transaction.Transaction, error) {
	return r.sorted(func(tx *transaction.Transaction) bool { return tx.UserId == userID }), nil
}

func (r memoryRepository) ListByAccount(_ context.Context, accountID ulid.ULID, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	out := r.sorted(func(tx *transaction.Transaction) bool { return tx.AccountId == accountID })
	return out, int64(len(out)), nil
}

func (r memoryRepository) ListByBudget(_ context.Context, budgetID ulid.ULID, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	out := r.sorted(func(tx *transaction.Transaction) bool { return pkg.SameULID(tx.BudgetId, &budgetID) })
	return out, int64(len(out)), nil
}

func (r memoryRepository) ListByPot(_ context.Context, potID ulid.ULID, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	out := r.sorted(func(tx *transaction.Transaction) bool { return pkg.SameULID(tx.PotId, &potID) })
	return out, int64(len(out)), nil
}

func (r memoryRepository) ListByCategory(_ context.Context, categoryID ulid.ULID, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	out := r.sorted(func(tx *transaction.Transaction) bool { return pkg.SameULID(tx.CategoryId, &categoryID) })
	return out, int64(len(out)), nil
}

func (r memoryRepository) SummaryByType(_ context.Context, userID ulid.ULID, window transaction.Window) ([]transaction.TypeTotal, error) {
	byType := map[transaction.Type]*transaction.TypeTotal{}
	for _, tx := range r.l.transactions {
		if tx.UserId != userID {
			continue
		}
		if window.From != nil && tx.TransactionDate.Before(*window.From) {
			continue
		}
		if window.To != nil && tx.TransactionDate.After(*window.To) {
			continue
		}
		total, ok := byType[tx.Type]
		if !ok {
			total = &transaction.TypeTotal{Type: tx.Type}
			byType[tx.Type] = total
		}
		total.Count++
		total.Total += tx.Amount
	}

	out := make([]transaction.TypeTotal, 0, len(byType))
	for _, t := range byType {
		out = append(out, *t)
	}
	return out, nil
}

func (r memoryRepository) DeleteByPot(_ context.Context, potID ulid.ULID) (int64, error) {
	var removed int64
	for id, tx := range r.l.transactions {
		if pkg.SameULID(tx.PotId, &potID) {
			delete(r.l.transactions, id)
			removed++
		}
	}
	return removed, nil
}

// EventPublisher

func (l *ledger) Publish(_ context.Context, event transaction.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func newEngine(l *ledger) *transaction.Service {
	engine, _ := newEngines(l)
	return engine
}

// newEngines wires the transaction engine and the pot engine to each other over l.
func newEngines(l *ledger) (*transaction.Service, *pot.Service) {
	pots := pot.NewService(memoryPots{l: l}, l, 4, shared.NewUserCheckerService(allowAllUsers{}))
	engine := transaction.NewService(
		memoryRepository{l: l},
		l,
		l,
		ownership{owners: l.categories, notFound: appErrors.ErrCategoryNotFound},
		pots,
		l,
		l,
		pkg.ListLimits{Default: 100, Max: 100},
	)
	pots.Transactions = engine
	return engine, pots
}
