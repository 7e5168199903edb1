// Package memstore provides an in-memory store.Store.
//
// Writes made inside ExecTx are staged and applied at once on success.
// GetAccountByNumberForUpdate and LockAccountNumbers take locks that are held
// until ExecTx returns, mirroring row locks and advisory locks in Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/rs/zerolog"
)

var (
	_ store.Store   = (*Store)(nil)
	_ store.Querier = (*tx)(nil)
)

// Store keeps users, accounts and transactions in memory.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]domain.AccountUser
	accounts     map[int64]domain.Account
	numbers      map[string]int64
	transactions map[string]domain.Transaction

	lastUserID        int64
	lastAccountID     int64
	lastTransactionID int64

	rows       rowLocks
	numberLock sync.Mutex
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[int64]domain.AccountUser),
		accounts:     make(map[int64]domain.Account),
		numbers:      make(map[string]int64),
		transactions: make(map[string]domain.Transaction),
		rows:         rowLocks{m: make(map[string]*sync.Mutex)},
	}
}

type rowLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (r *rowLocks) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.m[key]
	if !ok {
		l = &sync.Mutex{}
		r.m[key] = l
	}

	return l
}

// ExecTx runs fn in a unit of work. Staged writes are applied only when fn succeeds.
func (s *Store) ExecTx(ctx context.Context, fn func(q store.Querier) error) error {
	t := s.begin()
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}

	return t.commit(ctx)
}

func (s *Store) autocommit(ctx context.Context, fn func(t *tx) error) error {
	t := s.begin()
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}

	return t.commit(ctx)
}

// CreateUser implements store.Querier.
func (s *Store) CreateUser(ctx context.Context, name string) (u domain.AccountUser, err error) {
	err = s.autocommit(ctx, func(t *tx) error {
		u, err = t.CreateUser(ctx, name)
		return err
	})

	return u, err
}

// GetUser implements store.Querier.
func (s *Store) GetUser(ctx context.Context, id int64) (domain.AccountUser, error) {
	return s.read().GetUser(ctx, id)
}

// CreateAccount implements store.Querier.
func (s *Store) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (a domain.Account, err error) {
	err = s.autocommit(ctx, func(t *tx) error {
		a, err = t.CreateAccount(ctx, arg)
		return err
	})

	return a, err
}

// GetAccountByNumber implements store.Querier.
func (s *Store) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	return s.read().GetAccountByNumber(ctx, number)
}

// GetAccountByNumberForUpdate implements store.Querier. Outside ExecTx it is a plain read.
func (s *Store) GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return s.read().GetAccountByNumber(ctx, number)
}

// GetHighestNumberedAccount implements store.Querier.
func (s *Store) GetHighestNumberedAccount(ctx context.Context) (domain.Account, error) {
	return s.read().GetHighestNumberedAccount(ctx)
}

// CountAccountsByUser implements store.Querier.
func (s *Store) CountAccountsByUser(ctx context.Context, userID int64) (int64, error) {
	return s.read().CountAccountsByUser(ctx, userID)
}

// ListAccountsByUser implements store.Querier.
func (s *Store) ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return s.read().ListAccountsByUser(ctx, userID)
}

// UpdateAccount implements store.Querier.
func (s *Store) UpdateAccount(ctx context.Context, a domain.Account) (updated domain.Account, err error) {
	err = s.autocommit(ctx, func(t *tx) error {
		updated, err = t.UpdateAccount(ctx, a)
		return err
	})

	return updated, err
}

// LockAccountNumbers implements store.Querier. Outside ExecTx it has no effect.
func (s *Store) LockAccountNumbers(ctx context.Context) error {
	return nil
}

// CreateTransaction implements store.Querier.
func (s *Store) CreateTransaction(ctx context.Context, arg domain.Transaction) (created domain.Transaction, err error) {
	err = s.autocommit(ctx, func(t *tx) error {
		created, err = t.CreateTransaction(ctx, arg)
		return err
	})

	return created, err
}

// GetTransaction implements store.Querier.
func (s *Store) GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error) {
	return s.read().GetTransaction(ctx, transactionID)
}

// tx stages writes of a single unit of work.
type tx struct {
	s *Store

	users        []domain.AccountUser
	accounts     map[int64]domain.Account
	newAccounts  []int64
	transactions []domain.Transaction

	held        []*sync.Mutex
	heldRows    map[string]bool
	numbersHeld bool
}

// read returns a view of the committed state for single reads. It stages
// nothing, so it never needs release or commit.
func (s *Store) read() *tx {
	return &tx{s: s}
}

func (s *Store) begin() *tx {
	return &tx{
		s:        s,
		accounts: make(map[int64]domain.Account),
		heldRows: make(map[string]bool),
	}
}

func (t *tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}

	t.held = nil

	if t.numbersHeld {
		t.s.numberLock.Unlock()
		t.numbersHeld = false
	}
}

func (t *tx) commit(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.newAccounts {
		if _, ok := s.numbers[t.accounts[id].Number]; ok {
			l.Error().Str("account_number", t.accounts[id].Number).Msg("duplicate account number")
			return errorspkg.ErrInternal
		}
	}

	for _, tr := range t.transactions {
		if _, ok := s.transactions[tr.TransactionID]; ok {
			l.Error().Str("transaction_id", tr.TransactionID).Msg("duplicate transaction id")
			return errorspkg.ErrInternal
		}
	}

	for _, u := range t.users {
		s.users[u.ID] = u
	}

	for id, a := range t.accounts {
		s.accounts[id] = a
		s.numbers[a.Number] = id
	}

	for _, tr := range t.transactions {
		s.transactions[tr.TransactionID] = tr
	}

	return nil
}

func (t *tx) nextID(counter *int64) int64 {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	*counter++

	return *counter
}

func (t *tx) CreateUser(ctx context.Context, name string) (domain.AccountUser, error) {
	u := domain.AccountUser{
		ID:        t.nextID(&t.s.lastUserID),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	t.users = append(t.users, u)

	return u, nil
}

func (t *tx) GetUser(ctx context.Context, id int64) (domain.AccountUser, error) {
	for _, u := range t.users {
		if u.ID == id {
			return u, nil
		}
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	u, ok := t.s.users[id]
	if !ok {
		return domain.AccountUser{}, domain.ErrUserNotFound
	}

	return u, nil
}

func (t *tx) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if _, err := t.GetUser(ctx, arg.UserID); err != nil {
		return domain.Account{}, err
	}

	if arg.Balance < 0 {
		return domain.Account{}, domain.ErrAmountExceedsBalance
	}

	if _, err := t.GetAccountByNumber(ctx, arg.Number); err == nil {
		zerolog.Ctx(ctx).Error().Str("account_number", arg.Number).Msg("duplicate account number")
		return domain.Account{}, errorspkg.ErrInternal
	}

	a := domain.Account{
		ID:           t.nextID(&t.s.lastAccountID),
		UserID:       arg.UserID,
		Number:       arg.Number,
		Balance:      arg.Balance,
		Status:       arg.Status,
		RegisteredAt: arg.RegisteredAt,
	}

	t.accounts[a.ID] = a
	t.newAccounts = append(t.newAccounts, a.ID)

	return a, nil
}

func (t *tx) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	for _, a := range t.accounts {
		if a.Number == number {
			return a, nil
		}
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	id, ok := t.s.numbers[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return t.s.accounts[id], nil
}

func (t *tx) GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	if !t.heldRows[number] {
		l := t.s.rows.get(number)
		l.Lock()

		t.held = append(t.held, l)
		t.heldRows[number] = true
	}

	return t.GetAccountByNumber(ctx, number)
}

func higherNumber(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}

	return a > b
}

func (t *tx) GetHighestNumberedAccount(ctx context.Context) (domain.Account, error) {
	var (
		highest domain.Account
		found   bool
	)

	for _, a := range t.mergedAccounts() {
		if !found || higherNumber(a.Number, highest.Number) {
			highest = a
			found = true
		}
	}

	if !found {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return highest, nil
}

func (t *tx) CountAccountsByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64

	for _, a := range t.mergedAccounts() {
		if a.UserID == userID {
			n++
		}
	}

	return n, nil
}

func (t *tx) ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	items := []domain.Account{}

	for _, a := range t.mergedAccounts() {
		if a.UserID == userID {
			items = append(items, a)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// mergedAccounts returns committed accounts overlaid with the staged ones.
func (t *tx) mergedAccounts() map[int64]domain.Account {
	t.s.mu.RLock()
	merged := make(map[int64]domain.Account, len(t.s.accounts)+len(t.accounts))

	for id, a := range t.s.accounts {
		merged[id] = a
	}
	t.s.mu.RUnlock()

	for id, a := range t.accounts {
		merged[id] = a
	}

	return merged
}

func (t *tx) UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	if _, ok := t.accounts[a.ID]; !ok {
		t.s.mu.RLock()
		_, ok = t.s.accounts[a.ID]
		t.s.mu.RUnlock()

		if !ok {
			return domain.Account{}, domain.ErrAccountNotFound
		}
	}

	if a.Balance < 0 {
		return domain.Account{}, domain.ErrAmountExceedsBalance
	}

	t.accounts[a.ID] = a

	return a, nil
}

func (t *tx) LockAccountNumbers(ctx context.Context) error {
	if !t.numbersHeld {
		t.s.numberLock.Lock()
		t.numbersHeld = true
	}

	return nil
}

func (t *tx) accountByID(id int64) (domain.Account, bool) {
	if a, ok := t.accounts[id]; ok {
		return a, true
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	a, ok := t.s.accounts[id]

	return a, ok
}

func (t *tx) CreateTransaction(ctx context.Context, arg domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	a, ok := t.accountByID(arg.AccountID)
	if !ok {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}

	if arg.Amount <= 0 {
		l.Error().Int64("amount", arg.Amount).Msg("transaction amount must be positive")
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	if _, err := t.GetTransaction(ctx, arg.TransactionID); err == nil {
		l.Error().Str("transaction_id", arg.TransactionID).Msg("duplicate transaction id")
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	created := arg
	created.ID = t.nextID(&t.s.lastTransactionID)
	created.AccountNumber = a.Number

	t.transactions = append(t.transactions, created)

	return created, nil
}

func (t *tx) GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error) {
	for _, tr := range t.transactions {
		if tr.TransactionID == transactionID {
			return tr, nil
		}
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	tr, ok := t.s.transactions[transactionID]
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	return tr, nil
}
