package fakeaccountrepo

import (
	"context"
	"sync"

	"github.com/strideify/auth-service/accounts"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

// FakeAccountRepo is an in-memory accounts.Repo for tests and local
// development. The mutex makes Create atomic, so concurrent registrations
// for the same username resolve to exactly one winner.
type FakeAccountRepo struct {
	accounts map[string]*accounts.Account
	lock     sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*accounts.Account),
	}
}

func (ar *FakeAccountRepo) FindByUsername(_ context.Context, username string) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	account, ok := ar.accounts[username]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (ar *FakeAccountRepo) Create(_ context.Context, account *accounts.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, ok := ar.accounts[account.Username]; ok {
		return accounts.ErrDuplicateAccount
	}
	copied := *account
	ar.accounts[account.Username] = &copied
	return nil
}

func (ar *FakeAccountRepo) UpdateToken(_ context.Context, username, token string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[username]
	if !ok {
		return accounts.ErrNotFound
	}
	account.CredentialToken = token
	return nil
}
