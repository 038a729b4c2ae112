// Package postgres implements accounts.Repo on PostgreSQL. Username
// uniqueness is enforced by the primary key, so concurrent registrations
// resolve at the write itself rather than in application code.
package postgres

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/strideify/auth-service/accounts"
)

// DB is the subset of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ accounts.Repo = (*AccountRepository)(nil)

// AccountRepository implements accounts.Repo using PostgreSQL.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByUsername retrieves an account by username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT username, credential_token
		FROM accounts
		WHERE username = $1
	`, username)

	account := &accounts.Account{}
	err := row.Scan(&account.Username, &account.CredentialToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FindByUsername] scan account")
	}
	return account, nil
}

// Create stores a new account. A unique violation on the username maps to
// accounts.ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, account *accounts.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (username, credential_token)
		VALUES ($1, $2)
	`, account.Username, account.CredentialToken)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return accounts.ErrDuplicateAccount
		}
		return errors.Wrap(err, "[Create] insert account")
	}
	return nil
}

// UpdateToken replaces the stored credential token in a single statement, so
// concurrent logins for the same username serialize on the row and the final
// value is always one of the attempted tokens.
func (r *AccountRepository) UpdateToken(ctx context.Context, username, token string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET credential_token = $2, updated_at = now()
		WHERE username = $1
	`, username, token)
	if err != nil {
		return errors.Wrap(err, "[UpdateToken] update account")
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}
	return nil
}
