// Package auth orchestrates the three authentication flows: Register, Login,
// and VerifySession. It composes the credential hasher, the session token
// codec, and the account repository, and enforces the uniqueness, rotation,
// and freshness invariants.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/strideify/auth-service/accounts"
	"github.com/strideify/auth-service/token"
)

// Repos holds all repository dependencies for the AuthService.
type Repos struct {
	Accounts accounts.Repo // Repository for account records
}

// AuthService provides methods for registration, login, and session
// verification. It holds no per-request state; every operation is an
// independent unit of work over the account store.
type AuthService struct {
	repos Repos
	codec *token.Codec // Signs and verifies session tokens
}

// NewAuthService initializes a new AuthService with required dependencies.
func NewAuthService(repos Repos, codec *token.Codec) (*AuthService, error) {
	if repos.Accounts == nil {
		return nil, errors.New("[NewAuthService] Accounts repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewAuthService] codec is required")
	}

	return &AuthService{
		repos: repos,
		codec: codec,
	}, nil
}

// Register creates a new account and returns its first session token.
// The token embeds the freshly hashed password and is persisted as the
// account's credential token before being returned.
func (as *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	_, err := as.repos.Accounts.FindByUsername(ctx, username)
	if err == nil {
		return "", ErrAlreadyExists
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		return "", errors.Wrap(ErrPersistence, err.Error())
	}

	hashedPassword, err := accounts.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "[Register] HashPassword")
	}

	signedToken, err := as.codec.Sign(username, hashedPassword)
	if err != nil {
		return "", errors.Wrap(err, "[Register] codec.Sign")
	}

	err = as.repos.Accounts.Create(ctx, &accounts.Account{
		Username:        username,
		CredentialToken: signedToken,
	})
	if err != nil {
		// A concurrent Register may win between the lookup and the write;
		// the unique constraint is the authoritative check.
		if errors.Is(err, accounts.ErrDuplicateAccount) {
			return "", ErrAlreadyExists
		}
		return "", errors.Wrap(ErrPersistence, err.Error())
	}

	return signedToken, nil
}

// Login verifies the credentials and rotates the session token. The stored
// token is decoded to recover the password hash issued with it; on a match
// the password is re-hashed with a fresh salt and a brand-new token with a
// fresh expiry window replaces the stored one. The prior token is superseded.
func (as *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := as.repos.Accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(ErrPersistence, err.Error())
	}

	claims, err := as.codec.Verify(account.CredentialToken)
	if err != nil {
		// Corrupted or expired stored token: the embedded hash is
		// unrecoverable, so the password cannot be checked.
		return "", ErrInvalidToken
	}

	if !accounts.CheckPasswordHash(password, claims.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	rehashedPassword, err := accounts.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "[Login] HashPassword")
	}

	newToken, err := as.codec.Sign(username, rehashedPassword)
	if err != nil {
		return "", errors.Wrap(err, "[Login] codec.Sign")
	}

	if err := as.repos.Accounts.UpdateToken(ctx, username, newToken); err != nil {
		return "", errors.Wrap(ErrPersistence, err.Error())
	}

	return newToken, nil
}

// VerifySession authenticates a presented token and returns the username it
// was issued for. Beyond the stateless signature and expiry checks, the token
// must still equal the account's stored credential token exactly; a token
// replaced by a later login is rejected as superseded.
func (as *AuthService) VerifySession(ctx context.Context, presentedToken string) (string, error) {
	claims, err := as.codec.Verify(presentedToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	account, err := as.repos.Accounts.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", errors.Wrap(ErrPersistence, err.Error())
	}

	if account.CredentialToken != presentedToken {
		return "", ErrSuperseded
	}

	return claims.Username, nil
}
