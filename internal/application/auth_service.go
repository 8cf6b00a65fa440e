package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eldrun/eldrun/internal/persistence"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 8
)

// tokenClaims is the JWT payload issued for a logged-in account.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// AuthService registers accounts, verifies credentials, and issues the
// signed session tokens the HTTP layer stores in a cookie.
type AuthService struct {
	accounts    persistence.AccountRepository
	secret      []byte
	tokenTTL    time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService wires dependencies for the auth service.
func NewAuthService(accounts persistence.AccountRepository, secret string, tokenTTL time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:    accounts,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Register validates and persists a new account, then signs it in.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (result AuthResult, err error) {
	logger := serviceLogger(ctx, s.logger, "auth", "register")
	defer func() {
		if err != nil {
			logger.Warn("registration rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("account registered", "account_id", result.Account.ID)
	}()

	username := strings.TrimSpace(params.Username)
	vErr := &ValidationError{}
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		vErr.add("username", fmt.Sprintf("Username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	if len(params.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if vErr.HasErrors() {
		return AuthResult{}, vErr
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := persistence.Account{
		ID:           s.idGenerator(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, persistence.ErrAlreadyExists) {
			return AuthResult{}, ErrAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create account: %w", err)
	}

	return s.issueToken(account)
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (result AuthResult, err error) {
	logger := serviceLogger(ctx, s.logger, "auth", "login")
	defer func() {
		if err != nil {
			logger.Warn("login rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("login succeeded", "account_id", result.Account.ID)
	}()

	account, err := s.accounts.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := CheckPassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("verify password: %w", err)
	}

	return s.issueToken(account)
}

// Authenticate validates a token string and resolves it to a principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrUnauthorized
	}

	// Tokens outlive nothing: a deleted account's token must stop working.
	account, err := s.accounts.GetAccount(ctx, claims.Subject)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}

	return Principal{AccountID: account.ID, Username: account.Username}, nil
}

func (s *AuthService) issueToken(account persistence.Account) (AuthResult, error) {
	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: account.Username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResult{Account: account, Token: signed, ExpiresAt: expires}, nil
}
