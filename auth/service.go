// Package auth registers users and exchanges their credentials for signed
// bearer tokens.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/waterlily/database"
	"github.com/mbolis/waterlily/ident"
	"github.com/mbolis/waterlily/log"
	"github.com/mbolis/waterlily/model"
)

// bcrypt ignores everything past this many bytes.
const maxPasswordBytes = 72

// NewTokenAuth returns the HS256 signer/verifier shared by the login
// endpoint and the auth gate.
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

type Service struct {
	db       *database.DB
	tokens   *jwtauth.JWTAuth
	tokenTTL time.Duration
	cost     int

	// compared against on unknown emails so both failures cost one bcrypt run
	dummyHash []byte

	now func() time.Time
}

func NewService(db *database.DB, tokens *jwtauth.JWTAuth, tokenTTL time.Duration, bcryptCost int) *Service {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(ident.New()), bcryptCost)
	if err != nil {
		log.Errorf("auth.dummy_hash: %s", err)
	}

	return &Service{
		db:        db,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		cost:      bcryptCost,
		dummyHash: dummyHash,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new user and returns its public projection.
func (s *Service) Register(ctx context.Context, email, password string) (user model.User, err error) {
	if len(password) > maxPasswordBytes {
		return user, model.ErrValidation(model.Issue{
			Path:    []any{"password"},
			Message: fmt.Sprintf("password must contain at most %d bytes", maxPasswordBytes),
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return user, fmt.Errorf("auth.register.hash: %w", err)
	}

	user = model.User{ID: ident.New(), Email: normalizeEmail(email)}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`),
		user.ID,
		user.Email,
		string(hash),
	)
	if database.IsUniqueViolation(err) {
		log.Debugf("auth.register: email already registered")
		return model.User{}, model.ErrEmailExists()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("auth.register.insert: %w", err)
	}

	return user, nil
}

// Login checks the credentials and issues a bearer token for the user. An
// unknown email and a wrong password fail with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (res model.LoginResult, err error) {
	var row struct {
		ID           string `db:"id"`
		Email        string `db:"email"`
		PasswordHash string `db:"password_hash"`
	}
	err = s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, email, password_hash FROM users WHERE email = ?`),
		normalizeEmail(email),
	)
	if errors.Is(err, sql.ErrNoRows) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return res, model.ErrInvalidCredentials()
	}
	if err != nil {
		return res, fmt.Errorf("auth.login.select: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return res, model.ErrInvalidCredentials()
	}
	if err != nil {
		return res, fmt.Errorf("auth.login.compare: %w", err)
	}

	token, err := s.issueToken(row.ID)
	if err != nil {
		return res, fmt.Errorf("auth.login.token: %w", err)
	}

	return model.LoginResult{
		Token: token,
		User:  model.User{ID: row.ID, Email: row.Email},
	}, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := s.now()
	claims := map[string]interface{}{"sub": userID}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(s.tokenTTL))

	_, token, err := s.tokens.Encode(claims)
	return token, err
}
