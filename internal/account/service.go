package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"appupdate-service/internal/account/entity"
	"appupdate-service/internal/account/repo"
	"appupdate-service/internal/apperror"
	"appupdate-service/internal/token"
)

// Repository is the persistence surface the auth flows need. The sqlx
// implementation lives in the repo subpackage; tests substitute fakes.
type Repository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	GetByIDAndUsername(ctx context.Context, id uuid.UUID, username string) (*entity.Account, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string) error
	TokenBound(ctx context.Context, id uuid.UUID, presented string, slot repo.TokenSlot) (bool, error)
}

// CaptchaValidator consumes and checks a captcha entry. Validation removes
// the entry whatever the outcome.
type CaptchaValidator interface {
	Validate(id, code string) error
}

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates captcha validation, credential checks and token
// issuance for registration, login and refresh.
type AuthService struct {
	repo    Repository
	captcha CaptchaValidator
	hasher  PasswordHasher
	codec   *token.Codec
}

func NewAuthService(r Repository, c CaptchaValidator, h PasswordHasher, codec *token.Codec) *AuthService {
	if h == nil {
		h = BcryptHasher{}
	}
	return &AuthService{repo: r, captcha: c, hasher: h, codec: codec}
}

// Identical message for unknown-user and wrong-password so login failures
// never reveal which usernames exist.
const msgBadCredentials = "invalid username or password"

// Register creates an account. The check order is a contract: an empty
// password must never consume a captcha entry.
func (s *AuthService) Register(ctx context.Context, username, password, confirmPassword, captchaID, captchaCode string) error {
	if username == "" {
		return apperror.BadRequest("username must not be empty")
	}
	if password == "" {
		return apperror.BadRequest("password must not be empty")
	}
	if password != confirmPassword {
		return apperror.BadRequest("passwords do not match")
	}
	if err := s.captcha.Validate(captchaID, captchaCode); err != nil {
		return apperror.BadRequest(err.Error())
	}

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return apperror.BadRequest(fmt.Sprintf("user '%s' already exists", username))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return apperror.Internal("failed to look up user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}

	now := time.Now()
	a := &entity.Account{
		ID:         uuid.New(),
		Username:   username,
		Password:   hash,
		FullName:   username,
		CreateTime: now,
		UpdateTime: now,
		IsDelete:   false,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return apperror.Internal("failed to create user", err)
	}
	return nil
}

// Login validates the captcha and credentials, then binds a fresh token
// pair to the account, implicitly logging out any other holder of the old
// pair.
func (s *AuthService) Login(ctx context.Context, username, password, captchaID, captchaCode string) (*TokenPair, error) {
	if err := s.captcha.Validate(captchaID, captchaCode); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.BadRequest(msgBadCredentials)
		}
		return nil, apperror.Internal("failed to look up user", err)
	}

	// Checked before password verification: a deleted account must not leak
	// whether the submitted password was correct.
	if a.IsDelete {
		return nil, apperror.BadRequest("account has been deleted")
	}

	if !s.hasher.Verify(a.Password, password) {
		return nil, apperror.BadRequest(msgBadCredentials)
	}

	return s.issueAndBind(ctx, a.ID, a.ID.String(), a.Username)
}

// Refresh rotates the bound token pair. The binding check runs first so a
// structurally valid refresh token that was superseded by a newer login is
// rejected before any signature work.
func (s *AuthService) Refresh(ctx context.Context, accountID, refreshToken string) (*TokenPair, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, apperror.Unauthorized(fmt.Sprintf("invalid account id: %s", err))
	}

	bound, err := s.repo.TokenBound(ctx, id, refreshToken, repo.SlotRefresh)
	if err != nil {
		return nil, apperror.Internal("failed to check refresh token", err)
	}
	if !bound {
		return nil, apperror.Unauthorized("refresh token not recognized, please log in again")
	}

	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("refresh token invalid, please log in again")
	}

	return s.issueAndBind(ctx, id, claims.AccountID, claims.Username)
}

func (s *AuthService) issueAndBind(ctx context.Context, id uuid.UUID, accountID, username string) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(accountID, username)
	if err != nil {
		return nil, apperror.Internal("failed to create access token", err)
	}
	refresh, err := s.codec.IssueRefresh(accountID, username)
	if err != nil {
		return nil, apperror.Internal("failed to create refresh token", err)
	}
	if err := s.repo.UpdateTokens(ctx, id, access, refresh); err != nil {
		return nil, apperror.Internal("failed to save tokens", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
