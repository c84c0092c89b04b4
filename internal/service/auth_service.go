package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/metrics"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
	"github.com/njprem/lighthouse-api/internal/util"
)

const DefaultPasswordResetTTL = 60 * time.Minute

// PasswordResetMailer delivers reset links out of band.
type PasswordResetMailer interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}

type PasswordResetMessage struct {
	To        string
	Name      string
	Link      string
	ExpiresAt time.Time
}

type AuthServiceConfig struct {
	ResetTTL time.Duration
	// ResetLinkBase is the frontend origin used to build mailed reset links.
	ResetLinkBase string
	Avatar        AvatarConfig
}

type RegisterInput struct {
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Username  string       `json:"username"`
	Password  string       `json:"password"`
	Email     *string      `json:"email"`
	Image     *ImageUpload `json:"image,omitempty"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Claim     *domain.SessionClaim
}

// PasswordResetTicket is returned for every reset request. Token is empty when
// no token was issued, which callers must not reveal.
type PasswordResetTicket struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	store    ports.Store
	hasher   *util.PasswordHasher
	sessions *util.SessionManager
	mailer   PasswordResetMailer
	avatars  *avatarUploader
	logger   *slog.Logger

	resetTTL  time.Duration
	resetBase string
	now       func() time.Time
}

func NewAuthService(
	store ports.Store,
	hasher *util.PasswordHasher,
	sessions *util.SessionManager,
	storage ports.ObjectStorage,
	mailer PasswordResetMailer,
	logger *slog.Logger,
	cfg AuthServiceConfig,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = DefaultPasswordResetTTL
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		sessions:  sessions,
		mailer:    mailer,
		avatars:   newAvatarUploader(storage, cfg.Avatar, logger),
		logger:    logger,
		resetTTL:  ttl,
		resetBase: strings.TrimRight(strings.TrimSpace(cfg.ResetLinkBase), "/"),
		now:       time.Now,
	}
}

// WithClock replaces the time source for reset token issuance and expiry checks.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.normalize()
	if err := in.validate(s.avatars); err != nil {
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		return nil, err
	}

	accounts := s.store.Accounts()
	if _, err := accounts.FindByUsername(ctx, in.Username); err == nil {
		metrics.RecordRegistration(metrics.OutcomeConflict)
		return nil, ErrUsernameTaken
	} else if !isNotFound(err) {
		metrics.RecordRegistration(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.RecordRegistration(metrics.OutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var imageURL *string
	var objectName string
	if in.Image != nil {
		storedURL, name, err := s.avatars.upload(ctx, "image", *in.Image)
		if err != nil {
			outcome := metrics.OutcomeError
			if errors.Is(err, ErrInvalidInput) {
				outcome = metrics.OutcomeInvalid
			}
			metrics.RecordRegistration(outcome)
			return nil, err
		}
		imageURL, objectName = &storedURL, name
	}

	account, err := accounts.Create(ctx, &domain.Account{
		Username:        in.Username,
		PasswordHash:    &hash,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		ProfileImageURL: imageURL,
	})
	if err != nil {
		s.avatars.discard(ctx, objectName)
		if isUniqueViolation(err) {
			metrics.RecordRegistration(metrics.OutcomeConflict)
			return nil, ErrUsernameTaken
		}
		metrics.RecordRegistration(metrics.OutcomeError)
		return nil, fmt.Errorf("create account: %w", err)
	}

	metrics.RecordRegistration(metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "account registered", slog.String("account_id", account.ID.String()))
	return account, nil
}

// Authenticate returns a claim only when password verifies against the stored
// hash. Unknown usernames, accounts without a password and wrong passwords all
// yield (nil, nil). Errors are reserved for store failures.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.SessionClaim, error) {
	account, err := s.store.Accounts().FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			s.hasher.VerifyDummy(ctx, password)
			return nil, nil
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !account.HasPassword() {
		s.hasher.VerifyDummy(ctx, password)
		return nil, nil
	}
	if !s.hasher.Verify(ctx, password, *account.PasswordHash) {
		return nil, nil
	}
	claim := domain.NewSessionClaim(account)
	return &claim, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	claim, err := s.Authenticate(ctx, username, password)
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		return nil, err
	}
	if claim == nil {
		metrics.RecordLogin(metrics.OutcomeRejected)
		return nil, ErrInvalidCredentials
	}
	result, err := s.issue(*claim)
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		return nil, err
	}
	metrics.RecordLogin(metrics.OutcomeSuccess)
	return result, nil
}

// IssueSession signs a fresh token for account, e.g. after a profile change.
func (s *AuthService) IssueSession(account *domain.Account) (*LoginResult, error) {
	return s.issue(domain.NewSessionClaim(account))
}

func (s *AuthService) issue(claim domain.SessionClaim) (*LoginResult, error) {
	token, expiresAt, err := s.sessions.Issue(claim)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	claim.IssuedAt = expiresAt.Add(-s.sessions.TTL())
	claim.ExpiresAt = expiresAt
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Claim: &claim}, nil
}

// ResolveSession returns nil for any token that is not valid and current.
func (s *AuthService) ResolveSession(token string) *domain.SessionClaim {
	return s.sessions.Resolve(token)
}

// RequestPasswordReset issues a reset token for username. The result has the
// same shape whether or not the account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) (*PasswordResetTicket, error) {
	if strings.TrimSpace(username) == "" {
		metrics.RecordPasswordReset("request", metrics.OutcomeInvalid)
		return nil, fieldError("username", "cannot be blank")
	}

	account, err := s.store.Accounts().FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			metrics.RecordPasswordReset("request", metrics.OutcomeRejected)
			return &PasswordResetTicket{}, nil
		}
		metrics.RecordPasswordReset("request", metrics.OutcomeError)
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	raw, err := util.GenerateResetToken()
	if err != nil {
		metrics.RecordPasswordReset("request", metrics.OutcomeError)
		return nil, err
	}
	digest := util.DigestResetToken(raw)
	expiresAt := s.now().Add(s.resetTTL)
	if _, err := s.store.ResetTokens().Create(ctx, digest, account.ID, expiresAt); err != nil {
		metrics.RecordPasswordReset("request", metrics.OutcomeError)
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	if err := s.deliver(ctx, account, raw, expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "send password reset email",
			slog.String("account_id", account.ID.String()), slog.Any("error", err))
		if delErr := s.store.ResetTokens().DeleteByToken(context.WithoutCancel(ctx), digest); delErr != nil {
			s.logger.ErrorContext(ctx, "discard undelivered reset token",
				slog.String("account_id", account.ID.String()), slog.Any("error", delErr))
		}
		metrics.RecordPasswordReset("request", metrics.OutcomeError)
		return &PasswordResetTicket{}, nil
	}

	metrics.RecordPasswordReset("request", metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "password reset requested", slog.String("account_id", account.ID.String()))
	return &PasswordResetTicket{Token: raw, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) deliver(ctx context.Context, account *domain.Account, token string, expiresAt time.Time) error {
	if s.mailer == nil || account.Email == nil {
		return nil
	}
	return s.mailer.SendPasswordReset(ctx, PasswordResetMessage{
		To:        *account.Email,
		Name:      account.DisplayName(),
		Link:      s.resetLink(token),
		ExpiresAt: expiresAt,
	})
}

func (s *AuthService) resetLink(token string) string {
	return s.resetBase + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetPassword consumes token and sets a new password. On success every
// outstanding reset token of the account is gone.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	in := resetInput{Token: strings.TrimSpace(token), Password: newPassword}
	if err := in.validate(); err != nil {
		metrics.RecordPasswordReset("consume", metrics.OutcomeInvalid)
		return err
	}

	digest := util.DigestResetToken(in.Token)
	existing, err := s.store.ResetTokens().FindByToken(ctx, digest)
	if err != nil {
		if isNotFound(err) {
			metrics.RecordPasswordReset("consume", metrics.OutcomeRejected)
			return ErrInvalidOrExpiredToken
		}
		metrics.RecordPasswordReset("consume", metrics.OutcomeError)
		return fmt.Errorf("lookup reset token: %w", err)
	}
	if !existing.ValidAt(s.now()) {
		metrics.RecordPasswordReset("consume", metrics.OutcomeRejected)
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.RecordPasswordReset("consume", metrics.OutcomeError)
		return fmt.Errorf("hash password: %w", err)
	}

	var accountID uuid.UUID
	err = s.store.WithinTx(ctx, func(tx ports.Store) error {
		id, err := tx.ResetTokens().Claim(ctx, digest, s.now())
		if err != nil {
			if isNotFound(err) {
				return ErrInvalidOrExpiredToken
			}
			return fmt.Errorf("claim reset token: %w", err)
		}
		if err := tx.Accounts().UpdatePassword(ctx, id, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if _, err := tx.ResetTokens().DeleteByAccount(ctx, id); err != nil {
			return fmt.Errorf("delete reset tokens: %w", err)
		}
		accountID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			metrics.RecordPasswordReset("consume", metrics.OutcomeRejected)
		} else {
			metrics.RecordPasswordReset("consume", metrics.OutcomeError)
		}
		return err
	}

	metrics.RecordPasswordReset("consume", metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "password reset completed", slog.String("account_id", accountID.String()))
	return nil
}
