package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

const SearchLimit = 20

type ProfileUpdateInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Username  string  `json:"username"`
	ImageURL  *string `json:"imageUrl"`
	// KeepImage leaves the stored image untouched and ignores ImageURL.
	KeepImage bool `json:"-"`
}

type ProfileUpdateResult struct {
	Account *domain.Account
	Session *LoginResult
}

type ProfileService struct {
	store   ports.Store
	auth    *AuthService
	avatars *avatarUploader
	logger  *slog.Logger
}

func NewProfileService(store ports.Store, auth *AuthService, storage ports.ObjectStorage, logger *slog.Logger, avatar AvatarConfig) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		store:   store,
		auth:    auth,
		avatars: newAvatarUploader(storage, avatar, logger),
		logger:  logger,
	}
}

func (s *ProfileService) Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.store.Accounts().FindByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// Update replaces the editable profile fields and returns a session token
// carrying the new values.
func (s *ProfileService) Update(ctx context.Context, accountID uuid.UUID, in ProfileUpdateInput) (*ProfileUpdateResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if in.Username != current.Username {
		other, err := s.store.Accounts().FindByUsername(ctx, in.Username)
		switch {
		case err == nil && other.ID != accountID:
			return nil, ErrUsernameTaken
		case err != nil && !isNotFound(err):
			return nil, fmt.Errorf("lookup account: %w", err)
		}
	}

	updated, err := s.store.Accounts().UpdateProfile(ctx, accountID, domain.AccountProfile{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Username:        in.Username,
		ProfileImageURL: in.ImageURL,
		KeepImage:       in.KeepImage,
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrUsernameTaken
		case isNotFound(err):
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	session, err := s.auth.IssueSession(updated)
	if err != nil {
		return nil, err
	}
	return &ProfileUpdateResult{Account: updated, Session: session}, nil
}

// UploadAvatar stores img and points the account's profile image at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, accountID uuid.UUID, img ImageUpload) (string, error) {
	if _, err := s.Get(ctx, accountID); err != nil {
		return "", err
	}
	url, objectName, err := s.avatars.upload(ctx, "file", img)
	if err != nil {
		return "", err
	}
	if _, err := s.store.Accounts().UpdateProfileImage(ctx, accountID, &url); err != nil {
		s.avatars.discard(ctx, objectName)
		if isNotFound(err) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("update profile image: %w", err)
	}
	s.logger.InfoContext(ctx, "avatar updated", slog.String("account_id", accountID.String()))
	return url, nil
}

// Search matches query against usernames and names, oldest accounts first.
func (s *ProfileService) Search(ctx context.Context, query string) ([]domain.AccountSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.AccountSearchResult{}, nil
	}
	if len(query) > maxSearchLength {
		return nil, fieldError("query", fmt.Sprintf("must be at most %d characters", maxSearchLength))
	}
	results, err := s.store.Accounts().Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return results, nil
}
