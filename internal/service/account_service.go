package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pouicentral/internal/auth"
	"pouicentral/internal/cache"
	apperrors "pouicentral/internal/errors"
	"pouicentral/internal/model"
	"pouicentral/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

var (
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = apperrors.E(apperrors.KindConflict, "Email address is already registered")
	// ErrEmailNotRegistered is returned when logging in with an unknown email.
	ErrEmailNotRegistered = apperrors.E(apperrors.KindUnauthorized, "Email address is not registered")
	// ErrPasswordMismatch is returned when the password does not match the stored credential.
	ErrPasswordMismatch = apperrors.E(apperrors.KindUnauthorized, "Password mismatch")
	// ErrAccountNotFound is returned when an account lookup by id finds nothing.
	ErrAccountNotFound = apperrors.E(apperrors.KindNotFound, "Account not found")
)

// AccountService exposes the account lifecycle operations.
type AccountService interface {
	Signup(ctx context.Context, firstName, lastName, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, firstName, lastName, email, password string) (*model.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type accountService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	cache  *cache.Client
}

// NewAccountService builds an AccountService over the user repository.
func NewAccountService(users repository.UserRepository, hasher auth.PasswordHasher, cache *cache.Client) AccountService {
	return &accountService{users: users, hasher: hasher, cache: cache}
}

func profileCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// Signup creates a new user with a hashed password. The email pre-check and
// the unique index both funnel duplicates into ErrEmailTaken, so a concurrent
// signup racing past the pre-check still fails cleanly.
func (s *accountService) Signup(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not check email availability", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not create account", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: digest,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not create account", err)
	}

	return user, nil
}

// Login verifies the credential pair and returns the matching user.
func (s *accountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotRegistered
		}
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not look up account", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return nil, ErrPasswordMismatch
	}

	return user, nil
}

// Profile returns the user record for id, reading through the cache.
func (s *accountService) Profile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, profileCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not load profile", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, profileCacheKey(id), payload, profileCacheTTL)
	}
	return user, nil
}

// UpdateSettings overwrites the profile fields and re-hashes the password.
func (s *accountService) UpdateSettings(ctx context.Context, id uuid.UUID, firstName, lastName, email, password string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not load profile", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not update settings", err)
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	user.PasswordHash = digest

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Wrap(apperrors.KindInfrastructure, "Could not update settings", err)
	}

	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return user, nil
}

// DeleteAccount removes the user record.
func (s *accountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.KindInfrastructure, "Could not load profile", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.KindInfrastructure, "Could not delete account", err)
	}

	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return nil
}
