package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toxzak-svg/Axievale/internal/models"
)

// UserStore manages registered extension accounts and their trial quotas.
type UserStore struct {
	db            *gorm.DB
	trialRequests int
}

// NewUserStore creates a user store. trialRequests is the quota granted to
// new accounts.
func NewUserStore(db *gorm.DB, trialRequests int) *UserStore {
	return &UserStore{
		db:            db,
		trialRequests: trialRequests,
	}
}

// Create registers a new trial account and returns it, including the API key.
// The key is only ever exposed on creation.
func (s *UserStore) Create(email string) (*models.UserAccount, error) {
	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	user := &models.UserAccount{
		ID:             uuid.NewString(),
		Email:          email,
		APIKey:         key,
		IsPaid:         false,
		TrialRemaining: s.trialRequests,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID returns the account for id, or (nil, nil) when unknown.
func (s *UserStore) GetByID(id string) (*models.UserAccount, error) {
	var user models.UserAccount
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKey returns the account owning key, or (nil, nil) when unknown.
func (s *UserStore) GetByAPIKey(key string) (*models.UserAccount, error) {
	var user models.UserAccount
	err := s.db.First(&user, "api_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate marks the account as paid. Returns (nil, nil) when unknown.
// Called by the payment collaborator once a checkout completes.
func (s *UserStore) Activate(id string) (*models.UserAccount, error) {
	result := s.db.Model(&models.UserAccount{}).Where("id = ?", id).Update("is_paid", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// DecrementTrial atomically consumes one trial unit. Returns the remaining
// count, or -1 when the account is unknown or already exhausted. The
// conditional UPDATE closes the race where two concurrent requests both see
// the last unit and both get admitted.
func (s *UserStore) DecrementTrial(id string) (int, error) {
	result := s.db.Model(&models.UserAccount{}).
		Where("id = ? AND trial_remaining > 0", id).
		UpdateColumn("trial_remaining", gorm.Expr("trial_remaining - 1"))
	if result.Error != nil {
		return -1, result.Error
	}
	if result.RowsAffected == 0 {
		return -1, nil
	}

	user, err := s.GetByID(id)
	if err != nil {
		return -1, err
	}
	if user == nil {
		return -1, nil
	}
	return user.TrialRemaining, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
