package repositories

import (
	"context"

	"github.com/shashiranjanraj/marmita/app/models"
)

// UserRepository handles database operations for User and Profile.
type UserRepository struct{ base }

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) WithTx(tx *Tx) *UserRepository {
	return &UserRepository{base{tx: tx}}
}

// FindByUsername looks up a user and its profile by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.q(ctx).Preload("Profile").Where("username = ?", username).First(&user)
	return user, err
}

// FindByID looks up a user and its profile by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.q(ctx).Preload("Profile").Where("id = ?", id).First(&user)
	return user, err
}

// FindByProfileID looks up the account owning a profile.
func (r *UserRepository) FindByProfileID(ctx context.Context, profileID uint) (models.User, error) {
	var p models.Profile
	if err := r.q(ctx).Where("id = ?", profileID).First(&p); err != nil {
		return models.User{}, err
	}
	return r.FindByID(ctx, p.UserID)
}

// ProfileOf returns the profile of userID, or gorm.ErrRecordNotFound for
// accounts without one.
func (r *UserRepository) ProfileOf(ctx context.Context, userID uint) (models.Profile, error) {
	var p models.Profile
	err := r.q(ctx).Where("user_id = ?", userID).First(&p)
	return p, err
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	n, err := r.q(ctx).Model(&models.User{}).Where("username = ?", username).Count()
	return n > 0, err
}

// Create persists the user; a non-nil Profile is inserted with it.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.q(ctx).Create(user)
}
