package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/auth"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/orm"
)

// RegisterInput is the sign-up form and JSON body.
type RegisterInput struct {
	Username string `form:"username"     json:"username"     validate:"required,alpha_dash,max=150"`
	Email    string `form:"email"        json:"email"        validate:"required,email,max=254"`
	Password string `form:"password"     json:"password"     validate:"required,min=6,max=128"`
	Phone    string `form:"telefone"     json:"telefone"     validate:"required,max=15"`
	Address  string `form:"endereco"     json:"endereco"     validate:"required"`
	Role     string `form:"tipo_usuario" json:"tipo_usuario" validate:"nullable,in=CLIENTE,RESTAURANTE"`
}

type LoginInput struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("marmita-timing-guard")
	return h
})

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{users: repositories.NewUserRepository()}
}

// Register creates the account and its profile in one transaction. The role
// defaults to CLIENTE and never changes afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)

	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: check username: %w", err)
	}
	if taken {
		return models.User{}, ErrUsernameTaken
	}

	role := models.Role(in.Role)
	if !role.Valid() {
		role = models.RoleCustomer
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Password: hash,
		Profile: &models.Profile{
			Phone:   strings.TrimSpace(in.Phone),
			Address: strings.TrimSpace(in.Address),
			Role:    role,
		},
	}

	err = orm.DB().WithContext(ctx).Transaction(func(tx *orm.Query) error {
		return s.users.WithTx(tx).Create(ctx, &user)
	})
	if err != nil {
		return models.User{}, fmt.Errorf("auth: create user: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

// Login checks the password and returns the user with its profile.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if orm.IsNotFound(err) {
		// Burn a hash comparison so unknown usernames cost the same.
		auth.CheckPassword(dummyHash(), in.Password)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("auth: find user: %w", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Token issues an API token carrying the profile role.
func (s *AuthService) Token(user models.User) (string, error) {
	return auth.GenerateToken(user.ID, string(RoleOf(user)))
}

// User loads an account by id.
func (s *AuthService) User(ctx context.Context, id uint) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

// Actor resolves the policy view of userID. A stale id (deleted account)
// resolves to the anonymous actor.
func (s *AuthService) Actor(ctx context.Context, userID uint) (policies.Actor, error) {
	if userID == 0 {
		return policies.Actor{}, nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if orm.IsNotFound(err) {
		return policies.Actor{}, nil
	}
	if err != nil {
		return policies.Actor{}, fmt.Errorf("auth: load actor: %w", err)
	}
	return ActorOf(user), nil
}

// ActorOf builds the policy view of an already loaded user.
func ActorOf(user models.User) policies.Actor {
	a := policies.Actor{UserID: user.ID}
	if user.Profile != nil {
		a.ProfileID = user.Profile.ID
		a.Role = user.Profile.Role
	}
	return a
}

// RoleOf is the profile role, or "" for accounts without a profile.
func RoleOf(user models.User) models.Role {
	if user.Profile == nil {
		return ""
	}
	return user.Profile.Role
}
