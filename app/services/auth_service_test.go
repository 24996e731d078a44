package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/internal/testdb"
	"github.com/shashiranjanraj/marmita/pkg/auth"
)

func registerInput(username, role string) services.RegisterInput {
	return services.RegisterInput{
		Username: username,
		Email:    username + "@marmita.test",
		Password: "segredo123",
		Phone:    "11999990000",
		Address:  "Rua B, 2",
		Role:     role,
	}
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	db := testdb.Setup(t)
	svc := services.NewAuthService()

	user, err := svc.Register(bg, registerInput("maria", ""))
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.Equal(t, models.RoleCustomer, user.Profile.Role, "role defaults to CLIENTE")
	assert.NotEqual(t, "segredo123", user.Password)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "11999990000", profile.Phone)

	owner, err := svc.Register(bg, registerInput("joao", "RESTAURANTE"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, services.RoleOf(owner))
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	testdb.Setup(t)
	svc := services.NewAuthService()

	_, err := svc.Register(bg, registerInput("maria", ""))
	require.NoError(t, err)
	_, err = svc.Register(bg, registerInput("maria", "RESTAURANTE"))
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db := testdb.Setup(t)
	testdb.User(t, db, "cliente", models.RoleCustomer)
	svc := services.NewAuthService()

	user, err := svc.Login(bg, services.LoginInput{Username: "cliente", Password: testdb.Password})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, services.RoleOf(user))

	_, err = svc.Login(bg, services.LoginInput{Username: "cliente", Password: "errada"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login(bg, services.LoginInput{Username: "ninguem", Password: "errada"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestTokenCarriesRole(t *testing.T) {
	db := testdb.Setup(t)
	owner := testdb.User(t, db, "dono", models.RoleOwner)
	svc := services.NewAuthService()

	token, err := svc.Token(owner)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.UserID)
	assert.Equal(t, "RESTAURANTE", claims.Role)
}

func TestActorOfStaleUserIsAnonymous(t *testing.T) {
	db := testdb.Setup(t)
	u := testdb.User(t, db, "cliente", models.RoleCustomer)
	svc := services.NewAuthService()

	a, err := svc.Actor(bg, u.ID)
	require.NoError(t, err)
	assert.True(t, a.IsCustomer())

	a, err = svc.Actor(bg, u.ID+100)
	require.NoError(t, err)
	assert.False(t, a.Authenticated())
}
