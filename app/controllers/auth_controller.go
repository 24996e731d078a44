package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/services"
	"github.com/shashiranjanraj/marmita/pkg/ctx"
)

// AuthController handles registration and the web session login.
type AuthController struct{ base }

func NewAuthController(svc *Services) *AuthController {
	return &AuthController{base{svc: svc}}
}

type formField struct {
	Name     string   `json:"nome"`
	Type     string   `json:"tipo"`
	Required bool     `json:"obrigatorio"`
	Choices  []string `json:"opcoes,omitempty"`
}

var registerFields = []formField{
	{Name: "username", Type: "text", Required: true},
	{Name: "email", Type: "email", Required: true},
	{Name: "password", Type: "password", Required: true},
	{Name: "telefone", Type: "text", Required: true},
	{Name: "endereco", Type: "textarea", Required: true},
	{Name: "tipo_usuario", Type: "select", Choices: []string{string(models.RoleCustomer), string(models.RoleOwner)}},
}

var loginFields = []formField{
	{Name: "username", Type: "text", Required: true},
	{Name: "password", Type: "password", Required: true},
}

// RegisterForm GET /cadastro/
func (h *AuthController) RegisterForm(c *ctx.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{"campos": registerFields})
}

// Register POST /cadastro/ creates the account and logs it in.
func (h *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	errs, err := c.ShouldBindForm(&in)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	user, err := h.svc.Auth.Register(c.Context(), in)
	if errors.Is(err, services.ErrUsernameTaken) {
		c.ValidationError(map[string]string{"username": "A user with that username already exists."})
		return
	}
	if err != nil {
		internal(c, err)
		return
	}

	signIn(c, user)
	c.Redirect("/")
}

// LoginForm GET /entrar/
func (h *AuthController) LoginForm(c *ctx.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"campos": loginFields,
		"next":   c.Query("next"),
	})
}

// Login POST /entrar/ starts the session and follows ?next= when it is a
// local path.
func (h *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	errs, err := c.ShouldBindForm(&in)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	user, err := h.svc.Auth.Login(c.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.Error(http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		internal(c, err)
		return
	}

	signIn(c, user)

	next := c.Query("next")
	if next == "" {
		next = c.PostForm("next")
	}
	if !safeNext(next) {
		next = "/"
	}
	c.Redirect(next)
}

// Logout POST /sair/
func (h *AuthController) Logout(c *ctx.Context) {
	signOut(c)
	c.Redirect("/")
}
