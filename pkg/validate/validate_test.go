package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/marmita/pkg/validate"
)

type signupInput struct {
	Username string `form:"username" validate:"required,alpha_dash,max=150"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Phone    string `form:"telefone" validate:"required,max=15"`
	Role     string `form:"tipo"     validate:"nullable,in=CLIENTE,RESTAURANTE"`
}

func TestValidSignup(t *testing.T) {
	errs := validate.Struct(signupInput{
		Username: "ana_souza",
		Email:    "ana@example.com",
		Password: "secret123",
		Phone:    "11999990000",
		Role:     "CLIENTE",
	})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredReportsFormNames(t *testing.T) {
	errs := validate.Struct(signupInput{})
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "telefone")
	assert.NotContains(t, errs, "tipo", "nullable field must be skipped when empty")
}

func TestMaxLength(t *testing.T) {
	errs := validate.Struct(signupInput{
		Username: "ana", Email: "ana@example.com", Password: "secret123",
		Phone: "1234567890123456",
	})
	assert.Contains(t, errs, "telefone")
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=CLIENTE,RESTAURANTE"`
	}
	assert.NotEmpty(t, validate.Struct(in{Role: "ADMIN"}))
	assert.Empty(t, validate.Struct(in{Role: "RESTAURANTE"}))
}

func TestMoneyRule(t *testing.T) {
	type in struct {
		Price string `form:"preco" validate:"required,money"`
	}
	assert.Empty(t, validate.Struct(in{Price: "10.00"}))
	assert.Empty(t, validate.Struct(in{Price: "0"}))
	assert.Contains(t, validate.Struct(in{Price: "-1.00"}), "preco")
	assert.Contains(t, validate.Struct(in{Price: "1.999"}), "preco")
	assert.Contains(t, validate.Struct(in{Price: "abc"}), "preco")
}

func TestBetweenRule(t *testing.T) {
	type in struct {
		Rating int `json:"nota" validate:"required,between=1,5"`
	}
	assert.Contains(t, validate.Struct(in{Rating: 6}), "nota")
	assert.Contains(t, validate.Struct(in{Rating: 0}), "nota")
	assert.Empty(t, validate.Struct(in{Rating: 5}))
}

func TestNullableURL(t *testing.T) {
	type in struct {
		Photo string `json:"foto_url" validate:"nullable,url"`
	}
	assert.Empty(t, validate.Struct(in{Photo: ""}))
	assert.NotEmpty(t, validate.Struct(in{Photo: "not-a-url"}))
	assert.Empty(t, validate.Struct(in{Photo: "https://cdn.example.com/x.jpg"}))
}

func TestAlphaDashRule(t *testing.T) {
	type in struct {
		Slug string `json:"slug" validate:"required,alpha_dash"`
	}
	assert.Empty(t, validate.Struct(in{Slug: "hello-world_123"}))
	assert.NotEmpty(t, validate.Struct(in{Slug: "hello world!"}))
}
