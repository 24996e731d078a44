package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/shashiranjanraj/marmita/pkg/ctx"
	"github.com/shashiranjanraj/marmita/pkg/middleware"
)

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestParamUint(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want uint
		ok   bool
	}{
		"valid":    {"42", 42, true},
		"zero":     {"0", 0, false},
		"negative": {"-3", 0, false},
		"garbage":  {"abc", 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tc.raw)
			appctx.Wrap(func(c *appctx.Context) {
				got, ok := c.ParamUint("id")
				assert.Equal(t, tc.want, got)
				assert.Equal(t, tc.ok, ok)
			})(httptest.NewRecorder(), req)
		})
	}
}

func TestRedirectIsSeeOther(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/finalizar-pedido/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Redirectf("/pedido-confirmado/%d/", 7)
	})(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pedido-confirmado/7/", rec.Header().Get("Location"))
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		_, ok := c.Identity()
		assert.False(t, ok)
	})(httptest.NewRecorder(), req)

	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: 3, Role: "CLIENTE"}))
	appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.Identity()
		require.True(t, ok)
		assert.Equal(t, uint(3), id.UserID)
		assert.Equal(t, "CLIENTE", id.Role)
	})(httptest.NewRecorder(), req)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"ana","password":"x"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Username string `json:"username" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "ana", input.Username)
		c.Success(nil)
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONMalformedIs400(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Username string `json:"username"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":400`)
}

func TestBindJSONInvalidIs422(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Username string `json:"username" validate:"required"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestShouldBindForm(t *testing.T) {
	form := url.Values{"nome": {"Feijoada"}, "preco": {"32.50"}, "estoque": {"abc"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name  string `form:"nome"    validate:"required"`
			Price string `form:"preco"   validate:"required,money"`
			Stock int    `form:"estoque"`
		}
		errs, err := c.ShouldBindForm(&input)
		require.NoError(t, err)
		assert.Contains(t, errs, "estoque")
	})(httptest.NewRecorder(), req)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "1.2.3.4", c.ClientIP())
	})(httptest.NewRecorder(), req)
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Restaurant not found")
	})(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Restaurant not found"}`, rec.Body.String())
}
