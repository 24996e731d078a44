package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/marmita/pkg/middleware"
	"github.com/shashiranjanraj/marmita/pkg/rbac"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func serve(h http.Handler, id *middleware.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/painel/", nil)
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHasRole(t *testing.T) {
	h := rbac.HasRole(redirectHome, "RESTAURANTE")(ok)

	assert.Equal(t, http.StatusNoContent, serve(h, &middleware.Identity{UserID: 1, Role: "RESTAURANTE"}).Code)
	assert.Equal(t, http.StatusSeeOther, serve(h, &middleware.Identity{UserID: 2, Role: "CLIENTE"}).Code)
	assert.Equal(t, http.StatusSeeOther, serve(h, &middleware.Identity{UserID: 3}).Code)
	assert.Equal(t, http.StatusSeeOther, serve(h, nil).Code)
}

func TestHasRoleDefaultsToForbiddenEnvelope(t *testing.T) {
	rec := serve(rbac.HasRole(nil, "RESTAURANTE")(ok), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"status":403,"message":"Forbidden"}`, rec.Body.String())
}

func TestDenyRole(t *testing.T) {
	h := rbac.DenyRole(redirectHome, "RESTAURANTE")(ok)

	assert.Equal(t, http.StatusSeeOther, serve(h, &middleware.Identity{UserID: 1, Role: "RESTAURANTE"}).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, &middleware.Identity{UserID: 2, Role: "CLIENTE"}).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, nil).Code)
}

func TestGuest(t *testing.T) {
	h := rbac.Guest(redirectHome)(ok)

	assert.Equal(t, http.StatusNoContent, serve(h, nil).Code)
	rec := serve(h, &middleware.Identity{UserID: 5})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
