package routes_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/internal/testdb"
	"github.com/shashiranjanraj/marmita/pkg/testkit"
)

func apiLogin(t *testing.T, c *testkit.Client, username string) string {
	t.Helper()
	resp := c.PostJSON("/api/login/", map[string]string{"username": username, "password": testdb.Password})
	require.Equal(t, http.StatusOK, resp.Code, "%s", resp.Body)
	body := resp.JSON(t)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, username, body["username"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPICatalog(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.Get("/api/restaurantes/")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Cantina", list[0]["nome"])

	resp = c.Get(fmt.Sprintf("/api/restaurantes/%d/", f.sertao.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Sertão", resp.JSON(t)["nome"])

	resp = c.Get("/api/restaurantes/9999/")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAPIAuthentication(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	assert.Equal(t, false, c.Get("/api/user/").JSON(t)["is_authenticated"])

	resp := c.PostJSON("/api/login/", map[string]string{"username": "cliente", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, false, resp.JSON(t)["success"])

	assert.Equal(t, http.StatusMethodNotAllowed, c.Get("/api/login/").Code)

	apiLogin(t, c, "cliente")
	user := c.Get("/api/user/").JSON(t)
	assert.Equal(t, true, user["is_authenticated"])
	assert.Equal(t, "CLIENTE", user["tipo_usuario"])

	resp = c.PostJSON("/api/logout/", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, c.Get("/api/user/").JSON(t)["is_authenticated"])
}

func TestAPIBearerToken(t *testing.T) {
	f := setup(t)
	token := apiLogin(t, f.client(t), "dono")

	c := f.client(t)
	c.SetHeader("Authorization", "Bearer "+token)
	user := c.Get("/api/user/").JSON(t)
	assert.Equal(t, "dono", user["username"])
	assert.Equal(t, "RESTAURANTE", user["tipo_usuario"])
}

func TestAPICartStatusCodes(t *testing.T) {
	f := setup(t)

	anon := f.client(t)
	assert.Equal(t, http.StatusUnauthorized, anon.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.lasanha.ID}).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.Do(http.MethodPut, "/api/carrinho/adicionar/", nil, "").Code, "auth before method")
	assert.Equal(t, http.StatusUnauthorized, anon.PostJSON("/api/checkout/", nil).Code)

	c := f.client(t)
	apiLogin(t, c, "cliente")
	assert.Equal(t, float64(0), c.Get("/api/carrinho/").JSON(t)["total"])

	assert.Equal(t, http.StatusMethodNotAllowed, c.Get("/api/carrinho/adicionar/").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, c.Get("/api/checkout/").Code)
	assert.Equal(t, http.StatusBadRequest, c.PostJSON("/api/carrinho/adicionar/", `{"produto_id":`).Code)
	assert.Equal(t, http.StatusBadRequest, c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": 0}).Code)
	assert.Equal(t, http.StatusNotFound, c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": 9999}).Code)

	resp := c.PostJSON("/api/checkout/", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Cart is empty", resp.JSON(t)["message"])

	owner := f.client(t)
	apiLogin(t, owner, "dono")
	assert.Equal(t, http.StatusForbidden, owner.Get("/api/carrinho/").Code)
	assert.Equal(t, http.StatusForbidden, owner.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.lasanha.ID}).Code)
	assert.Equal(t, http.StatusBadRequest, owner.PostJSON("/api/checkout/", nil).Code)
}

func TestAPICheckout(t *testing.T) {
	f := setup(t)
	c := f.client(t)
	apiLogin(t, c, "cliente")

	for _, id := range []uint{f.lasanha.ID, f.lasanha.ID, f.salada.ID} {
		resp := c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": id})
		require.Equal(t, http.StatusOK, resp.Code, "%s", resp.Body)
	}
	raw := c.Get("/api/carrinho/").JSON(t)
	assert.Equal(t, "25.00", raw["total"])

	resp := c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.baiao.ID})
	carrinho := resp.JSON(t)["carrinho"].(map[string]interface{})
	assert.Len(t, carrinho, 3)

	resp = c.PostJSON("/api/checkout/", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "mixed restaurants")

	// start over with a single restaurant
	c = f.client(t)
	apiLogin(t, c, "cliente")
	c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.lasanha.ID})
	c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.lasanha.ID})
	c.PostJSON("/api/carrinho/adicionar/", map[string]uint{"produto_id": f.salada.ID})

	resp = c.PostJSON("/api/checkout/", nil)
	require.Equal(t, http.StatusOK, resp.Code, "%s", resp.Body)
	body := resp.JSON(t)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "25.00", body["valor_total"])
	assert.NotZero(t, body["pedido_id"])
}

func TestAPIReviews(t *testing.T) {
	f := setup(t)
	reviewsURL := fmt.Sprintf("/api/restaurantes/%d/avaliacoes/", f.cantina.ID)

	anon := f.client(t)
	assert.Equal(t, http.StatusUnauthorized, anon.PostJSON(reviewsURL, map[string]interface{}{"nota": 5}).Code)

	c := f.client(t)
	apiLogin(t, c, "cliente")
	assert.Equal(t, http.StatusUnprocessableEntity, c.PostJSON(reviewsURL, map[string]interface{}{"nota": 0}).Code)
	for _, n := range []int{5, 3, 4} {
		resp := c.PostJSON(reviewsURL, map[string]interface{}{"nota": n, "comentario": "ok"})
		require.Equal(t, http.StatusCreated, resp.Code, "%s", resp.Body)
	}

	resp := anon.Get(reviewsURL + "?per_page=2")
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.JSON(t)["data"].(map[string]interface{})
	assert.Len(t, data["items"], 2)
	meta := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, meta["total"])
	assert.EqualValues(t, 2, meta["total_pages"])

	owner := f.client(t)
	apiLogin(t, owner, "dono")
	assert.Equal(t, http.StatusForbidden, owner.PostJSON(reviewsURL, map[string]interface{}{"nota": 5}).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, c.Do(http.MethodDelete, reviewsURL, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, anon.Get("/api/restaurantes/9999/avaliacoes/").Code)
}
