package routes_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/app/controllers"
	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/routes"
	"github.com/shashiranjanraj/marmita/internal/testdb"
	"github.com/shashiranjanraj/marmita/pkg/app"
	"github.com/shashiranjanraj/marmita/pkg/session"
	"github.com/shashiranjanraj/marmita/pkg/testkit"
)

type fixture struct {
	db       *gorm.DB
	svc      *controllers.Services
	handler  http.Handler
	owner    models.User
	customer models.User
	cantina  models.Restaurant
	sertao   models.Restaurant
	lasanha  models.Product
	salada   models.Product
	baiao    models.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Setup(t)

	svc := controllers.NewServices()
	register, err := routes.Register(svc)
	require.NoError(t, err)

	f := &fixture{db: db, svc: svc, handler: app.New().Routes(register).Handler(session.NewMemoryStore())}
	f.owner = testdb.User(t, db, "dono", models.RoleOwner)
	f.customer = testdb.User(t, db, "cliente", models.RoleCustomer)
	f.cantina = testdb.Restaurant(t, db, f.owner, "Cantina")
	f.sertao = testdb.Restaurant(t, db, f.owner, "Sertão")
	f.lasanha = testdb.Product(t, db, f.cantina, "Lasanha", "10.00")
	f.salada = testdb.Product(t, db, f.cantina, "Salada", "5.00")
	f.baiao = testdb.Product(t, db, f.sertao, "Baião", "20.00")
	return f
}

func (f *fixture) client(t *testing.T) *testkit.Client {
	return testkit.NewClient(t, f.handler)
}

func login(t *testing.T, c *testkit.Client, username string) {
	t.Helper()
	resp := c.PostForm("/entrar/", url.Values{"username": {username}, "password": {testdb.Password}})
	require.Equal(t, http.StatusSeeOther, resp.Code, "login %s: %s", username, resp.Body)
	require.Equal(t, "/", resp.Location())
}

func TestCatalogPages(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.Get("/")
	require.Equal(t, http.StatusOK, resp.Code)
	list := resp.JSON(t)["restaurantes"].([]interface{})
	assert.Len(t, list, 2)

	resp = c.Get(fmt.Sprintf("/restaurante/%d/", f.cantina.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	detail := resp.JSON(t)["restaurante"].(map[string]interface{})
	assert.Equal(t, "Cantina", detail["nome"])
	products := detail["produtos"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "10.00", products[0].(map[string]interface{})["preco"])

	assert.Equal(t, http.StatusNotFound, c.Get("/restaurante/9999/").Code)

	resp = c.Get(fmt.Sprintf("/restaurante/%d/qrcode.png?size=128", f.cantina.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG", string(resp.Body[:4]))
}

func TestCustomerCheckoutFlow(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.Get("/carrinho/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 0, resp.JSON(t)["total"])

	resp = c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.lasanha.ID), nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Contains(t, resp.Location(), "/entrar/")

	login(t, c, "cliente")

	for _, id := range []uint{f.lasanha.ID, f.lasanha.ID, f.salada.ID} {
		resp = c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", id), nil)
		require.Equal(t, http.StatusSeeOther, resp.Code)
		assert.Equal(t, fmt.Sprintf("/restaurante/%d/", f.cantina.ID), resp.Location())
	}

	resp = c.Get("/carrinho/")
	require.Equal(t, http.StatusOK, resp.Code)
	cart := resp.JSON(t)
	assert.Equal(t, "25.00", cart["total"])
	assert.Len(t, cart["itens"], 2)

	resp = c.PostForm("/finalizar-pedido/", nil)
	require.Equal(t, http.StatusSeeOther, resp.Code)

	var order models.Order
	require.NoError(t, f.db.Last(&order).Error)
	assert.Equal(t, fmt.Sprintf("/pedido-confirmado/%d/", order.ID), resp.Location())

	resp = c.Get(resp.Location())
	require.Equal(t, http.StatusOK, resp.Code)
	pedido := resp.JSON(t)["pedido"].(map[string]interface{})
	assert.Equal(t, "25.00", pedido["valor_total"])
	assert.Equal(t, "Pendente", pedido["status"])

	resp = c.Get("/carrinho/")
	assert.EqualValues(t, 0, resp.JSON(t)["total"], "cart cleared after checkout")

	resp = c.PostForm("/finalizar-pedido/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/carrinho/", resp.Location(), "empty cart goes back to the cart")
}

func TestMixedCartRedirectsToCart(t *testing.T) {
	f := setup(t)
	c := f.client(t)
	login(t, c, "cliente")

	c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.lasanha.ID), nil)
	c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.baiao.ID), nil)

	resp := c.PostForm("/finalizar-pedido/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/carrinho/", resp.Location())

	resp = c.Get("/carrinho/")
	assert.Len(t, resp.JSON(t)["itens"], 2, "cart kept")
}

func TestLogoutWipesCart(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	login(t, c, "cliente")
	c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.salada.ID), nil)

	resp := c.Get("/entrar/")
	assert.Equal(t, http.StatusSeeOther, resp.Code, "guests only")
	assert.Equal(t, "/", resp.Location())

	resp = c.Get("/carrinho/")
	assert.Equal(t, "5.00", resp.JSON(t)["total"])

	resp = c.PostForm("/sair/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	resp = c.Get("/carrinho/")
	assert.EqualValues(t, 0, resp.JSON(t)["total"], "logout wipes the session")
}

func TestOwnerIsKeptOutOfTheShop(t *testing.T) {
	f := setup(t)
	c := f.client(t)
	login(t, c, "dono")

	resp := c.Get("/carrinho/")
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location())

	resp = c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.lasanha.ID), nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location())

	resp = c.Get("/painel/")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.JSON(t)["restaurantes"], 2)
}

func TestDashboardGuards(t *testing.T) {
	f := setup(t)

	anon := f.client(t)
	resp := anon.Get("/painel/")
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/entrar/?next=%2Fpainel%2F", resp.Location())

	customer := f.client(t)
	login(t, customer, "cliente")
	resp = customer.Get("/painel/pedidos/")
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location())
}

func TestDashboardManagesCatalog(t *testing.T) {
	f := setup(t)
	c := f.client(t)
	login(t, c, "dono")

	resp := c.PostForm("/painel/restaurantes/", url.Values{
		"nome": {"Pizzaria"}, "endereco": {"Rua C, 3"},
		"horario_funcionamento": {"18h às 23h"}, "tipo_cozinha": {"Pizza"},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code, "%s", resp.Body)

	var rest models.Restaurant
	require.NoError(t, f.db.Where("name = ?", "Pizzaria").First(&rest).Error)
	productsURL := fmt.Sprintf("/painel/restaurantes/%d/produtos/", rest.ID)
	assert.Equal(t, productsURL, resp.Location())

	resp = c.PostForm(productsURL, url.Values{"nome": {"Margherita"}, "descricao": {"Clássica"}, "preco": {"abc"}, "categoria": {"Pizzas"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = c.PostForm(productsURL, url.Values{"nome": {"Margherita"}, "descricao": {"Clássica"}, "preco": {"45.90"}, "categoria": {"Pizzas"}})
	require.Equal(t, http.StatusSeeOther, resp.Code, "%s", resp.Body)

	resp = c.Get(productsURL)
	require.Equal(t, http.StatusOK, resp.Code)
	products := resp.JSON(t)["produtos"].([]interface{})
	require.Len(t, products, 1)
	product := products[0].(map[string]interface{})
	assert.Equal(t, "45.90", product["preco"])

	id := uint(product["id"].(float64))
	resp = c.PostForm(fmt.Sprintf("/painel/produtos/%d/excluir/", id), nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, productsURL, resp.Location())

	resp = c.Get("/")
	assert.Len(t, resp.JSON(t)["restaurantes"], 3)
}

func TestDashboardStatusUpdate(t *testing.T) {
	f := setup(t)

	customer := f.client(t)
	login(t, customer, "cliente")
	customer.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.lasanha.ID), nil)
	require.Equal(t, http.StatusSeeOther, customer.PostForm("/finalizar-pedido/", nil).Code)

	var order models.Order
	require.NoError(t, f.db.Last(&order).Error)
	statusURL := fmt.Sprintf("/painel/pedidos/%d/status/", order.ID)

	owner := f.client(t)
	login(t, owner, "dono")

	resp := owner.PostForm(statusURL, url.Values{"status": {"Voando"}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/painel/pedidos/", resp.Location())
	require.NoError(t, f.db.First(&order, order.ID).Error)
	assert.Equal(t, models.StatusPending, order.Status)

	resp = owner.PostForm(statusURL, url.Values{"status": {"A caminho"}, "tempo_estimado": {"20 min"}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)

	resp = owner.Get("/painel/pedidos/")
	require.Equal(t, http.StatusOK, resp.Code)
	pedidos := resp.JSON(t)["pedidos"].([]interface{})
	require.Len(t, pedidos, 1)
	p := pedidos[0].(map[string]interface{})
	assert.Equal(t, "A caminho", p["status"])
	assert.Equal(t, "20 min", p["tempo_estimado"])
	assert.Equal(t, "cliente", p["cliente"])

	resp = owner.Get("/painel/pedidos/exportar.xlsx")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "pedidos-")
	assert.Equal(t, "PK", string(resp.Body[:2]))

	assert.Equal(t, http.StatusNotFound, owner.PostForm("/painel/pedidos/9999/status/", url.Values{"status": {"Entregue"}}).Code)
}

func TestRegisterLogsIn(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	form := url.Values{
		"username": {"nova"}, "email": {"nova@marmita.test"}, "password": {"segredo123"},
		"telefone": {"11911112222"}, "endereco": {"Rua D, 4"},
	}
	resp := c.PostForm("/cadastro/", form)
	require.Equal(t, http.StatusSeeOther, resp.Code, "%s", resp.Body)
	assert.Equal(t, "/", resp.Location())

	user := c.Get("/api/user/").JSON(t)
	assert.Equal(t, true, user["is_authenticated"])
	assert.Equal(t, "nova", user["username"])
	assert.Equal(t, "CLIENTE", user["tipo_usuario"])

	again := f.client(t)
	resp = again.PostForm("/cadastro/", form)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRegisterOwnerIsKeptOutOfTheShop(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.PostForm("/cadastro/", url.Values{
		"username": {"novodono"}, "email": {"novodono@marmita.test"}, "password": {"segredo123"},
		"telefone": {"11933334444"}, "endereco": {"Rua E, 5"}, "tipo_usuario": {"RESTAURANTE"},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code, "%s", resp.Body)
	assert.Equal(t, "/", resp.Location())

	resp = c.Get("/carrinho/")
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location())

	resp = c.PostForm(fmt.Sprintf("/adicionar-ao-carrinho/%d/", f.lasanha.ID), nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location())

	assert.Equal(t, http.StatusForbidden, c.Get("/api/carrinho/").Code)
	assert.Equal(t, http.StatusOK, c.Get("/painel/").Code)
}

func TestLoginFollowsLocalNext(t *testing.T) {
	f := setup(t)

	c := f.client(t)
	resp := c.PostForm("/entrar/?next=/carrinho/", url.Values{"username": {"cliente"}, "password": {testdb.Password}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/carrinho/", resp.Location())

	c = f.client(t)
	resp = c.PostForm("/entrar/?next=//evil.test/", url.Values{"username": {"cliente"}, "password": {testdb.Password}})
	assert.Equal(t, "/", resp.Location())

	c = f.client(t)
	resp = c.PostForm("/entrar/", url.Values{"username": {"cliente"}, "password": {"errada"}})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestWebReview(t *testing.T) {
	f := setup(t)
	c := f.client(t)
	detailURL := fmt.Sprintf("/restaurante/%d/", f.cantina.ID)

	login(t, c, "cliente")
	resp := c.PostForm(detailURL+"avaliar/", url.Values{"nota": {"4"}, "comentario": {"Bom"}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, detailURL, resp.Location())

	resp = c.PostForm(detailURL+"avaliar/", url.Values{"nota": {"9"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	detail := c.Get(detailURL).JSON(t)["restaurante"].(map[string]interface{})
	reviews := detail["avaliacoes"].(map[string]interface{})
	assert.EqualValues(t, 1, reviews["total"])
	assert.EqualValues(t, 4, reviews["media"])
}

func TestOpsEndpoints(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.JSON(t)["status"])

	resp = c.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Body), "marmita_http_request_duration_seconds")
}

func TestGraphQLCatalog(t *testing.T) {
	f := setup(t)
	c := f.client(t)

	resp := c.PostJSON("/graphql", map[string]interface{}{
		"query":     `query($id: Int!) { restaurant(id: $id) { nome produtos { nome preco } } restaurants { id } }`,
		"variables": map[string]interface{}{"id": f.cantina.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	data := resp.JSON(t)["data"].(map[string]interface{})
	rest := data["restaurant"].(map[string]interface{})
	assert.Equal(t, "Cantina", rest["nome"])
	products := rest["produtos"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "10.00", products[0].(map[string]interface{})["preco"])
	assert.Len(t, data["restaurants"], 2)

	resp = c.PostJSON("/graphql", map[string]interface{}{
		"query":     `query($id: Int!) { product(id: $id) { nome preco restaurante_id } }`,
		"variables": map[string]interface{}{"id": f.baiao.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	prod := resp.JSON(t)["data"].(map[string]interface{})["product"].(map[string]interface{})
	assert.Equal(t, "Baião", prod["nome"])
	assert.Equal(t, "20.00", prod["preco"])
	assert.EqualValues(t, f.sertao.ID, prod["restaurante_id"])

	resp = c.PostJSON("/graphql", `{"query": "{ product(id: 9999) { nome } }"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, resp.JSON(t)["data"].(map[string]interface{})["product"])

	resp = c.PostJSON("/graphql", `{"query": "{ restaurant(id: 9999) { nome } }"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, resp.JSON(t)["data"].(map[string]interface{})["restaurant"])
}

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, "testdata", func(t *testing.T) http.Handler {
		return setup(t).handler
	})
}
