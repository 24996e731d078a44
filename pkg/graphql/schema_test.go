package graphql_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gql "github.com/shashiranjanraj/marmita/pkg/graphql"
)

func pingSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := gql.NewSchema(graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ping": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{"nome": &graphql.ArgumentConfig{Type: graphql.String}},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if n, ok := p.Args["nome"].(string); ok {
						return "pong " + n, nil
					}
					return "pong", nil
				},
			},
		},
	}))
	require.NoError(t, err)
	return schema
}

func TestHandlerPostWithVariables(t *testing.T) {
	h := gql.Handler(pingSchema(t))
	body := `{"query":"query P($n: String) { ping(nome: $n) }","variables":{"n":"marmita"}}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"ping":"pong marmita"}}`, rec.Body.String())
}

func TestHandlerGet(t *testing.T) {
	h := gql.Handler(pingSchema(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ ping }"), nil))
	assert.JSONEq(t, `{"data":{"ping":"pong"}}`, rec.Body.String())
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	h := gql.Handler(pingSchema(t))

	for name, tc := range map[string]struct {
		method, body string
		code         int
	}{
		"malformed body": {http.MethodPost, `{"query":`, http.StatusBadRequest},
		"empty query":    {http.MethodPost, `{}`, http.StatusBadRequest},
		"wrong method":   {http.MethodDelete, ``, http.StatusMethodNotAllowed},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, "/graphql", strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestQueryErrorsStay200(t *testing.T) {
	h := gql.Handler(pingSchema(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nada }"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}
