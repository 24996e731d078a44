package routes

import (
	"fmt"

	"github.com/shashiranjanraj/marmita/app/controllers"
	appgraphql "github.com/shashiranjanraj/marmita/app/graphql"
	"github.com/shashiranjanraj/marmita/pkg/graphql"
	"github.com/shashiranjanraj/marmita/pkg/router"
)

// Register returns the callback that mounts the web pages, the JSON API
// and the read-only GraphQL catalog at /graphql.
func Register(svc *controllers.Services) (func(*router.Router), error) {
	schema, err := appgraphql.Schema(svc.Catalog)
	if err != nil {
		return nil, fmt.Errorf("routes: graphql schema: %w", err)
	}
	return func(r *router.Router) {
		RegisterWeb(r, svc)
		RegisterAPI(r, svc)
		r.Handle("/graphql", "graphql", graphql.Handler(schema))
	}, nil
}
