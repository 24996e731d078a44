// Package graphql exposes the catalog read-only over GraphQL:
//
//	{ restaurants { id nome produtos { nome preco } } }
//	{ restaurant(id: 1) { nome tipo_cozinha } }
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/services"
	gql "github.com/shashiranjanraj/marmita/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Produto",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"restaurante_id": &graphql.Field{Type: graphql.Int, Resolve: product(func(p models.Product) interface{} { return p.RestaurantID })},
		"nome":           &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) interface{} { return p.Name })},
		"descricao":      &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) interface{} { return p.Description })},
		"preco":          &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) interface{} { return p.Price.StringFixed(2) })},
		"categoria":      &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) interface{} { return p.Category })},
		"foto_url":       &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) interface{} { return p.PhotoURL })},
	},
})

var restaurantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Restaurante",
	Fields: graphql.Fields{
		"id":                    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"nome":                  &graphql.Field{Type: graphql.String, Resolve: restaurant(func(r models.Restaurant) interface{} { return r.Name })},
		"endereco":              &graphql.Field{Type: graphql.String, Resolve: restaurant(func(r models.Restaurant) interface{} { return r.Address })},
		"horario_funcionamento": &graphql.Field{Type: graphql.String, Resolve: restaurant(func(r models.Restaurant) interface{} { return r.Hours })},
		"tipo_cozinha":          &graphql.Field{Type: graphql.String, Resolve: restaurant(func(r models.Restaurant) interface{} { return r.Cuisine })},
		"produtos":              &graphql.Field{Type: graphql.NewList(productType), Resolve: restaurant(func(r models.Restaurant) interface{} { return r.Products })},
	},
})

func product(get func(models.Product) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch v := p.Source.(type) {
		case models.Product:
			return get(v), nil
		case *models.Product:
			return get(*v), nil
		}
		return nil, nil
	}
}

func restaurant(get func(models.Restaurant) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch v := p.Source.(type) {
		case models.Restaurant:
			return get(v), nil
		case *models.Restaurant:
			return get(*v), nil
		}
		return nil, nil
	}
}

// Schema builds the catalog schema on top of catalog.
func Schema(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"restaurants": &graphql.Field{
				Type: graphql.NewList(restaurantType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.Restaurants(p.Context)
				},
			},
			"restaurant": &graphql.Field{
				Type: restaurantType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					detail, err := catalog.Restaurant(p.Context, uint(id))
					if errors.Is(err, services.ErrRestaurantNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return detail.Restaurant, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					prod, err := catalog.Product(p.Context, uint(id))
					if errors.Is(err, services.ErrProductNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return prod, nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}
