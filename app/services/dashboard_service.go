package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/policies"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// RestaurantInput is the restaurant registration form.
type RestaurantInput struct {
	Name    string `form:"nome"                  json:"nome"                  validate:"required,max=100"`
	Address string `form:"endereco"              json:"endereco"              validate:"required"`
	Hours   string `form:"horario_funcionamento" json:"horario_funcionamento" validate:"required,max=100"`
	Cuisine string `form:"tipo_cozinha"          json:"tipo_cozinha"          validate:"required,max=50"`
}

// ProductInput is the product create/edit form. Price arrives as text so the
// decimal never passes through a float.
type ProductInput struct {
	Name        string `form:"nome"      json:"nome"      validate:"required,max=100"`
	Description string `form:"descricao" json:"descricao" validate:"required"`
	Price       string `form:"preco"     json:"preco"     validate:"required,money"`
	Category    string `form:"categoria" json:"categoria" validate:"required,max=50"`
	PhotoURL    string `form:"foto_url"  json:"foto_url"  validate:"nullable,url,max=500"`
}

func (in ProductInput) apply(p *models.Product) error {
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return fmt.Errorf("parse price %q: %w", in.Price, err)
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.PhotoURL = strings.TrimSpace(in.PhotoURL)
	return nil
}

// DashboardService backs the restaurant owner's pages.
type DashboardService struct {
	restaurants *repositories.RestaurantRepository
	products    *repositories.ProductRepository
	orders      *repositories.OrderRepository
	catalog     *CatalogService
}

func NewDashboardService(catalog *CatalogService) *DashboardService {
	return &DashboardService{
		restaurants: repositories.NewRestaurantRepository(),
		products:    repositories.NewProductRepository(),
		orders:      repositories.NewOrderRepository(),
		catalog:     catalog,
	}
}

// Restaurants lists the restaurants actor owns, products included.
func (s *DashboardService) Restaurants(ctx context.Context, actor policies.Actor) ([]models.Restaurant, error) {
	if err := policies.Authorize(actor, policies.ManageRestaurants, nil); err != nil {
		return nil, err
	}
	out, err := s.restaurants.ByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list restaurants: %w", err)
	}
	return out, nil
}

// CreateRestaurant registers a restaurant owned by actor.
func (s *DashboardService) CreateRestaurant(ctx context.Context, actor policies.Actor, in RestaurantInput) (models.Restaurant, error) {
	if err := policies.Authorize(actor, policies.ManageRestaurants, nil); err != nil {
		return models.Restaurant{}, err
	}

	rest := models.Restaurant{
		OwnerID: actor.UserID,
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Hours:   strings.TrimSpace(in.Hours),
		Cuisine: strings.TrimSpace(in.Cuisine),
	}
	if err := s.restaurants.Create(ctx, &rest); err != nil {
		return models.Restaurant{}, fmt.Errorf("dashboard: create restaurant: %w", err)
	}

	s.catalog.Invalidate(ctx)
	logger.WithCtx(ctx).Info("restaurant registered", "restaurant_id", rest.ID, "owner_id", actor.UserID)
	return rest, nil
}

// Restaurant loads one restaurant of actor with its products.
func (s *DashboardService) Restaurant(ctx context.Context, actor policies.Actor, restaurantID uint) (models.Restaurant, error) {
	rest, err := s.restaurants.Find(ctx, restaurantID)
	if err != nil {
		return models.Restaurant{}, notFoundOr(err, ErrRestaurantNotFound, "dashboard: find restaurant")
	}
	if err := policies.Authorize(actor, policies.ManageRestaurant, &rest); err != nil {
		return models.Restaurant{}, err
	}
	return rest, nil
}

// CreateProduct adds a product to a restaurant actor owns.
func (s *DashboardService) CreateProduct(ctx context.Context, actor policies.Actor, restaurantID uint, in ProductInput) (models.Product, error) {
	rest, err := s.Restaurant(ctx, actor, restaurantID)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{RestaurantID: rest.ID}
	if err := in.apply(&p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: %w", err)
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: create product: %w", err)
	}
	p.Restaurant = &rest

	s.catalog.Invalidate(ctx)
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID, "restaurant_id", rest.ID)
	return p, nil
}

func (s *DashboardService) ownedProduct(ctx context.Context, actor policies.Actor, productID uint) (models.Product, error) {
	p, err := s.products.Find(ctx, productID)
	if err != nil {
		return models.Product{}, notFoundOr(err, ErrProductNotFound, "dashboard: find product")
	}
	if err := policies.Authorize(actor, policies.ManageProduct, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateProduct edits a product of a restaurant actor owns.
func (s *DashboardService) UpdateProduct(ctx context.Context, actor policies.Actor, productID uint, in ProductInput) (models.Product, error) {
	p, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return models.Product{}, err
	}
	if err := in.apply(&p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: %w", err)
	}
	if err := s.products.Save(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: update product %d: %w", p.ID, err)
	}

	s.catalog.Invalidate(ctx)
	logger.WithCtx(ctx).Info("product updated", "product_id", p.ID)
	return p, nil
}

// DeleteProduct removes a product of a restaurant actor owns. Order lines
// referencing it go with it.
func (s *DashboardService) DeleteProduct(ctx context.Context, actor policies.Actor, productID uint) (models.Product, error) {
	p, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.products.Delete(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("dashboard: delete product %d: %w", p.ID, err)
	}

	s.catalog.Invalidate(ctx)
	logger.WithCtx(ctx).Info("product deleted", "product_id", p.ID, "restaurant_id", p.RestaurantID)
	return p, nil
}

// Orders lists the orders of actor's restaurants, newest first. A non-zero
// restaurantID narrows the list to that restaurant; a restaurant actor does
// not own yields an empty list.
func (s *DashboardService) Orders(ctx context.Context, actor policies.Actor, restaurantID uint) ([]models.Order, error) {
	if err := policies.Authorize(actor, policies.ManageRestaurants, nil); err != nil {
		return nil, err
	}

	ids, err := s.restaurants.IDsByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: owned restaurants: %w", err)
	}
	if restaurantID != 0 {
		ids = filterIDs(ids, restaurantID)
	}

	out, err := s.orders.ForRestaurants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list orders: %w", err)
	}
	return out, nil
}

func filterIDs(ids []uint, keep uint) []uint {
	for _, id := range ids {
		if id == keep {
			return []uint{id}
		}
	}
	return nil
}

const exportSheet = "Pedidos"

var exportHeader = []interface{}{"Pedido", "Data", "Restaurante", "Cliente", "Status", "Itens", "Total", "Entrega"}

// ExportOrders writes the orders of Orders(actor, restaurantID) as an XLSX
// workbook to w. It returns the number of exported orders.
func (s *DashboardService) ExportOrders(ctx context.Context, actor policies.Actor, restaurantID uint, w io.Writer) (int, error) {
	orders, err := s.Orders(ctx, actor, restaurantID)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("dashboard: export: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("dashboard: export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return 0, fmt.Errorf("dashboard: export: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return 0, fmt.Errorf("dashboard: export: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "B", "D", 22); err != nil {
		return 0, fmt.Errorf("dashboard: export: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, fmt.Errorf("dashboard: export: %w", err)
		}
		row := exportRow(o)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("dashboard: export order %d: %w", o.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("dashboard: export write: %w", err)
	}
	return len(orders), nil
}

func exportRow(o models.Order) []interface{} {
	restaurant, customer, delivery := "", "", ""
	if o.Restaurant != nil {
		restaurant = o.Restaurant.Name
	}
	if o.Customer != nil {
		customer = fmt.Sprintf("#%d", o.Customer.ID)
		if o.Customer.User != nil {
			customer = o.Customer.User.Username
		}
	}
	if o.Delivery != nil {
		delivery = o.Delivery.EstimatedTime
	}

	items := 0
	for _, l := range o.Lines {
		items += l.Quantity
	}

	total, _ := o.Total.Round(2).Float64()
	return []interface{}{
		o.ID,
		o.CreatedAt.Format("2006-01-02 15:04"),
		restaurant,
		customer,
		string(o.Status),
		items,
		total,
		delivery,
	}
}
