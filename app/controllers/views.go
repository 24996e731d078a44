package controllers

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/marmita/app/models"
	"github.com/shashiranjanraj/marmita/app/repositories"
	"github.com/shashiranjanraj/marmita/app/services"
)

// money renders an amount the way prices are shown everywhere: two decimals.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

func uintString(n uint) string { return strconv.FormatUint(uint64(n), 10) }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type restaurantSummary struct {
	ID       uint    `json:"id"`
	Name     string  `json:"nome"`
	Address  string  `json:"endereco"`
	Cuisine  string  `json:"tipo_cozinha"`
	Hours    string  `json:"horario_funcionamento"`
	ImageURL *string `json:"imagem_url"`
}

func newRestaurantSummary(r models.Restaurant) restaurantSummary {
	v := restaurantSummary{
		ID:      r.ID,
		Name:    r.Name,
		Address: r.Address,
		Cuisine: r.Cuisine,
		Hours:   r.Hours,
	}
	if len(r.Products) > 0 {
		v.ImageURL = optional(r.Products[0].PhotoURL)
	}
	return v
}

func newRestaurantSummaries(rs []models.Restaurant) []restaurantSummary {
	out := make([]restaurantSummary, 0, len(rs))
	for _, r := range rs {
		out = append(out, newRestaurantSummary(r))
	}
	return out
}

type productView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"nome"`
	Description string  `json:"descricao"`
	Price       string  `json:"preco"`
	Category    string  `json:"categoria"`
	PhotoURL    *string `json:"foto_url"`
}

func newProductView(p models.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Category:    p.Category,
		PhotoURL:    optional(p.PhotoURL),
	}
}

func newProductViews(ps []models.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProductView(p))
	}
	return out
}

type reviewSummaryView struct {
	Count   int64   `json:"total"`
	Average float64 `json:"media"`
}

func newReviewSummaryView(s repositories.ReviewSummary) reviewSummaryView {
	avg, _ := decimal.NewFromFloat(s.Average).Round(1).Float64()
	return reviewSummaryView{Count: s.Count, Average: avg}
}

type restaurantDetailView struct {
	ID       uint              `json:"id"`
	Name     string            `json:"nome"`
	Address  string            `json:"endereco"`
	Cuisine  string            `json:"tipo_cozinha"`
	Hours    string            `json:"horario_funcionamento"`
	Products []productView     `json:"produtos"`
	Reviews  reviewSummaryView `json:"avaliacoes"`
	QRCode   string            `json:"qrcode_url"`
}

func newRestaurantDetailView(d services.RestaurantDetail) restaurantDetailView {
	r := d.Restaurant
	return restaurantDetailView{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Cuisine:  r.Cuisine,
		Hours:    r.Hours,
		Products: newProductViews(r.Products),
		Reviews:  newReviewSummaryView(d.Reviews),
		QRCode:   "/restaurante/" + uintString(r.ID) + "/qrcode.png",
	}
}

type cartLineView struct {
	ProductID uint   `json:"produto_id"`
	Name      string `json:"nome"`
	Price     string `json:"preco"`
	Quantity  int    `json:"quantidade"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Lines []cartLineView `json:"itens"`
	Total interface{}    `json:"total"`
}

// newCartView renders the cart. An empty cart reports a numeric 0 total,
// anything else a two-decimal string.
func newCartView(v services.CartView) cartView {
	out := cartView{Lines: make([]cartLineView, 0, len(v.Lines)), Total: 0}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, cartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     money(l.Product.Price),
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal),
		})
	}
	if len(v.Lines) > 0 {
		out.Total = money(v.Total)
	}
	return out
}

type orderLineView struct {
	ProductID uint   `json:"produto_id"`
	Name      string `json:"nome"`
	Quantity  int    `json:"quantidade"`
	UnitPrice string `json:"preco_unitario"`
	Subtotal  string `json:"subtotal"`
}

type orderView struct {
	ID            uint            `json:"id"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"data_pedido"`
	Total         string          `json:"valor_total"`
	RestaurantID  uint            `json:"restaurante_id"`
	Restaurant    string          `json:"restaurante"`
	Customer      string          `json:"cliente,omitempty"`
	Lines         []orderLineView `json:"itens"`
	EstimatedTime *string         `json:"tempo_estimado"`
}

func newOrderView(o models.Order) orderView {
	v := orderView{
		ID:           o.ID,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		Total:        money(o.Total),
		RestaurantID: o.RestaurantID,
		Lines:        make([]orderLineView, 0, len(o.Lines)),
	}
	if o.Restaurant != nil {
		v.Restaurant = o.Restaurant.Name
	}
	if o.Customer != nil && o.Customer.User != nil {
		v.Customer = o.Customer.User.Username
	}
	if o.Delivery != nil {
		v.EstimatedTime = optional(o.Delivery.EstimatedTime)
	}
	for _, l := range o.Lines {
		line := orderLineView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice),
			Subtotal:  money(l.Subtotal()),
		}
		if l.Product != nil {
			line.Name = l.Product.Name
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}

func newOrderViews(os []models.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for _, o := range os {
		out = append(out, newOrderView(o))
	}
	return out
}

type reviewView struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"nota"`
	Comment   *string   `json:"comentario"`
	Author    string    `json:"autor,omitempty"`
	CreatedAt time.Time `json:"data_avaliacao"`
}

func newReviewViews(rs []models.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		v := reviewView{ID: r.ID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
		if r.Customer != nil && r.Customer.User != nil {
			v.Author = r.Customer.User.Username
		}
		out = append(out, v)
	}
	return out
}
