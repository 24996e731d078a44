package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus values are stored verbatim.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pendente"
	StatusPreparing OrderStatus = "Em preparação"
	StatusEnRoute   OrderStatus = "A caminho"
	StatusDelivered OrderStatus = "Entregue"
	StatusCancelled OrderStatus = "Cancelado"
)

// AllStatuses lists the statuses in workflow order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusPreparing, StatusEnRoute, StatusDelivered, StatusCancelled}
}

// Final reports whether no further change is expected.
func (s OrderStatus) Final() bool { return s == StatusDelivered || s == StatusCancelled }

// ParseOrderStatus accepts only the exact stored values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Order is created by checkout. Its total equals the sum of its line
// subtotals at creation time.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CustomerID   *uint           `gorm:"index" json:"cliente_id"`
	RestaurantID uint            `gorm:"not null;index" json:"restaurante_id"`
	Status       OrderStatus     `gorm:"size:20;not null;default:Pendente" json:"status"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"valor_total"`
	CreatedAt    time.Time       `json:"data_pedido"`
	UpdatedAt    time.Time       `json:"-"`

	Customer   *Profile    `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Lines      []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"itens,omitempty"`
	Delivery   *Delivery   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"entrega,omitempty"`
}

// OrderLine snapshots the product price at order time.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"pedido_id"`
	ProductID uint            `gorm:"not null;index" json:"produto_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantidade"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"preco_unitario"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Delivery holds the estimate for one order; the order id is its key.
type Delivery struct {
	OrderID       uint   `gorm:"primaryKey;autoIncrement:false" json:"pedido_id"`
	EstimatedTime string `gorm:"size:50;not null" json:"tempo_estimado"`
}
