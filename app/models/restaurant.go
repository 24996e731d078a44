package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"dono_id"`
	Name      string    `gorm:"size:100;not null" json:"nome"`
	Address   string    `gorm:"type:text;not null" json:"endereco"`
	Hours     string    `gorm:"size:100;not null" json:"horario_funcionamento"`
	Cuisine   string    `gorm:"size:50;not null" json:"tipo_cozinha"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Owner    *User     `gorm:"foreignKey:OwnerID" json:"-"`
	Products []Product `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"produtos,omitempty"`
}

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RestaurantID uint            `gorm:"not null;index" json:"restaurante_id"`
	Name         string          `gorm:"size:100;not null" json:"nome"`
	Description  string          `gorm:"type:text;not null" json:"descricao"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"preco"`
	Category     string          `gorm:"size:50;not null" json:"categoria"`
	PhotoURL     string          `gorm:"size:500" json:"foto_url,omitempty"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
}
