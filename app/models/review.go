package models

import "time"

type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerID   uint      `gorm:"not null;index" json:"cliente_id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurante_id"`
	Rating       int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"nota"`
	Comment      *string   `gorm:"type:text" json:"comentario"`
	CreatedAt    time.Time `json:"data_avaliacao"`

	Customer   *Profile    `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}
