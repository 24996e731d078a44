package models

import "time"

// Role is the profile type chosen at registration.
type Role string

const (
	RoleCustomer Role = "CLIENTE"
	RoleOwner    Role = "RESTAURANTE"
)

func (r Role) Valid() bool { return r == RoleCustomer || r == RoleOwner }

// User is the account identity. Deleting it cascades to its profile and to
// the restaurants it owns.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile     *Profile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Restaurants []Restaurant `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// Profile is the customer profile attached one-to-one to a User. Orders and
// reviews reference the profile, not the user.
type Profile struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Phone   string `gorm:"size:15;not null" json:"telefone"`
	Address string `gorm:"type:text;not null" json:"endereco"`
	Role    Role   `gorm:"size:20;not null;default:CLIENTE" json:"tipo_usuario"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
