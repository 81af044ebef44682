package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Image        string `json:"image"`
	IsAdmin      bool   `gorm:"default:false"            json:"isAdmin"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Product struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string         `gorm:"not null"                 json:"name"`
	Description        string         `json:"description"`
	Price              float64        `gorm:"not null"                 json:"price"`
	PriceAfterDiscount *float64       `json:"priceAfterDiscount,omitempty"`
	ImageCover         string         `gorm:"not null"                 json:"imageCover"`
	Images             []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CategoryID         uint           `gorm:"index;not null"           json:"category"`
	CountInStock       int            `gorm:"not null;default:0;check:count_in_stock >= 0" json:"countInStock"`
	Reviews            []Review       `gorm:"constraint:OnDelete:CASCADE" json:"reviews"`
	// Rating and NumReviews are derived from Reviews and recomputed on
	// every review mutation, never written directly by handlers.
	Rating     float64   `gorm:"not null;default:0" json:"rating"`
	NumReviews int       `gorm:"not null;default:0" json:"numReviews"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"     json:"-"`
	ProductID uint   `gorm:"index;not null" json:"-"`
	URL       string `gorm:"not null"       json:"url"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	ProductID uint      `gorm:"index;not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user"`
	Name      string    `gorm:"not null"       json:"name"`
	Avatar    string    `json:"image"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"not null"       json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// OrderItem is a snapshot of the product at checkout time. Later product
// edits or deletions never touch it.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"             json:"id"`
	OrderID   uint    `gorm:"index;not null"         json:"order_id"`
	ProductID uint    `gorm:"not null"               json:"product"`
	Name      string  `gorm:"not null"               json:"name"`
	Qty       int     `gorm:"not null;check:qty > 0" json:"qty"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null"               json:"price"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey"        json:"id"`
	UserID          uint            `gorm:"index;not null"    json:"user"`
	User            *User           `gorm:"foreignKey:UserID" json:"userInfo,omitempty"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `gorm:"default:false" json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `gorm:"default:false" json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user"`
	Message   string    `gorm:"not null"       json:"message"`
	IsRead    bool      `gorm:"default:false"  json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
