package domain

import "strings"

// StoreRef is the store summary embedded in product listings.
type StoreRef struct {
	StoreID    ID      `json:"store_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	StoreImage string  `json:"store_image"`
	Type       string  `json:"type"`
	Rating     float64 `json:"rating"`
	Town       string  `json:"town"`
}

type Product struct {
	ID            ID        `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	PriceMin      float64   `json:"price_min" validate:"gte=0"`
	PriceMax      float64   `json:"price_max" validate:"gte=0"`
	ImageURLs     []string  `json:"image_urls"`
	ARAssetURL    string    `json:"ar_asset_url"`
	Address       string    `json:"address"`
	Town          string    `json:"town"`
	InStock       bool      `json:"in_stock"`
	StoreID       ID        `json:"store_id"`
	Store         *StoreRef `json:"stores,omitempty"`
	AverageRating Float     `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	Views         int       `json:"views"`
	IsArchived    bool      `json:"is_archived"`
	ArchivedAt    string    `json:"archived_at"`
	CreatedAt     string    `json:"created_at"`
}

func (p Product) StoreName() string {
	if p.Store == nil {
		return ""
	}
	return p.Store.Name
}

// Thumbnail is the first stored image, empty when the product has none.
func (p Product) Thumbnail() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

type Store struct {
	StoreID        ID      `json:"store_id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	Latitude       float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude      float64 `json:"longitude" validate:"min=-180,max=180"`
	Rating         float64 `json:"rating"`
	Type           string  `json:"type"`
	OperatingHours string  `json:"operating_hours"`
	Phone          string  `json:"phone"`
	StoreImage     string  `json:"store_image"`
	Town           string  `json:"town"`
	CreatedAt      string  `json:"created_at"`
}

type User struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsBanned  bool   `json:"is_banned"`
	BanReason string `json:"ban_reason"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Activity struct {
	ID        ID     `json:"id" validate:"required"`
	AdminID   string `json:"admin_id"`
	AdminName string `json:"admin_name"`
	Activity  string `json:"activity" validate:"oneof=added edited deleted"`
	Object    string `json:"object"`
	CreatedAt string `json:"created_at"`
}

type Review struct {
	ID         ID     `json:"id"`
	UserID     string `json:"user_id"`
	ProductID  ID     `json:"product_id"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	ReviewText string `json:"review_text"`
	FullName   string `json:"full_name"`
	CreatedAt  string `json:"created_at"`
}

type Municipality struct {
	ID   ID     `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}
