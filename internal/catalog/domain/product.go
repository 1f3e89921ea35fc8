package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Archiving is a soft delete: archived products
// keep their batches and order history but are excluded from receipts, new
// orders and active-stock listings.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description,omitempty"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	IsArchived   bool            `json:"is_archived"`
	TotalStock   int             `json:"total_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductFilter struct {
	Page   int
	Limit  int
	Search string
}

type ProductPage struct {
	Items      []Product `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// ProductUpdate carries a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name         *string
	SKU          *string
	Unit         *string
	Price        *decimal.Decimal
	Description  *string
	CategoryName *string
}

type ProductArchived struct {
	ProductID string `json:"product_id"`
}
