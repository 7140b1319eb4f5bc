package domain

import (
	"errors"
	"math"
	"time"
)

const (
	MaxProductNameLength        = 100
	MaxProductDescriptionLength = 500
	MaxProductCategoryLength    = 50
	MaxProductImageURLLength    = 500
)

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateProductName = errors.New("product name already exists")
var ErrIDMismatch = errors.New("ID mismatch")

// Product is a marketplace listing. OwnerID is fixed at creation.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         float64
	StockQuantity int
	Category      string
	ImageURL      string
	IsActive      bool
	OwnerID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductChanges holds the fields a listing may change after creation.
type ProductChanges struct {
	Name          string
	Description   string
	Price         float64
	StockQuantity int
	Category      string
	ImageURL      string
	IsActive      bool
}

// Apply overwrites the mutable fields. ID, OwnerID and CreatedAt are untouched.
func (p *Product) Apply(ch ProductChanges, now time.Time) {
	p.Name = ch.Name
	p.Description = ch.Description
	p.Price = RoundPrice(ch.Price)
	p.StockQuantity = ch.StockQuantity
	p.Category = ch.Category
	p.ImageURL = ch.ImageURL
	p.IsActive = ch.IsActive
	p.UpdatedAt = now
}

// ProductView is a product joined with its owner's public profile.
type ProductView struct {
	Product
	Owner *UserSummary
}

// RoundPrice keeps prices at two decimal places.
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
