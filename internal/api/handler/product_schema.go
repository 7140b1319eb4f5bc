package handler

import "time"

// --- Request / Response types ---

// productRequest is the body of POST /api/products. A userId sent by the
// client is not part of the schema; the owner always comes from the token.
type productRequest struct {
	Name          string  `json:"name"          validate:"required,max=100"`
	Description   string  `json:"description"   validate:"max=500"`
	Price         float64 `json:"price"         validate:"gte=0"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
	Category      string  `json:"category"      validate:"max=50"`
	ImageURL      string  `json:"imageUrl"      validate:"max=500"`
	IsActive      *bool   `json:"isActive"`
}

// updateProductRequest is the body of PUT /api/products/:id. ID must repeat
// the path id.
type updateProductRequest struct {
	ID int64 `json:"id"`
	productRequest
}

type ownerResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
}

type productResponse struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	StockQuantity int            `json:"stockQuantity"`
	Category      string         `json:"category"`
	ImageURL      string         `json:"imageUrl"`
	IsActive      bool           `json:"isActive"`
	UserID        string         `json:"userId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	User          *ownerResponse `json:"user,omitempty"`
}
