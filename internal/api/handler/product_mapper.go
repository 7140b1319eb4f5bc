package handler

import (
	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

// --- Request → Service input ---

func toProductInput(req productRequest) ports.ProductInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return ports.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		IsActive:      active,
	}
}

// --- Service output → Response ---

func toProductResponse(v *domain.ProductView) productResponse {
	resp := productResponse{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		Price:         v.Price,
		StockQuantity: v.StockQuantity,
		Category:      v.Category,
		ImageURL:      v.ImageURL,
		IsActive:      v.IsActive,
		UserID:        v.OwnerID,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	if v.Owner != nil {
		resp.User = &ownerResponse{
			ID:        v.Owner.ID,
			Email:     v.Owner.Email,
			FirstName: v.Owner.FirstName,
			LastName:  v.Owner.LastName,
			FullName:  v.Owner.FullName(),
		}
	}
	return resp
}

func toProductResponses(views []*domain.ProductView) []productResponse {
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductResponse(v))
	}
	return out
}
