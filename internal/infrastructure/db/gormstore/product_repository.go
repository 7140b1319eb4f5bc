package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productRecord{})
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.Category != "" {
		q = q.Where(`category LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(f.Category)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var recs []productRecord
	if err := q.Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]*domain.Product, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return rec.toDomain(), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	rec := toProductRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicateProductName
		}
		return fmt.Errorf("create product: %w", err)
	}
	p.ID = rec.ID
	return nil
}

// Update writes the mutable columns only; owner and created_at never change.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":           p.Name,
			"description":    p.Description,
			"price":          domain.RoundPrice(p.Price),
			"stock_quantity": p.StockQuantity,
			"category":       p.Category,
			"image_url":      p.ImageURL,
			"is_active":      p.IsActive,
			"updated_at":     p.UpdatedAt,
		})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return domain.ErrDuplicateProductName
		}
		return fmt.Errorf("update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories of active products.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("is_active = ? AND category <> ?", true, "").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}
