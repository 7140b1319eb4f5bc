package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

type ProductRepository struct {
	col *mongo.Collection
	ids *sequence
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col: db.Collection(collectionProducts),
		ids: newSequence(db, collectionProducts),
	}
}

type productDoc struct {
	ID            int64     `bson:"_id"`
	Name          string    `bson:"name"`
	Description   string    `bson:"description"`
	Price         float64   `bson:"price"`
	StockQuantity int       `bson:"stock_quantity"`
	Category      string    `bson:"category"`
	ImageURL      string    `bson:"image_url"`
	IsActive      bool      `bson:"is_active"`
	OwnerID       string    `bson:"owner_id"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d *productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         domain.RoundPrice(d.Price),
		StockQuantity: d.StockQuantity,
		Category:      d.Category,
		ImageURL:      d.ImageURL,
		IsActive:      d.IsActive,
		OwnerID:       d.OwnerID,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

// listFilter translates f into a query document. Category is a literal
// substring match.
func listFilter(f ports.ProductFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category)}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	doc := productDoc{
		ID:            id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         domain.RoundPrice(p.Price),
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		OwnerID:       p.OwnerID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateProductName
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":           p.Name,
		"description":    p.Description,
		"price":          domain.RoundPrice(p.Price),
		"stock_quantity": p.StockQuantity,
		"category":       p.Category,
		"image_url":      p.ImageURL,
		"is_active":      p.IsActive,
		"updated_at":     p.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateProductName
		}
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	vals, err := r.col.Distinct(ctx, "category", bson.M{"is_active": true, "category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}
