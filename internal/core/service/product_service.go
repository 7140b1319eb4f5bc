package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
)

type ProductService struct {
	products ports.ProductRepository
	users    ports.UserRepository
	idem     ports.IdempotencyStore
	events   ports.ProductEventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewProductService wires the service. idem and events may be nil, which
// disables create idempotency and product events respectively.
func NewProductService(
	products ports.ProductRepository,
	users ports.UserRepository,
	idem ports.IdempotencyStore,
	events ports.ProductEventPublisher,
	log zerolog.Logger,
) *ProductService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ProductService{
		products: products,
		users:    users,
		idem:     idem,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

func (s *ProductService) List(ctx context.Context, f ports.ProductFilter) ([]*domain.ProductView, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return []*domain.ProductView{}, nil
	}
	items, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.withOwners(ctx, items)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withOwners(ctx, []*domain.Product{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ProductService) Create(ctx context.Context, in ports.ProductInput, caller domain.Principal, idempotencyKey string) (*domain.ProductView, bool, error) {
	if caller.ID == "" {
		return nil, false, domain.ErrUnauthenticated
	}
	if ve := validateProduct(in); ve != nil {
		return nil, false, ve
	}

	if idempotencyKey != "" && s.idem != nil {
		if view, ok := s.replay(ctx, caller.ID, idempotencyKey); ok {
			return view, true, nil
		}
	}

	now := s.now().UTC()
	p := &domain.Product{OwnerID: caller.ID, CreatedAt: now}
	p.Apply(in.Changes(), now)

	if err := s.products.Create(ctx, p); err != nil {
		s.log.Info().Err(err).Str("user_id", caller.ID).Msg("product create failed")
		if errors.Is(err, domain.ErrDuplicateProductName) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("create product: %w", err)
	}

	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, caller.ID, idempotencyKey, p.ID); err != nil {
			s.log.Warn().Err(err).Int64("product_id", p.ID).Msg("idempotency key not stored")
		}
	}

	s.log.Info().Int64("product_id", p.ID).Str("user_id", caller.ID).Msg("product created")
	s.publish(domain.ProductCreated, p.ID, p, caller.ID)

	views, err := s.withOwners(ctx, []*domain.Product{p})
	if err != nil {
		return nil, false, err
	}
	return views[0], false, nil
}

func (s *ProductService) replay(ctx context.Context, subject, key string) (*domain.ProductView, bool) {
	id, found, err := s.idem.Lookup(ctx, subject, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("idempotency lookup failed, creating anyway")
		return nil, false
	}
	if !found {
		return nil, false
	}
	view, err := s.Get(ctx, id)
	if err != nil {
		// the earlier product is gone; treat the key as fresh
		return nil, false
	}
	s.log.Info().Int64("product_id", id).Str("user_id", subject).Msg("idempotent replay")
	return view, true
}

func (s *ProductService) Update(ctx context.Context, id int64, in ports.ProductInput, caller domain.Principal) error {
	if caller.ID == "" {
		return domain.ErrUnauthenticated
	}
	if ve := validateProduct(in); ve != nil {
		return ve
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutate(caller, p.OwnerID) {
		s.log.Warn().Int64("product_id", id).Str("user_id", caller.ID).Msg("product update forbidden")
		return domain.ErrForbidden
	}

	p.Apply(in.Changes(), s.now().UTC())
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateProductName) || errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("update product %d: %w", id, err)
	}

	s.log.Info().Int64("product_id", id).Str("user_id", caller.ID).Msg("product updated")
	s.publish(domain.ProductUpdated, p.ID, p, caller.ID)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id int64, caller domain.Principal) error {
	if caller.ID == "" {
		return domain.ErrUnauthenticated
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutate(caller, p.OwnerID) {
		s.log.Warn().Int64("product_id", id).Str("user_id", caller.ID).Msg("product delete forbidden")
		return domain.ErrForbidden
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	s.log.Info().Int64("product_id", id).Str("user_id", caller.ID).Msg("product deleted")
	s.publish(domain.ProductDeleted, id, nil, caller.ID)
	return nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// withOwners joins each product with its owner's public profile. Products
// whose owner cannot be found are returned without one.
func (s *ProductService) withOwners(ctx context.Context, items []*domain.Product) ([]*domain.ProductView, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, p := range items {
		if _, ok := seen[p.OwnerID]; ok {
			continue
		}
		seen[p.OwnerID] = struct{}{}
		ids = append(ids, p.OwnerID)
	}

	owners := make(map[string]domain.UserSummary, len(ids))
	if len(ids) > 0 {
		users, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load product owners: %w", err)
		}
		for _, u := range users {
			owners[u.ID] = u.Summary()
		}
	}

	views := make([]*domain.ProductView, 0, len(items))
	for _, p := range items {
		v := &domain.ProductView{Product: *p}
		if o, ok := owners[p.OwnerID]; ok {
			v.Owner = &o
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *ProductService) publish(t domain.ProductEventType, id int64, p *domain.Product, actor string) {
	e := domain.ProductEvent{Type: t, ProductID: id, ActorID: actor, OccurredAt: s.now().UTC()}
	if p != nil {
		snapshot := *p
		e.Product = &snapshot
	}
	s.events.Enqueue(e)
}

func validateProduct(in ports.ProductInput) *domain.ValidationError {
	ve := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		ve.Add("name", "name is required")
	case utf8.RuneCountInString(in.Name) > domain.MaxProductNameLength:
		ve.Add("name", fmt.Sprintf("name must be at most %d characters", domain.MaxProductNameLength))
	}
	if utf8.RuneCountInString(in.Description) > domain.MaxProductDescriptionLength {
		ve.Add("description", fmt.Sprintf("description must be at most %d characters", domain.MaxProductDescriptionLength))
	}
	if in.Price < 0 {
		ve.Add("price", "price must be greater than or equal to 0")
	}
	if in.StockQuantity < 0 {
		ve.Add("stockQuantity", "stockQuantity must be greater than or equal to 0")
	}
	if utf8.RuneCountInString(in.Category) > domain.MaxProductCategoryLength {
		ve.Add("category", fmt.Sprintf("category must be at most %d characters", domain.MaxProductCategoryLength))
	}
	if utf8.RuneCountInString(in.ImageURL) > domain.MaxProductImageURLLength {
		ve.Add("imageUrl", fmt.Sprintf("imageUrl must be at most %d characters", domain.MaxProductImageURLLength))
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

type noopPublisher struct{}

func (noopPublisher) Enqueue(domain.ProductEvent) {}
