// Package seed loads the initial accounts and catalogue into an empty store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
	"github.com/bazarblot/marketplace/internal/core/service"
)

type account struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      domain.Role
}

var (
	adminAccount = account{"admin@bazarblot.am", "Admin123!", "Admin", "Avag", domain.RoleAdmin}
	userAccount  = account{"user@bazarblot.am", "User123!", "Aram", "Ashkhatakits", domain.RoleUser}
)

type Seeder struct {
	users    ports.UserRepository
	products ports.ProductRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewSeeder(users ports.UserRepository, products ports.ProductRepository, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, products: products, log: log, now: time.Now}
}

// Run creates the admin and regular accounts when missing, then the starter
// products when there are none. Running it again changes nothing.
func (s *Seeder) Run(ctx context.Context) error {
	admin, err := s.ensureUser(ctx, adminAccount)
	if err != nil {
		return err
	}
	regular, err := s.ensureUser(ctx, userAccount)
	if err != nil {
		return err
	}

	existing, err := s.products.List(ctx, ports.ProductFilter{})
	if err != nil {
		return fmt.Errorf("seed: count products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range starterProducts(admin.ID, regular.ID) {
		now := s.now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		if err := s.products.Create(ctx, p); err != nil {
			return fmt.Errorf("seed: product %q: %w", p.Name, err)
		}
	}
	s.log.Info().Msg("seeded starter products")
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, a account) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, a.email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("seed: lookup %s: %w", a.email, err)
	}

	hash, err := service.HashPassword(a.password)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	now := s.now().UTC()
	u = &domain.User{
		ID:           uuid.NewString(),
		Email:        a.email,
		PasswordHash: hash,
		FirstName:    a.firstName,
		LastName:     a.lastName,
		Roles:        domain.NewRoles(a.role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("seed: create %s: %w", a.email, err)
	}
	s.log.Info().Str("user_id", u.ID).Str("email", u.Email).Str("role", string(a.role)).Msg("seeded user")
	return u, nil
}

func starterProducts(adminID, userID string) []*domain.Product {
	return []*domain.Product{
		{
			Name:          "Armenian Coffee",
			Description:   "High quality arabica coffee roasted in Armenia",
			Price:         3500,
			StockQuantity: 50,
			Category:      "Beverages",
			ImageURL:      "/images/armenian-coffee.jpg",
			IsActive:      true,
			OwnerID:       adminID,
		},
		{
			Name:          "Artsakh Wine",
			Description:   "Red wine from the mountains of Artsakh",
			Price:         8000,
			StockQuantity: 30,
			Category:      "Beverages",
			ImageURL:      "/images/artsakh-wine.jpg",
			IsActive:      true,
			OwnerID:       adminID,
		},
		{
			Name:          "Armenian Honey",
			Description:   "Natural mountain honey from Armenia",
			Price:         2500,
			StockQuantity: 100,
			Category:      "Food",
			ImageURL:      "/images/armenian-honey.jpg",
			IsActive:      true,
			OwnerID:       userID,
		},
		{
			Name:          "Tavush Dried Fruit",
			Description:   "Sweet dried fruit from the Tavush region",
			Price:         1200,
			StockQuantity: 75,
			Category:      "Food",
			ImageURL:      "/images/tavush-dried-fruit.jpg",
			IsActive:      true,
			OwnerID:       userID,
		},
		{
			Name:          "Armenian Carpet",
			Description:   "Hand-woven traditional Armenian carpet",
			Price:         150000,
			StockQuantity: 5,
			Category:      "National Art",
			ImageURL:      "/images/armenian-carpet.jpg",
			IsActive:      true,
			OwnerID:       adminID,
		},
	}
}
