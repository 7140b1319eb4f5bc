package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarblot/marketplace/internal/core/domain"
	"github.com/bazarblot/marketplace/internal/core/ports"
	"github.com/bazarblot/marketplace/internal/core/service"
	"github.com/bazarblot/marketplace/internal/infrastructure/db/gormstore"
)

func TestSeeder_RunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := gormstore.Open(ctx, "sqlite", fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormstore.Close(db) })
	require.NoError(t, gormstore.Migrate(ctx, db))

	users := gormstore.NewUserRepository(db)
	products := gormstore.NewProductRepository(db)
	s := NewSeeder(users, products, zerolog.Nop())

	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.Run(ctx))

	admin, err := users.FindByEmail(ctx, "admin@bazarblot.am")
	require.NoError(t, err)
	assert.True(t, admin.Roles.Has(domain.RoleAdmin))
	assert.True(t, service.CheckPassword(admin.PasswordHash, "Admin123!"))

	regular, err := users.FindByEmail(ctx, "user@bazarblot.am")
	require.NoError(t, err)
	assert.Equal(t, domain.Roles{domain.RoleUser}, regular.Roles)

	all, err := products.List(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	cats, err := products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beverages", "Food", "National Art"}, cats)
}
