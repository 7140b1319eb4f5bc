package gormstore

import (
	"time"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

type userRecord struct {
	ID              string           `gorm:"primaryKey;size:36"`
	Email           string           `gorm:"size:256;not null"`
	NormalizedEmail string           `gorm:"size:256;not null;uniqueIndex"`
	PasswordHash    string           `gorm:"not null"`
	FirstName       string           `gorm:"size:50;not null"`
	LastName        string           `gorm:"size:50;not null"`
	Roles           []userRoleRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRecord) TableName() string { return "users" }

type userRoleRecord struct {
	UserID string `gorm:"primaryKey;size:36"`
	Role   string `gorm:"primaryKey;size:20"`
}

func (userRoleRecord) TableName() string { return "user_roles" }

type productRecord struct {
	ID            int64       `gorm:"primaryKey;autoIncrement"`
	Name          string      `gorm:"size:100;not null;uniqueIndex"`
	Description   string      `gorm:"size:500"`
	Price         float64     `gorm:"type:decimal(18,2);not null"`
	StockQuantity int         `gorm:"not null"`
	Category      string      `gorm:"size:50;index"`
	ImageURL      string      `gorm:"column:image_url;size:500"`
	IsActive      bool        `gorm:"not null;index"`
	OwnerID       string      `gorm:"size:36;not null;index"`
	Owner         *userRecord `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:RESTRICT"`
	CreatedAt     time.Time   `gorm:"index"`
	UpdatedAt     time.Time
}

func (productRecord) TableName() string { return "products" }

func toUserRecord(u *domain.User) *userRecord {
	rec := &userRecord{
		ID:              u.ID,
		Email:           u.Email,
		NormalizedEmail: domain.NormalizeEmail(u.Email),
		PasswordHash:    u.PasswordHash,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	for _, r := range u.Roles {
		rec.Roles = append(rec.Roles, userRoleRecord{UserID: u.ID, Role: string(r)})
	}
	return rec
}

func (r *userRecord) toDomain() *domain.User {
	roles := make([]domain.Role, 0, len(r.Roles))
	for _, rr := range r.Roles {
		roles = append(roles, domain.Role(rr.Role))
	}
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Roles:        domain.NewRoles(roles...),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toProductRecord(p *domain.Product) *productRecord {
	return &productRecord{
		ID:            p.ID,
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
}

func (r *productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         domain.RoundPrice(r.Price),
		StockQuantity: r.StockQuantity,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		IsActive:      r.IsActive,
		OwnerID:       r.OwnerID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
