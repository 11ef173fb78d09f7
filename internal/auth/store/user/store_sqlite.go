package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"romportal/internal/auth/models"
	"romportal/pkg/platform/sentinel"
)

type adminUserRow struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (adminUserRow) TableName() string { return "admin_users" }

func (r adminUserRow) toModel() (*models.AdminUser, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse admin id %q: %w", r.ID, err)
	}
	return &models.AdminUser{
		ID:           id,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}, nil
}

// SQLiteUserStore persists admins through gorm. Emails are stored
// normalized so the plain unique index is case-insensitive in effect.
type SQLiteUserStore struct {
	db *gorm.DB
}

func NewSQLite(db *gorm.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// Migrate creates the admin_users table.
func (s *SQLiteUserStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&adminUserRow{})
}

func (s *SQLiteUserStore) Save(ctx context.Context, user *models.AdminUser) error {
	row := adminUserRow{
		ID:           user.ID.String(),
		Email:        models.NormalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "role"}),
	}).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("admin email %s: %w", row.Email, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("save admin user: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	return s.first(ctx, "id = ?", id.String())
}

func (s *SQLiteUserStore) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return s.first(ctx, "email = ?", models.NormalizeEmail(email))
}

func (s *SQLiteUserStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&adminUserRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count admin users: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteUserStore) first(ctx context.Context, query string, arg any) (*models.AdminUser, error) {
	var row adminUserRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return row.toModel()
}
