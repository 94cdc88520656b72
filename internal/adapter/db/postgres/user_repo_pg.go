package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// UserRepoPG implements the user Repository using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    string `gorm:"primaryKey;size:36"`            // UUID assigned on insert
	Name  string `gorm:"not null"`                      // User's full name (required)
	Email string `gorm:"not null;uniqueIndex;size:255"` // User's unique email address
	Age   *int
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (s *UserSchema) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *UserSchema) toDomain() *user.User {
	return &user.User{ID: s.ID, Name: s.Name, Email: s.Email, Age: s.Age}
}

// parseID rejects identifiers that can never match a row. The error is left
// untyped so callers decide its status.
func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return nil
}

func writeError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.NewValidationError("email", "already exists")
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s user", op), err)
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, writeError("create", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// List retrieves every user in insertion order.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}
	return users, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, r.lookupError(ctx, "get", id, err)
	}
	return model.toDomain(), nil
}

// Update writes the supplied fields and returns the stored row.
func (r *UserRepoPG) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.Age != nil {
		fields["age"] = *patch.Age
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&UserSchema{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.First(&model, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.lookupError(ctx, "update", id, err)
		}
		logger.WithContext(ctx, r.log).Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return nil, writeError("update", err)
	}

	logger.WithContext(ctx, r.log).Info("user updated in db", zap.String("id", id))
	return model.toDomain(), nil
}

// Delete removes a user from the database and returns the removed row.
func (r *UserRepoPG) Delete(ctx context.Context, id string) (*user.User, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&UserSchema{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, r.lookupError(ctx, "delete", id, err)
	}

	logger.WithContext(ctx, r.log).Info("user deleted in db", zap.String("id", id))
	return model.toDomain(), nil
}

// Migrate creates or updates the users table.
func (r *UserRepoPG) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Ping checks the underlying connection pool.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *UserRepoPG) lookupError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.WithContext(ctx, r.log).Debug("user not found", zap.String("op", op), zap.String("id", id))
		return apperrors.ErrUserNotFound
	}
	logger.WithContext(ctx, r.log).Error("failed to "+op+" user in db", zap.Error(err), zap.String("id", id))
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s user", op), err)
}
