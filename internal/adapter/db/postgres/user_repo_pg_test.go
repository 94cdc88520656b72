package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&UserSchema{}))
	return db
}

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, repo *UserRepoPG, users ...user.User) []*user.User {
	out := make([]*user.User, 0, len(users))
	for i := range users {
		created, err := repo.Create(context.Background(), &users[i])
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestUserRepoPG_Create(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "John Doe", Email: "john.doe@example.com", Age: ptr(30)})
	require.NoError(t, err)

	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err, "id should be a uuid")
	assert.Equal(t, "John Doe", created.Name)
	assert.Equal(t, 30, *created.Age)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, &user.User{Name: "Other", Email: "john.doe@example.com"})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := repo.Create(ctx, nil)
		assert.EqualError(t, err, "user cannot be nil")
	})
}

func TestUserRepoPG_List(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	seeded := seed(t, repo,
		user.User{Name: "John Doe", Email: "john@example.com"},
		user.User{Name: "Jane Smith", Email: "jane@example.com", Age: ptr(28)},
	)

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, seeded[0].ID, users[0].ID)
	assert.Nil(t, users[0].Age)
	assert.Equal(t, 28, *users[1].Age)
}

func TestUserRepoPG_GetByID(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	seeded := seed(t, repo, user.User{Name: "John Doe", Email: "john@example.com"})

	tests := []struct {
		name     string
		id       string
		wantName string
		wantKind apperrors.Kind
		wantErr  string
	}{
		{name: "found", id: seeded[0].ID, wantName: "John Doe"},
		{name: "not found", id: uuid.NewString(), wantKind: apperrors.KindNotFound, wantErr: "User not found"},
		{name: "malformed id", id: "123", wantKind: apperrors.KindUnknown, wantErr: "invalid user id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, u)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, u.Name)
		})
	}
}

func TestUserRepoPG_Update(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	seeded := seed(t, repo,
		user.User{Name: "John Doe", Email: "john.doe@example.com", Age: ptr(30)},
		user.User{Name: "Jane Smith", Email: "jane@example.com"},
	)
	id := seeded[0].ID

	t.Run("only supplied fields change", func(t *testing.T) {
		u, err := repo.Update(ctx, id, user.Patch{Name: ptr("Jane Doe")})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", u.Name)
		assert.Equal(t, "john.doe@example.com", u.Email)
		assert.Equal(t, 30, *u.Age)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, u, stored)
	})

	t.Run("empty patch returns current row", func(t *testing.T) {
		u, err := repo.Update(ctx, id, user.Patch{})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", u.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.NewString(), user.Patch{Name: ptr("Ghost")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("empty patch on missing row", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.NewString(), user.Patch{})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := repo.Update(ctx, id, user.Patch{Email: ptr("jane@example.com")})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := repo.Update(ctx, "not-a-uuid", user.Patch{Name: ptr("x")})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
	})
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()
	seeded := seed(t, repo, user.User{Name: "John Doe", Email: "john@example.com"})

	deleted, err := repo.Delete(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0].ID, deleted.ID)
	assert.Equal(t, "John Doe", deleted.Name)

	_, err = repo.GetByID(ctx, seeded[0].ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.Delete(ctx, seeded[0].ID)
	assert.True(t, apperrors.IsNotFound(err), "second delete reports not found")
}

func TestUserRepoPG_Ping(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestUserRepoPG_Migrate(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	// table already exists; migrating again must be a no-op
	require.NoError(t, repo.Migrate(context.Background()))

	_, err := repo.Create(context.Background(), &user.User{Name: "John Doe", Email: "john@example.com"})
	assert.NoError(t, err)
}
