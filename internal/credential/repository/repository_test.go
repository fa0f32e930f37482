package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/prepaid/internal/credential/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AccessToken{}))
	return db
}

func TestSaveAndFind(t *testing.T) {
	store := New(setupDB(t))
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	err := store.Save(ctx, &domain.AccessToken{
		ID:        1001,
		Principal: "default",
		Token:     "first",
		Metadata:  datatypes.JSONMap{"source": "seed"},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	found, err := store.Find(ctx, " default ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "first", found.Token)
	assert.Equal(t, "seed", found.Metadata["source"])
}

func TestSaveReplacesTokenForPrincipal(t *testing.T) {
	store := New(setupDB(t))
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)

	require.NoError(t, store.Save(ctx, &domain.AccessToken{ID: 1, Principal: "default", Token: "old", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.Save(ctx, &domain.AccessToken{ID: 2, Principal: "default", Token: "new", ExpiresAt: &expires, CreatedAt: now, UpdatedAt: now.Add(time.Minute)}))

	found, err := store.Find(ctx, "default")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "new", found.Token)
	require.NotNil(t, found.ExpiresAt)
	assert.True(t, found.ExpiresAt.Equal(expires))
}

func TestFindMissingReturnsNil(t *testing.T) {
	store := New(setupDB(t))

	found, err := store.Find(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestValidation(t *testing.T) {
	store := New(setupDB(t))
	ctx := context.Background()

	_, err := store.Find(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPrincipal)

	assert.ErrorIs(t, store.Save(ctx, nil), domain.ErrInvalidToken)
	assert.ErrorIs(t, store.Save(ctx, &domain.AccessToken{Principal: "p"}), domain.ErrInvalidToken)
	assert.ErrorIs(t, store.Save(ctx, &domain.AccessToken{Token: "t"}), domain.ErrInvalidPrincipal)
}
