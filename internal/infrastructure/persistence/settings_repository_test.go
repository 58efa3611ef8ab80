package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	settings.PasswordCost = bcrypt.MinCost
}

func TestGormSettingsRepository(t *testing.T) {
	repo := NewGormSettingsRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	s, err := settings.New(settings.Patch{ShopName: ptr("Green Shop"), AdminPassword: ptr("secret1")})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Green Shop", stored.ShopName)
	assert.True(t, stored.VerifyPassword("secret1"))

	updated, err := repo.Update(ctx, stored.ID, settings.Patch{Telegram: ptr("@greenshop"), ShopName: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "@greenshop", updated.Telegram)

	stored, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "@greenshop", stored.Telegram)
	assert.Equal(t, "", stored.ShopName)
	assert.True(t, stored.VerifyPassword("secret1"))

	_, err = repo.Update(ctx, uuid.New(), settings.Patch{Telegram: ptr("@other")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, stored.ID))
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormSettingsRepository_UpdatesKeepOtherFields(t *testing.T) {
	repo := NewGormSettingsRepository(newTestDB(t))
	ctx := context.Background()

	s, err := settings.New(settings.Patch{ShopName: ptr("Green Shop"), AdminPassword: ptr("secret1")})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))

	_, err = repo.Update(ctx, s.ID, settings.Patch{Telegram: ptr("@greenshop")})
	require.NoError(t, err)
	_, err = repo.Update(ctx, s.ID, settings.Patch{ContactEmail: ptr("shop@example.com")})
	require.NoError(t, err)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "@greenshop", stored.Telegram)
	assert.Equal(t, "shop@example.com", stored.ContactEmail)
	assert.Equal(t, "Green Shop", stored.ShopName)
}

func TestGormSettingsRepository_UpdateWritesPatchedColumnsOnly(t *testing.T) {
	db := testutil.NewMockDB(t)
	mock := db.Mock
	repo := NewGormSettingsRepository(db.DB)
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "settings" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "admin_password_hash", "shop_name", "contact_phone", "contact_email", "telegram"}).
			AddRow(id.String(), created, created, "hash", "Green Shop", "+7 900", "shop@example.com", ""))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "settings" SET "telegram"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs("@greenshop", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), id, settings.Patch{Telegram: ptr(" @greenshop ")})
	require.NoError(t, err)
	assert.Equal(t, "@greenshop", updated.Telegram)
	assert.Equal(t, "Green Shop", updated.ShopName)

	db.ExpectationsWereMet(t)
}
