package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	group := enums.BloodGroupONeg

	created, err := repo.Create(ctx, CreateUserDTO{
		Name:         " Ada Donor ",
		Email:        " Ada@Example.COM ",
		PasswordHash: "hash",
		BloodGroup:   &group,
	})
	require.NoError(t, err)
	require.NotEqual(t, "", created.ID.String())
	require.Equal(t, "ada@example.com", created.Email)
	require.Equal(t, "Ada Donor", created.Name)
	require.Equal(t, enums.AccountRoleUser, created.Role)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.BloodGroup)
	require.Equal(t, enums.BloodGroupONeg, *byID.BloodGroup)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListNewestFirstAndLastLogin(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	older, err := repo.Create(ctx, CreateUserDTO{Name: "Older", Email: "older@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", older.ID).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	newer, err := repo.Create(ctx, CreateUserDTO{Name: "Newer", Email: "newer@example.com", PasswordHash: "h", Role: enums.AccountRoleAdmin})
	require.NoError(t, err)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, newer.ID, rows[0].ID)
	require.Equal(t, older.ID, rows[1].ID)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, older.ID, at))
	reloaded, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, reloaded.LastLoginAt.Equal(at))
}

func TestDTOMapping(t *testing.T) {
	require.Nil(t, FromModel(nil))
	require.Nil(t, SummaryFromModel(nil))
	require.Empty(t, FromModels(nil))

	u := &models.User{Name: "N", Email: "n@example.com", PasswordHash: "secret", Role: enums.AccountRoleAdmin}
	require.Nil(t, SummaryFromModel(u), "zero id means not preloaded")
	require.NoError(t, u.BeforeCreate(nil))

	dto := FromModel(u)
	require.Equal(t, u.ID, dto.ID)
	require.Equal(t, enums.AccountRoleAdmin, dto.Role)
	summary := SummaryFromModel(u)
	require.Equal(t, "n@example.com", summary.Email)
}
