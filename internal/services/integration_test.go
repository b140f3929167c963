package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/testenv"
)

// Runs against a real MariaDB when DB_IMAGE names one, e.g. DB_IMAGE=mariadb:11
func TestMariaDBStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}

	ctx := context.Background()
	opts := testenv.OptionsFromEnv()
	opts.AuthzImage = ""
	opts.Logf = t.Logf

	stack, err := testenv.Start(ctx, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := stack.Terminate(context.Background()); err != nil {
			t.Logf("terminate: %v", err)
		}
	})

	cfg := &config.Config{
		DatabaseURL:       stack.DatabaseURL,
		DBType:            "mysql",
		DBConnectionLimit: 5,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	// The models must agree with the DDL applied by testenv
	require.NoError(t, database.AutoMigrate(db))

	store := NewStore(db, WithOwnerOpenID("owner-1"))

	created, err := store.CreateCatalogEntry(ctx, sampleEntry("Movie Hub"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := store.UpdateCatalogEntry(ctx, created.ID, CatalogFields{Name: strPtr("Movie Hub Pro")})
	require.NoError(t, err)
	assert.Equal(t, "Movie Hub Pro", updated.Name)
	assert.Equal(t, created.ImageURL, updated.ImageURL)

	_, err = store.UpdateCatalogEntry(ctx, created.ID+1000, CatalogFields{Name: strPtr("X")})
	assert.Error(t, err)

	require.NoError(t, store.UpsertUser(ctx, UserUpsert{OpenID: "owner-1", Name: strPtr("Owner")}))
	require.NoError(t, store.UpsertUser(ctx, UserUpsert{OpenID: "owner-1"}))
	owner := store.GetUserByExternalID(ctx, "owner-1")
	require.NotNil(t, owner)
	assert.Equal(t, models.RoleAdmin, owner.Role)
	require.NotNil(t, owner.Name)
	assert.Equal(t, "Owner", *owner.Name)

	changes, err := models.JSONOf(map[string]string{"name": "Movie Hub Pro"})
	require.NoError(t, err)
	details := "Updated APK: Movie Hub Pro"
	store.AppendAdminLog(ctx, models.AdminLogEntry{
		Action:  models.ActionUpdate,
		APKID:   &created.ID,
		Actor:   "owner-1",
		Details: &details,
		Changes: changes,
	})

	require.NoError(t, store.DeleteCatalogEntry(ctx, created.ID))
	assert.Nil(t, store.GetCatalogEntryByID(ctx, created.ID))

	logs := store.ListAdminLogs(ctx, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, created.ID, *logs[0].APKID)
	assert.JSONEq(t, `{"name":"Movie Hub Pro"}`, string(logs[0].Changes.JSON))

	require.NoError(t, store.SetAdminCredential(ctx, "admin", "hash-1"))
	require.NoError(t, store.SetAdminCredential(ctx, "admin", "hash-2"))
	assert.Equal(t, "hash-2", store.GetAdminCredentialByUsername(ctx, "admin").Password)

	health := HealthCheck(ctx, cfg, database.Static(db))
	assert.Equal(t, "healthy", health.Status)
}
