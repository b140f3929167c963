// procedures_test.go
//
// An APK catalog and admin back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of urmaxx-clone.
// urmaxx-clone is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// urmaxx-clone is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with urmaxx-clone.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package procedures

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	admin  = Caller{User: &models.User{ID: 1, OpenID: "admin:admin", Role: models.RoleAdmin}}
	member = Caller{User: &models.User{ID: 2, OpenID: "ext-42", Role: models.RoleUser}}
	anon   = Caller{}
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupProcedures(t *testing.T, opts ...Option) (*Procedures, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return New(services.NewStore(db), opts...), db
}

func idOf(id int64) *types.FlexInt64 {
	v := types.FlexInt64(id)
	return &v
}

func strPtr(s string) *string {
	return &s
}

func movieHub() CreateInput {
	return CreateInput{
		Name:        "Movie Hub",
		Status:      "Premium Unlocked",
		Size:        "15MB",
		Downloads:   1,
		ImageURL:    "https://x/m.png",
		BorderColor: "blue",
		Category:    "Entertainment",
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreateThenGetByID(t *testing.T) {
	p, _ := setupProcedures(t)
	ctx := context.Background()

	in := movieHub()
	in.Description = strPtr("Stream everything")

	created, err := p.Create(ctx, admin, in)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := p.GetByID(ctx, IDInput{ID: idOf(created.ID)})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Name, got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, *in.Description, *got.Description)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, in.Size, got.Size)
	assert.Equal(t, in.Downloads, got.Downloads)
	assert.Equal(t, in.ImageURL, got.ImageURL)
	assert.Equal(t, in.BorderColor, got.BorderColor)
	assert.Equal(t, in.Category, got.Category)
}

func TestGetAllScenario(t *testing.T) {
	p, _ := setupProcedures(t)
	ctx := context.Background()

	_, err := p.Create(ctx, admin, movieHub())
	require.NoError(t, err)

	all := p.GetAll(ctx)
	require.Len(t, all, 1)

	got := all[0]
	assert.NotZero(t, got.ID)
	assert.Equal(t, "Movie Hub", got.Name)
	assert.Nil(t, got.Description)
	assert.Equal(t, "Premium Unlocked", got.Status)
	assert.Equal(t, "15MB", got.Size)
	assert.Equal(t, int64(1), got.Downloads)
	assert.Equal(t, "https://x/m.png", got.ImageURL)
	assert.Equal(t, "blue", got.BorderColor)
	assert.Equal(t, "Entertainment", got.Category)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetByIDMissing(t *testing.T) {
	p, _ := setupProcedures(t)

	got, err := p.GetByID(context.Background(), IDInput{ID: idOf(999)})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = p.GetByID(context.Background(), IDInput{})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestCreateDefaultsAndAudit(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	in := movieHub()
	in.Downloads = 0
	created, err := p.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Downloads)

	var logs []models.AdminLogEntry
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionCreate, logs[0].Action)
	require.NotNil(t, logs[0].APKID)
	assert.Equal(t, created.ID, *logs[0].APKID)
	require.NotNil(t, logs[0].Details)
	assert.Equal(t, "Created APK: Movie Hub", *logs[0].Details)
	assert.Equal(t, "admin:admin", logs[0].Actor)
	assert.False(t, logs[0].Changes.IsNull())
}

func TestCreateValidation(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty name", func(in *CreateInput) { in.Name = "" }},
		{"empty status", func(in *CreateInput) { in.Status = "" }},
		{"empty size", func(in *CreateInput) { in.Size = "" }},
		{"empty border color", func(in *CreateInput) { in.BorderColor = "" }},
		{"empty category", func(in *CreateInput) { in.Category = "" }},
		{"malformed image url", func(in *CreateInput) { in.ImageURL = "not a url" }},
		{"negative downloads", func(in *CreateInput) { in.Downloads = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := movieHub()
			tt.mutate(&in)
			_, err := p.Create(ctx, admin, in)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}

	assert.Zero(t, countRows(t, db, &models.CatalogEntry{}))
	assert.Zero(t, countRows(t, db, &models.AdminLogEntry{}))
}

func TestUpdateChangesOnlyName(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	in := movieHub()
	in.Description = strPtr("Stream everything")
	created, err := p.Create(ctx, admin, in)
	require.NoError(t, err)

	updated, err := p.Update(ctx, admin, UpdateInput{ID: idOf(created.ID), Name: strPtr("X")})
	require.NoError(t, err)

	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.Size, updated.Size)
	assert.Equal(t, created.Downloads, updated.Downloads)
	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, created.BorderColor, updated.BorderColor)
	assert.Equal(t, created.Category, updated.Category)

	var last models.AdminLogEntry
	require.NoError(t, db.Order("id DESC").Take(&last).Error)
	assert.Equal(t, models.ActionUpdate, last.Action)
	assert.Equal(t, "Updated APK: X", *last.Details)
	assert.JSONEq(t, `{"name":"X"}`, string(last.Changes.JSON))
}

func TestUpdateValidation(t *testing.T) {
	p, _ := setupProcedures(t)
	ctx := context.Background()

	created, err := p.Create(ctx, admin, movieHub())
	require.NoError(t, err)

	_, err = p.Update(ctx, admin, UpdateInput{ID: idOf(created.ID), Name: strPtr("")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = p.Update(ctx, admin, UpdateInput{ID: idOf(created.ID), ImageURL: strPtr("nope")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = p.Update(ctx, admin, UpdateInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, types.ErrValidation)

	got, err := p.GetByID(ctx, IDInput{ID: idOf(created.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Movie Hub", got.Name)
}

func TestUpdateMissingIsConsistencyFault(t *testing.T) {
	p, db := setupProcedures(t)

	_, err := p.Update(context.Background(), admin, UpdateInput{ID: idOf(404), Name: strPtr("X")})
	assert.ErrorIs(t, err, types.ErrConsistency)
	assert.Zero(t, countRows(t, db, &models.AdminLogEntry{}))
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	p, db := setupProcedures(t)

	_, err := p.Delete(context.Background(), admin, IDInput{ID: idOf(12345)})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, countRows(t, db, &models.AdminLogEntry{}))
}

func TestDeleteExisting(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	created, err := p.Create(ctx, admin, movieHub())
	require.NoError(t, err)

	res, err := p.Delete(ctx, admin, IDInput{ID: idOf(created.ID)})
	require.NoError(t, err)
	assert.True(t, res.Success)

	got, err := p.GetByID(ctx, IDInput{ID: idOf(created.ID)})
	require.NoError(t, err)
	assert.Nil(t, got)

	var deletes []models.AdminLogEntry
	require.NoError(t, db.Where("action = ?", models.ActionDelete).Find(&deletes).Error)
	require.Len(t, deletes, 1)
	require.NotNil(t, deletes[0].APKID)
	assert.Equal(t, created.ID, *deletes[0].APKID)
	assert.Equal(t, "Deleted APK: Movie Hub", *deletes[0].Details)
	assert.True(t, deletes[0].Changes.IsNull())
}

func TestNonAdminCannotMutate(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	seeded, err := p.Create(ctx, admin, movieHub())
	require.NoError(t, err)
	before := len(p.GetAll(ctx))
	logsBefore := countRows(t, db, &models.AdminLogEntry{})

	for name, caller := range map[string]Caller{"anonymous": anon, "user role": member} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Create(ctx, caller, movieHub())
			assert.ErrorIs(t, err, types.ErrForbidden)

			// The gate runs before validation
			_, err = p.Create(ctx, caller, CreateInput{})
			assert.ErrorIs(t, err, types.ErrForbidden)

			_, err = p.Update(ctx, caller, UpdateInput{ID: idOf(seeded.ID), Name: strPtr("hijacked")})
			assert.ErrorIs(t, err, types.ErrForbidden)

			_, err = p.Delete(ctx, caller, IDInput{ID: idOf(seeded.ID)})
			assert.ErrorIs(t, err, types.ErrForbidden)

			_, err = p.Logs(ctx, caller, LogsInput{})
			assert.ErrorIs(t, err, types.ErrForbidden)
		})
	}

	assert.Len(t, p.GetAll(ctx), before)
	assert.Equal(t, logsBefore, countRows(t, db, &models.AdminLogEntry{}))

	got, err := p.GetByID(ctx, IDInput{ID: idOf(seeded.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Movie Hub", got.Name)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("hashed credential", func(t *testing.T) {
		p, db := setupProcedures(t)
		require.NoError(t, db.Create(&models.AdminCredential{Username: "admin", Password: string(hash)}).Error)

		res, err := p.Login(ctx, LoginInput{Username: "admin", Password: "admin123"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "admin", res.Admin.Username)

		_, err = p.Login(ctx, LoginInput{Username: "admin", Password: "wrong"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		_, err = p.Login(ctx, LoginInput{Username: "nobody", Password: "admin123"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("plain credential rejected by default", func(t *testing.T) {
		p, db := setupProcedures(t)
		require.NoError(t, db.Create(&models.AdminCredential{Username: "admin", Password: "admin123"}).Error)

		_, err := p.Login(ctx, LoginInput{Username: "admin", Password: "admin123"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("plain credential allowed", func(t *testing.T) {
		p, db := setupProcedures(t, WithPlaintextPasswords(true))
		require.NoError(t, db.Create(&models.AdminCredential{Username: "admin", Password: "admin123"}).Error)

		res, err := p.Login(ctx, LoginInput{Username: "admin", Password: "admin123"})
		require.NoError(t, err)
		assert.Equal(t, "admin", res.Admin.Username)

		_, err = p.Login(ctx, LoginInput{Username: "admin", Password: "admin1234"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		p, _ := setupProcedures(t)
		_, err := p.Login(ctx, LoginInput{Username: "admin"})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestLogs(t *testing.T) {
	p, _ := setupProcedures(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := p.Create(ctx, admin, movieHub())
		require.NoError(t, err)
	}

	logs, err := p.Logs(ctx, admin, LogsInput{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Greater(t, logs[0].ID, logs[1].ID)

	limit := 2
	logs, err = p.Logs(ctx, admin, LogsInput{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	tooMany := 500
	_, err = p.Logs(ctx, admin, LogsInput{Limit: &tooMany})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestMeAndLogout(t *testing.T) {
	p := New(services.NewStore(nil))
	ctx := context.Background()

	assert.Nil(t, p.Me(ctx, anon))
	assert.Equal(t, "ext-42", p.Me(ctx, member).OpenID)
	assert.True(t, p.Logout(ctx, member).Success)
}

func TestRecordSignIn(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()

	user, err := p.RecordSignIn(ctx, services.UserUpsert{OpenID: "ext-7", Name: strPtr("Sam")})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "Sam", *user.Name)

	_, err = p.RecordSignIn(ctx, services.UserUpsert{OpenID: "ext-7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))

	assert.Equal(t, user.ID, p.ResolveUser(ctx, "ext-7", time.Now()).ID)
	assert.Nil(t, p.ResolveUser(ctx, "", time.Now()))

	_, err = p.RecordSignIn(ctx, services.UserUpsert{})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestUnconfiguredStore(t *testing.T) {
	p := New(services.NewStore(nil))
	ctx := context.Background()

	assert.Empty(t, p.GetAll(ctx))
	assert.NotNil(t, p.GetAll(ctx))

	got, err := p.GetByID(ctx, IDInput{ID: idOf(1)})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = p.Create(ctx, admin, movieHub())
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)

	_, err = p.Update(ctx, admin, UpdateInput{ID: idOf(1), Name: strPtr("X")})
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)

	_, err = p.Delete(ctx, admin, IDInput{ID: idOf(1)})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = p.Login(ctx, LoginInput{Username: "admin", Password: "admin123"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	user, err := p.RecordSignIn(ctx, services.UserUpsert{OpenID: "ext-7"})
	require.NoError(t, err)
	assert.Nil(t, user)
}

// auditCounter counts the audit entries handed to the store
type auditCounter struct {
	*services.Store
	appended []string
}

func (s *auditCounter) AppendAdminLog(ctx context.Context, entry models.AdminLogEntry) {
	s.appended = append(s.appended, entry.Action)
	s.Store.AppendAdminLog(ctx, entry)
}

func TestMutationsCommitWhenAuditLogFails(t *testing.T) {
	db := setupTestDB(t)
	// Every audit write now fails inside the store
	require.NoError(t, db.Migrator().DropTable(&models.AdminLogEntry{}))

	store := &auditCounter{Store: services.NewStore(db)}
	p := New(store)
	ctx := context.Background()

	created, err := p.Create(ctx, admin, movieHub())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, int64(1), countRows(t, db, &models.CatalogEntry{}))

	updated, err := p.Update(ctx, admin, UpdateInput{ID: idOf(created.ID), Name: strPtr("Movie Hub Pro")})
	require.NoError(t, err)
	assert.Equal(t, "Movie Hub Pro", updated.Name)

	var stored models.CatalogEntry
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, "Movie Hub Pro", stored.Name)

	res, err := p.Delete(ctx, admin, IDInput{ID: idOf(created.ID)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, countRows(t, db, &models.CatalogEntry{}))

	assert.Equal(t, []string{models.ActionCreate, models.ActionUpdate, models.ActionDelete}, store.appended)
	assert.False(t, db.Migrator().HasTable(&models.AdminLogEntry{}))

	logs, err := p.Logs(ctx, admin, LogsInput{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestResolveUserRevokesRotatedAdminSessions(t *testing.T) {
	p, db := setupProcedures(t)
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.AdminCredential{
		Username:  "admin",
		Password:  "hash-1",
		CreatedAt: issued.Add(-time.Hour),
		UpdatedAt: issued.Add(-time.Hour),
	}).Error)
	role := models.RoleAdmin
	_, err := p.RecordSignIn(ctx, services.UserUpsert{OpenID: "admin:admin", Role: &role})
	require.NoError(t, err)
	_, err = p.RecordSignIn(ctx, services.UserUpsert{OpenID: "ext-7"})
	require.NoError(t, err)

	user := p.ResolveUser(ctx, "admin:admin", issued)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleAdmin, user.Role)

	// Rotating the password invalidates sessions issued before the rotation
	rotated := services.NewStore(db, services.WithClock(func() time.Time { return issued.Add(time.Hour) }))
	require.NoError(t, rotated.SetAdminCredential(ctx, "admin", "hash-2"))
	assert.Nil(t, p.ResolveUser(ctx, "admin:admin", issued))
	assert.NotNil(t, p.ResolveUser(ctx, "admin:admin", issued.Add(2*time.Hour)))

	// Removing the credential invalidates every session for it
	require.NoError(t, db.Where("username = ?", "admin").Delete(&models.AdminCredential{}).Error)
	assert.Nil(t, p.ResolveUser(ctx, "admin:admin", issued.Add(2*time.Hour)))

	// Other identities do not depend on admin credentials
	assert.NotNil(t, p.ResolveUser(ctx, "ext-7", issued))
}
