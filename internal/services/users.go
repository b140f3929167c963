// users.go
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

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserUpsert carries a sign-in for an external identity. Nil fields are not written.
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *string
	LastSignedIn *time.Time
}

// UpsertUser inserts or refreshes the user keyed by OpenID.
//
// The owner identity is elevated to admin when no role is supplied. LastSignedIn is
// written on every call, defaulting to now, so a repeated sign-in with unchanged fields
// only advances it. An unavailable store turns the call into a logged no-op so that an
// authentication flow is never interrupted.
func (s *Store) UpsertUser(ctx context.Context, u UserUpsert) error {
	if u.OpenID == "" {
		return types.NewError(types.ErrValidation, "User openId is required for upsert")
	}
	db, err := s.conn()
	if err != nil {
		s.log.Warn().Err(err).Str("openId", u.OpenID).Msg("[Database] Cannot upsert user: database not available")
		return nil
	}

	now := s.now()
	values := models.User{OpenID: u.OpenID, LastSignedIn: now}
	updateSet := map[string]interface{}{"updated_at": now}

	if u.Name != nil {
		values.Name = u.Name
		updateSet["name"] = *u.Name
	}
	if u.Email != nil {
		values.Email = u.Email
		updateSet["email"] = *u.Email
	}
	if u.LoginMethod != nil {
		values.LoginMethod = u.LoginMethod
		updateSet["login_method"] = *u.LoginMethod
	}

	if u.Role != nil {
		values.Role = *u.Role
		updateSet["role"] = *u.Role
	} else if s.ownerOpenID != "" && u.OpenID == s.ownerOpenID {
		values.Role = models.RoleAdmin
		updateSet["role"] = models.RoleAdmin
	}

	if u.LastSignedIn != nil {
		values.LastSignedIn = *u.LastSignedIn
	}
	updateSet["last_signed_in"] = values.LastSignedIn

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "open_id"}},
		DoUpdates: clause.Assignments(updateSet),
	}).Create(&values).Error
	if err != nil {
		s.log.Error().Err(err).Str("openId", u.OpenID).Msg("[Database] Failed to upsert user")
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUserByExternalID returns the user with the given external identity, or nil
func (s *Store) GetUserByExternalID(ctx context.Context, openID string) *models.User {
	db := s.reader(ctx, "users.byOpenId")
	if db == nil {
		return nil
	}

	var user models.User
	if err := db.Where("open_id = ?", openID).Take(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.degraded("users.byOpenId", err)
		}
		return nil
	}
	return &user
}

// GetAdminCredentialByUsername returns the admin credential for username, or nil
func (s *Store) GetAdminCredentialByUsername(ctx context.Context, username string) *models.AdminCredential {
	db := s.reader(ctx, "admin.byUsername")
	if db == nil {
		return nil
	}

	var cred models.AdminCredential
	if err := db.Where("username = ?", username).Take(&cred).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.degraded("admin.byUsername", err)
		}
		return nil
	}
	return &cred
}

// SetAdminCredential provisions or rotates the credential for username.
// password is stored as given; callers hash it first.
func (s *Store) SetAdminCredential(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return types.NewError(types.ErrValidation, "username and password are required")
	}
	db, err := s.writer(ctx)
	if err != nil {
		return err
	}

	cred := models.AdminCredential{Username: username, Password: password}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"password": password, "updated_at": s.now()}),
	}).Create(&cred).Error
	if err != nil {
		return fmt.Errorf("failed to set admin credential: %w", err)
	}
	return nil
}
