// procedures.go
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

// Package procedures is the callable surface of the catalog: the auth, apks and admin
// namespaces. Every procedure validates its input, and the catalog mutations run behind
// a single admin gate.
package procedures

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
)

// Store is the data access the procedures need. *services.Store implements it.
type Store interface {
	GetAllCatalogEntries(ctx context.Context) []models.CatalogEntry
	GetCatalogEntryByID(ctx context.Context, id int64) *models.CatalogEntry
	CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) (*models.CatalogEntry, error)
	UpdateCatalogEntry(ctx context.Context, id int64, fields services.CatalogFields) (*models.CatalogEntry, error)
	DeleteCatalogEntry(ctx context.Context, id int64) error
	UpsertUser(ctx context.Context, u services.UserUpsert) error
	GetUserByExternalID(ctx context.Context, openID string) *models.User
	GetAdminCredentialByUsername(ctx context.Context, username string) *models.AdminCredential
	AppendAdminLog(ctx context.Context, entry models.AdminLogEntry)
	ListAdminLogs(ctx context.Context, limit int) []models.AdminLogEntry
}

// Caller is the identity a procedure runs on behalf of. A nil User is anonymous.
type Caller struct {
	User *models.User
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.User.IsAdmin()
}

// openID returns the caller's external identity, or "" when anonymous
func (c Caller) openID() string {
	if c.User == nil {
		return ""
	}
	return c.User.OpenID
}

// Success is the acknowledgement returned by procedures with no other output
type Success struct {
	Success bool `json:"success"`
}

// Option configures Procedures
type Option func(*Procedures)

// WithPlaintextPasswords allows admin credentials stored as plain values to match
func WithPlaintextPasswords(allow bool) Option {
	return func(p *Procedures) {
		p.allowPlaintext = allow
	}
}

// Procedures implements every callable operation
type Procedures struct {
	store          Store
	validate       *validator.Validate
	allowPlaintext bool
	log            zerolog.Logger

	create func(context.Context, Caller, CreateInput) (*models.CatalogEntry, error)
	update func(context.Context, Caller, UpdateInput) (*models.CatalogEntry, error)
	remove func(context.Context, Caller, IDInput) (*Success, error)
	logs   func(context.Context, Caller, LogsInput) ([]models.AdminLogEntry, error)
}

// New creates the procedure set over store
func New(store Store, opts ...Option) *Procedures {
	p := &Procedures{
		store:    store,
		validate: newValidator(),
		log:      logging.Component("procedures"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.create = adminOnly("Only admins can create APKs", p.createEntry)
	p.update = adminOnly("Only admins can update APKs", p.updateEntry)
	p.remove = adminOnly("Only admins can delete APKs", p.deleteEntry)
	p.logs = adminOnly("Only admins can read the activity log", p.listLogs)

	return p
}

// adminOnly gates fn on the caller's role. The check runs before input validation
// and before any store access.
func adminOnly[I, O any](message string, fn func(context.Context, Caller, I) (O, error)) func(context.Context, Caller, I) (O, error) {
	return func(ctx context.Context, caller Caller, in I) (O, error) {
		if !caller.IsAdmin() {
			var zero O
			return zero, types.NewError(types.ErrForbidden, message)
		}
		return fn(ctx, caller, in)
	}
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates input and converts failures to a ValidationError
func (p *Procedures) check(input interface{}) error {
	err := p.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return types.NewError(types.ErrValidation, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return types.NewError(types.ErrValidation, strings.Join(msgs, "; "))
}
