// store.go
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
	"time"

	"github.com/rs/zerolog"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/metrics"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Store is the data access layer and the only code that talks to the database.
//
// A Store built over a nil *gorm.DB is the unconfigured variant: reads answer empty,
// writes fail with types.ErrStoreUnavailable, and the sign-in and audit paths log and
// carry on. A configured database that cannot be reached degrades the same way on each
// call, and the connection is retried by the handle.
type Store struct {
	handle      *database.Handle
	ownerOpenID string
	now         func() time.Time
	log         zerolog.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithOwnerOpenID names the external identity that is elevated to admin on sign-in
func WithOwnerOpenID(openID string) StoreOption {
	return func(s *Store) {
		s.ownerOpenID = openID
	}
}

// WithClock replaces time.Now for sign-in timestamps
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store over an open db. db may be nil.
func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	return NewStoreWithHandle(database.Static(db), opts...)
}

// NewStoreWithHandle creates a Store that connects through h. h may be nil.
func NewStoreWithHandle(h *database.Handle, opts ...StoreOption) *Store {
	s := &Store{
		handle: h,
		now: time.Now,
		log: logging.Component("database"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a database is configured
func (s *Store) Available() bool {
	return s != nil && s.handle != nil
}

// conn returns the connection, opening it if needed
func (s *Store) conn() (*gorm.DB, error) {
	if s == nil {
		return nil, database.ErrNotConfigured
	}
	return s.handle.Get()
}

// reader returns a read session tagged with the operation name, or nil when the
// database is unconfigured or unreachable
func (s *Store) reader(ctx context.Context, operation string) *gorm.DB {
	db, err := s.conn()
	if err != nil {
		s.log.Warn().Err(err).Str("operation", operation).Msg("[Database] Cannot read: database not available")
		metrics.DegradedReads.WithLabelValues(operation).Inc()
		return nil
	}
	return db.WithContext(ctx).Clauses(hints.CommentBefore("select", operation))
}

// writer returns a write session, or ErrStoreUnavailable
func (s *Store) writer(ctx context.Context) (*gorm.DB, error) {
	db, err := s.conn()
	if err != nil {
		s.log.Warn().Err(err).Msg("[Database] Cannot write: database not available")
		return nil, types.NewError(types.ErrStoreUnavailable, "Database not available")
	}
	return db.WithContext(ctx), nil
}

// degraded records a read that failed against a configured database
func (s *Store) degraded(operation string, err error) {
	s.log.Warn().Err(err).Str("operation", operation).Msg("[Database] read failed, answering empty")
	metrics.DegradedReads.WithLabelValues(operation).Inc()
}
