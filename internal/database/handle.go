// handle.go
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

package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"gorm.io/gorm"
)

// Handle holds the connection for a configured database. The connection is opened on
// first use; a failed open is retried on a later call once the retry interval has passed.
type Handle struct {
	mu      sync.Mutex
	db      *gorm.DB
	open    func() (*gorm.DB, error)
	retry   time.Duration
	lastErr error
	nextTry time.Time
	now     func() time.Time
}

// NewHandle returns a handle that connects with open on first use
func NewHandle(open func() (*gorm.DB, error), retry time.Duration) *Handle {
	return &Handle{open: open, retry: retry, now: time.Now}
}

// Static wraps an already open connection. A nil db yields a nil handle.
func Static(db *gorm.DB) *Handle {
	if db == nil {
		return nil
	}
	return &Handle{db: db, now: time.Now}
}

// ConnectHandle returns a lazy handle for the configured database, or ErrNotConfigured.
// Configuration errors surface here; unreachability surfaces from Get.
func ConnectHandle(cfg *config.Config, migrate bool) (*Handle, error) {
	if _, err := Dialector(cfg); err != nil {
		return nil, err
	}
	return NewHandle(func() (*gorm.DB, error) {
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := AutoMigrate(db); err != nil {
				Close(db)
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return db, nil
	}, cfg.DBRetryInterval), nil
}

// Get returns the open connection, connecting if needed.
// A nil handle reports ErrNotConfigured.
func (h *Handle) Get() (*gorm.DB, error) {
	if h == nil {
		return nil, ErrNotConfigured
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}
	if h.lastErr != nil && h.now().Before(h.nextTry) {
		return nil, h.lastErr
	}

	db, err := h.open()
	if err != nil {
		h.lastErr = err
		h.nextTry = h.now().Add(h.retry)
		return nil, err
	}
	h.db, h.lastErr = db, nil
	return db, nil
}

// Connected reports whether a connection has been opened
func (h *Handle) Connected() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db != nil
}

// Close closes the connection if one was opened
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	err := Close(h.db)
	h.db = nil
	return err
}
