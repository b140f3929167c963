// catalog.go
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

	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
	"gorm.io/gorm"
)

// CatalogFields is a partial set of writable catalog entry columns.
// Nil fields are left unchanged by UpdateCatalogEntry.
type CatalogFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Size        *string `json:"size,omitempty"`
	Downloads   *int64  `json:"downloads,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	BorderColor *string `json:"borderColor,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// assignments maps the supplied fields to their column names
func (f CatalogFields) assignments() map[string]interface{} {
	set := make(map[string]interface{})
	if f.Name != nil {
		set["name"] = *f.Name
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.Status != nil {
		set["status"] = *f.Status
	}
	if f.Size != nil {
		set["size"] = *f.Size
	}
	if f.Downloads != nil {
		set["downloads"] = *f.Downloads
	}
	if f.ImageURL != nil {
		set["image_url"] = *f.ImageURL
	}
	if f.BorderColor != nil {
		set["border_color"] = *f.BorderColor
	}
	if f.Category != nil {
		set["category"] = *f.Category
	}
	return set
}

// Empty reports whether no field is supplied
func (f CatalogFields) Empty() bool {
	return len(f.assignments()) == 0
}

// GetAllCatalogEntries returns every catalog entry in store order.
// An unavailable store yields an empty slice.
func (s *Store) GetAllCatalogEntries(ctx context.Context) []models.CatalogEntry {
	entries := []models.CatalogEntry{}

	db := s.reader(ctx, "apks.getAll")
	if db == nil {
		return entries
	}

	if err := db.Find(&entries).Error; err != nil {
		s.degraded("apks.getAll", err)
		return []models.CatalogEntry{}
	}
	return entries
}

// GetCatalogEntryByID returns the entry with the given id, or nil when it does not exist
// or the store is unavailable.
func (s *Store) GetCatalogEntryByID(ctx context.Context, id int64) *models.CatalogEntry {
	db := s.reader(ctx, "apks.getById")
	if db == nil {
		return nil
	}

	var entry models.CatalogEntry
	if err := db.Where("id = ?", id).Take(&entry).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.degraded("apks.getById", err)
		}
		return nil
	}
	return &entry
}

// CreateCatalogEntry inserts entry and returns the stored row with its assigned id.
// The insert and its read-back share a transaction.
func (s *Store) CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) (*models.CatalogEntry, error) {
	db, err := s.writer(ctx)
	if err != nil {
		return nil, err
	}

	entry.ID = 0
	var created models.CatalogEntry
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create catalog entry: %w", err)
		}
		return readBack(tx, entry.ID, &created, "Failed to create APK")
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCatalogEntry applies the supplied fields to the entry with the given id and returns
// the entry as stored afterwards. The last committed update wins.
func (s *Store) UpdateCatalogEntry(ctx context.Context, id int64, fields CatalogFields) (*models.CatalogEntry, error) {
	db, err := s.writer(ctx)
	if err != nil {
		return nil, err
	}

	var updated models.CatalogEntry
	err = db.Transaction(func(tx *gorm.DB) error {
		if set := fields.assignments(); len(set) > 0 {
			if err := tx.Model(&models.CatalogEntry{}).Where("id = ?", id).Updates(set).Error; err != nil {
				return fmt.Errorf("failed to update catalog entry %d: %w", id, err)
			}
		}
		return readBack(tx, id, &updated, "Failed to update APK")
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCatalogEntry removes the entry with the given id. Deleting a missing id is a no-op.
func (s *Store) DeleteCatalogEntry(ctx context.Context, id int64) error {
	db, err := s.writer(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("id = ?", id).Delete(&models.CatalogEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete catalog entry %d: %w", id, err)
	}
	return nil
}

// readBack loads the row just written; a missing row is a consistency fault
func readBack(tx *gorm.DB, id int64, dest *models.CatalogEntry, message string) error {
	if err := tx.Where("id = ?", id).Take(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewError(types.ErrConsistency, message)
		}
		return fmt.Errorf("%s: %w", message, err)
	}
	return nil
}
