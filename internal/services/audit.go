// audit.go
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

	"github.com/virendra-maker/urmaxx-clone/internal/metrics"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
)

// MaxAdminLogs caps ListAdminLogs
const MaxAdminLogs = 200

// AppendAdminLog writes an audit entry on a best-effort basis. Failures are logged and
// counted, never returned: the mutation being described has already committed.
func (s *Store) AppendAdminLog(ctx context.Context, entry models.AdminLogEntry) {
	db, err := s.conn()
	if err != nil {
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("[Database] Cannot create log: database not available")
		metrics.AuditDropped.Inc()
		return
	}

	entry.ID = 0
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn().Err(err).Str("action", entry.Action).Msg("[Database] Failed to create log")
		metrics.AuditDropped.Inc()
	}
}

// ListAdminLogs returns up to limit audit entries, newest first
func (s *Store) ListAdminLogs(ctx context.Context, limit int) []models.AdminLogEntry {
	logs := []models.AdminLogEntry{}
	if limit <= 0 || limit > MaxAdminLogs {
		limit = MaxAdminLogs
	}

	db := s.reader(ctx, "admin.logs")
	if db == nil {
		return logs
	}

	if err := db.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		s.degraded("admin.logs", err)
		return []models.AdminLogEntry{}
	}
	return logs
}
