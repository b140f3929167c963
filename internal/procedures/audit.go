package procedures

import (
	"context"

	"github.com/virendra-maker/urmaxx-clone/internal/metrics"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
)

// DefaultLogsLimit is the admin.logs page size when no limit is given
const DefaultLogsLimit = 50

// LogsInput is the input of admin.logs
type LogsInput struct {
	Limit *int `json:"limit,omitempty" validate:"omitempty,min=1,max=200"`
}

// Logs implements admin.logs (admin): the most recent audit entries, newest first
func (p *Procedures) Logs(ctx context.Context, caller Caller, in LogsInput) ([]models.AdminLogEntry, error) {
	return p.logs(ctx, caller, in)
}

func (p *Procedures) listLogs(ctx context.Context, _ Caller, in LogsInput) ([]models.AdminLogEntry, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}

	limit := DefaultLogsLimit
	if in.Limit != nil {
		limit = *in.Limit
	}
	return p.store.ListAdminLogs(ctx, limit), nil
}

// audit appends one log entry for a committed mutation. changes may be nil.
func (p *Procedures) audit(ctx context.Context, caller Caller, action string, apkID int64, details string, changes interface{}) {
	metrics.CatalogMutations.WithLabelValues(action).Inc()

	entry := models.AdminLogEntry{
		Action:  action,
		APKID:   &apkID,
		Actor:   caller.openID(),
		Details: &details,
	}
	if changes != nil {
		js, err := models.JSONOf(changes)
		if err != nil {
			p.log.Warn().Err(err).Str("action", action).Msg("could not encode audit changes")
		} else {
			entry.Changes = js
		}
	}

	p.store.AppendAdminLog(ctx, entry)
}
