package procedures

import (
	"context"
	"fmt"

	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/types"
)

// IDInput addresses a single catalog entry
type IDInput struct {
	ID *types.FlexInt64 `json:"id" validate:"required"`
}

// CreateInput is the input of apks.create
type CreateInput struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status" validate:"required,min=1"`
	Size        string  `json:"size" validate:"required,min=1"`
	Downloads   int64   `json:"downloads" validate:"min=0"`
	ImageURL    string  `json:"imageUrl" validate:"required,url"`
	BorderColor string  `json:"borderColor" validate:"required,min=1"`
	Category    string  `json:"category" validate:"required,min=1"`
}

// UpdateInput is the input of apks.update. Absent fields are left unchanged.
type UpdateInput struct {
	ID          *types.FlexInt64 `json:"id" validate:"required"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,min=1"`
	Size        *string          `json:"size,omitempty" validate:"omitempty,min=1"`
	Downloads   *int64           `json:"downloads,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	BorderColor *string          `json:"borderColor,omitempty" validate:"omitempty,min=1"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,min=1"`
}

func (in UpdateInput) fields() services.CatalogFields {
	return services.CatalogFields{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Size:        in.Size,
		Downloads:   in.Downloads,
		ImageURL:    in.ImageURL,
		BorderColor: in.BorderColor,
		Category:    in.Category,
	}
}

// GetAll implements apks.getAll
func (p *Procedures) GetAll(ctx context.Context) []models.CatalogEntry {
	return p.store.GetAllCatalogEntries(ctx)
}

// GetByID implements apks.getById. A missing entry is nil, not an error.
func (p *Procedures) GetByID(ctx context.Context, in IDInput) (*models.CatalogEntry, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}
	return p.store.GetCatalogEntryByID(ctx, in.ID.Int64()), nil
}

// Create implements apks.create (admin)
func (p *Procedures) Create(ctx context.Context, caller Caller, in CreateInput) (*models.CatalogEntry, error) {
	return p.create(ctx, caller, in)
}

// Update implements apks.update (admin)
func (p *Procedures) Update(ctx context.Context, caller Caller, in UpdateInput) (*models.CatalogEntry, error) {
	return p.update(ctx, caller, in)
}

// Delete implements apks.delete (admin)
func (p *Procedures) Delete(ctx context.Context, caller Caller, in IDInput) (*Success, error) {
	return p.remove(ctx, caller, in)
}

func (p *Procedures) createEntry(ctx context.Context, caller Caller, in CreateInput) (*models.CatalogEntry, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}

	entry, err := p.store.CreateCatalogEntry(ctx, models.CatalogEntry{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Size:        in.Size,
		Downloads:   in.Downloads,
		ImageURL:    in.ImageURL,
		BorderColor: in.BorderColor,
		Category:    in.Category,
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, caller, models.ActionCreate, entry.ID, fmt.Sprintf("Created APK: %s", entry.Name), in)
	return entry, nil
}

func (p *Procedures) updateEntry(ctx context.Context, caller Caller, in UpdateInput) (*models.CatalogEntry, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}

	id := in.ID.Int64()
	fields := in.fields()
	entry, err := p.store.UpdateCatalogEntry(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	p.audit(ctx, caller, models.ActionUpdate, id, fmt.Sprintf("Updated APK: %s", entry.Name), fields)
	return entry, nil
}

func (p *Procedures) deleteEntry(ctx context.Context, caller Caller, in IDInput) (*Success, error) {
	if err := p.check(in); err != nil {
		return nil, err
	}

	id := in.ID.Int64()
	existing := p.store.GetCatalogEntryByID(ctx, id)
	if existing == nil {
		return nil, types.NewError(types.ErrNotFound, "APK not found")
	}

	if err := p.store.DeleteCatalogEntry(ctx, id); err != nil {
		return nil, err
	}

	p.audit(ctx, caller, models.ActionDelete, id, fmt.Sprintf("Deleted APK: %s", existing.Name), nil)
	return &Success{Success: true}, nil
}
