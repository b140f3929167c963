package models

import (
	"time"
)

// CatalogEntry is one downloadable application shown on the public catalog page
type CatalogEntry struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:50;not null" json:"status"`
	Size        string    `gorm:"size:50;not null" json:"size"`
	Downloads   int64     `gorm:"not null;default:0" json:"downloads"`
	ImageURL    string    `gorm:"type:text;not null" json:"imageUrl"`
	BorderColor string    `gorm:"size:50;not null" json:"borderColor"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for CatalogEntry
func (CatalogEntry) TableName() string {
	return "apks"
}

// Audit actions recorded in AdminLogEntry.Action
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AdminLogEntry is an append-only audit record of a catalog mutation.
// APKID is a historical pointer and survives deletion of the entry it names.
type AdminLogEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	APKID     *int64    `gorm:"column:apk_id" json:"apkId"`
	Actor     string    `gorm:"size:128" json:"actor,omitempty"`
	Details   *string   `gorm:"type:text" json:"details"`
	Changes   JSON      `json:"changes"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for AdminLogEntry
func (AdminLogEntry) TableName() string {
	return "admin_logs"
}
