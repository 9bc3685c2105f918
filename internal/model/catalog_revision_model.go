// FILE: internal/model/catalog_revision_model.go
package model

import "time"

// CatalogRevisionId is the primary key of the only catalog_revisions row.
const CatalogRevisionId = 1

// CatalogRevision counts committed feature writes. Every write updates the
// same row, so serializable transactions that change the graph conflict on it.
type CatalogRevision struct {
	Id        int       `gorm:"primaryKey;autoIncrement:false"`
	Revision  int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CatalogRevision) TableName() string {
	return "catalog_revisions"
}
