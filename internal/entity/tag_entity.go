// FILE: internal/entity/tag_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a key/value label attached to features.
type Tag struct {
	Id        uuid.UUID
	Name      string
	Value     string
	CreatedAt time.Time
}
