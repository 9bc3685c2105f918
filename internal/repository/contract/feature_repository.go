// FILE: internal/repository/contract/feature_repository.go
// Repository interface for catalog features
package contract

import (
	"context"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/repository/specification"

	"github.com/google/uuid"
)

// FeatureRepository stores features together with their dependency edges and
// tag links. Lookup methods return (nil, nil) when nothing matches.
type FeatureRepository interface {
	Create(ctx context.Context, feature *entity.Feature) error
	// Update writes the scalar fields and replaces the dependency set.
	Update(ctx context.Context, feature *entity.Feature) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error)
	// FindByName matches the name case-insensitively.
	FindByName(ctx context.Context, name string) (*entity.Feature, error)
	// FindAllReferencing returns the features whose dependency set contains id.
	FindAllReferencing(ctx context.Context, id uuid.UUID) ([]*entity.Feature, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Revision is bumped by every Create, Update and Delete in the same
	// transaction, so two reads with the same revision saw the same graph.
	Revision(ctx context.Context) (int64, error)
}
