// FILE: internal/repository/contract/tag_repository.go
package contract

import (
	"context"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/repository/specification"
)

type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	FindByNameValue(ctx context.Context, name, value string) (*entity.Tag, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tag, error)
}
