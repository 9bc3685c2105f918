package unitofwork

import (
	"context"

	"pazuzu-registry/internal/repository/contract"
)

// UnitOfWork groups repository calls into one transaction. Repositories
// obtained after Begin run inside the transaction; before Begin (or after
// Commit/Rollback) they run in autocommit mode.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FeatureRepository() contract.FeatureRepository
	TagRepository() contract.TagRepository
}
