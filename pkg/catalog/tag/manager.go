package tag

import (
	"context"
	"strings"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/repository/unitofwork"
)

// Manager resolves tag name/value pairs to stored tags
type Manager struct{}

// NewManager creates a new tag manager
func NewManager() *Manager {
	return &Manager{}
}

// Upsert returns one stored tag per distinct (name, value) pair, creating the
// missing ones. Names are trimmed; values are kept as given.
func (m *Manager) Upsert(ctx context.Context, uow unitofwork.UnitOfWork, reqs []dto.TagRequest) ([]*entity.Tag, error) {
	type pair struct{ name, value string }

	seen := make(map[pair]struct{}, len(reqs))
	tags := make([]*entity.Tag, 0, len(reqs))
	for _, req := range reqs {
		p := pair{name: strings.TrimSpace(req.Name), value: req.Value}
		if p.name == "" {
			return nil, apperrors.ErrValidation("tag name must not be blank")
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		existing, err := uow.TagRepository().FindByNameValue(ctx, p.name, p.value)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			tags = append(tags, existing)
			continue
		}

		created := &entity.Tag{Name: p.name, Value: p.value}
		if err := uow.TagRepository().Create(ctx, created); err != nil {
			return nil, err
		}
		tags = append(tags, created)
	}
	return tags, nil
}

// List returns every stored tag
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.Tag, error) {
	return uow.TagRepository().FindAll(ctx)
}
