package memory

import (
	"context"
	"fmt"
	"sort"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/repository/specification"

	"github.com/google/uuid"
)

type tagRepository struct {
	uow *UnitOfWork
}

func (r *tagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	return r.uow.write(func(s *state) error {
		for _, existing := range s.tags {
			if existing.Name == tag.Name && existing.Value == tag.Value {
				return fmt.Errorf("%w: tags (%s, %s)", ErrUniqueViolation, tag.Name, tag.Value)
			}
		}
		if tag.Id == uuid.Nil {
			tag.Id = uuid.New()
		}
		tag.CreatedAt = r.uow.store.now()
		s.tags[tag.Id] = *tag
		return nil
	})
}

func (r *tagRepository) FindByNameValue(ctx context.Context, name, value string) (*entity.Tag, error) {
	var res *entity.Tag
	r.uow.read(func(s *state) {
		for _, tag := range s.tags {
			if tag.Name == name && tag.Value == value {
				t := tag
				res = &t
				return
			}
		}
	})
	return res, nil
}

func (r *tagRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tag, error) {
	var page *specification.Pagination
	for _, spec := range specs {
		p, ok := spec.(specification.Pagination)
		if !ok {
			return nil, fmt.Errorf("memory: unsupported tag specification %T", spec)
		}
		page = &p
	}

	var res []*entity.Tag
	r.uow.read(func(s *state) {
		for _, tag := range s.tags {
			t := tag
			res = append(res, &t)
		}
	})
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].Value < res[j].Value
	})
	if page != nil {
		if page.Offset >= len(res) {
			return nil, nil
		}
		end := len(res)
		if page.Limit > 0 && page.Offset+page.Limit < end {
			end = page.Offset + page.Limit
		}
		res = res[page.Offset:end]
	}
	return res, nil
}
