package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/mapper"
	"pazuzu-registry/internal/repository/specification"

	"github.com/google/uuid"
)

type featureRepository struct {
	uow *UnitOfWork
}

func (r *featureRepository) Create(ctx context.Context, feature *entity.Feature) error {
	return r.uow.write(func(s *state) error {
		if feature.Id == uuid.Nil {
			feature.Id = uuid.New()
		}
		if _, exists := s.features[feature.Id]; exists {
			return fmt.Errorf("%w: features.id %s", ErrUniqueViolation, feature.Id)
		}
		if err := checkNameFree(s, feature.Id, feature.Name); err != nil {
			return err
		}
		rec, err := r.toRecord(s, feature)
		if err != nil {
			return err
		}
		now := r.uow.store.now()
		rec.createdAt, rec.updatedAt = now, now
		s.features[rec.id] = rec
		s.revision++
		feature.CreatedAt, feature.UpdatedAt = now, now
		return nil
	})
}

func (r *featureRepository) Update(ctx context.Context, feature *entity.Feature) error {
	return r.uow.write(func(s *state) error {
		existing, ok := s.features[feature.Id]
		if !ok {
			return fmt.Errorf("memory: feature %s does not exist", feature.Id)
		}
		if err := checkNameFree(s, feature.Id, feature.Name); err != nil {
			return err
		}
		rec, err := r.toRecord(s, feature)
		if err != nil {
			return err
		}
		rec.tagIds = existing.tagIds
		rec.createdAt = existing.createdAt
		rec.updatedAt = r.uow.store.now()
		s.features[rec.id] = rec
		s.revision++
		feature.UpdatedAt = rec.updatedAt
		return nil
	})
}

func (r *featureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.uow.write(func(s *state) error {
		for _, rec := range s.features {
			for _, dep := range rec.dependencyIds {
				if dep == id {
					return fmt.Errorf("%w: feature %s is referenced by %s", ErrForeignKeyViolation, id, rec.name)
				}
			}
		}
		if _, ok := s.features[id]; ok {
			delete(s.features, id)
			s.revision++
		}
		return nil
	})
}

func (r *featureRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *featureRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	var (
		res []*entity.Feature
		err error
	)
	r.uow.read(func(s *state) {
		var recs []featureRecord
		recs, err = query(s, specs)
		if err != nil {
			return
		}
		res = make([]*entity.Feature, 0, len(recs))
		for _, rec := range recs {
			res = append(res, toEntity(s, rec))
		}
	})
	return res, err
}

func (r *featureRepository) FindByName(ctx context.Context, name string) (*entity.Feature, error) {
	var res *entity.Feature
	key := entity.NameKey(name)
	r.uow.read(func(s *state) {
		for _, rec := range s.features {
			if entity.NameKey(rec.name) == key {
				res = toEntity(s, rec)
				return
			}
		}
	})
	return res, nil
}

func (r *featureRepository) FindAllReferencing(ctx context.Context, id uuid.UUID) ([]*entity.Feature, error) {
	var res []*entity.Feature
	r.uow.read(func(s *state) {
		for _, rec := range sortedRecords(s) {
			for _, dep := range rec.dependencyIds {
				if dep == id {
					res = append(res, toEntity(s, rec))
					break
				}
			}
		}
	})
	return res, nil
}

func (r *featureRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var (
		n   int64
		err error
	)
	r.uow.read(func(s *state) {
		var recs []featureRecord
		recs, err = query(s, specs)
		n = int64(len(recs))
	})
	return n, err
}

func (r *featureRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	r.uow.read(func(s *state) {
		rev = s.revision
	})
	return rev, nil
}

func (r *featureRepository) toRecord(s *state, f *entity.Feature) (featureRecord, error) {
	rec := featureRecord{
		id:              f.Id,
		name:            f.Name,
		dockerData:      f.DockerData,
		testInstruction: copyStr(f.TestInstruction),
		description:     copyStr(f.Description),
		approved:        f.Approved,
	}
	for _, dep := range f.Dependencies {
		if _, ok := s.features[dep.Id]; !ok {
			return rec, fmt.Errorf("%w: dependency %s does not exist", ErrForeignKeyViolation, dep.Id)
		}
		rec.dependencyIds = append(rec.dependencyIds, dep.Id)
	}
	for _, tag := range f.Tags {
		if _, ok := s.tags[tag.Id]; !ok {
			return rec, fmt.Errorf("%w: tag %s does not exist", ErrForeignKeyViolation, tag.Id)
		}
		rec.tagIds = append(rec.tagIds, tag.Id)
	}
	return rec, nil
}

func checkNameFree(s *state, id uuid.UUID, name string) error {
	key := entity.NameKey(name)
	for _, rec := range s.features {
		if rec.id != id && entity.NameKey(rec.name) == key {
			return fmt.Errorf("%w: features.name_key %q", ErrUniqueViolation, key)
		}
	}
	return nil
}

func toEntity(s *state, rec featureRecord) *entity.Feature {
	deps := make([]entity.FeatureRef, 0, len(rec.dependencyIds))
	for _, id := range rec.dependencyIds {
		deps = append(deps, entity.FeatureRef{Id: id, Name: s.features[id].name})
	}
	mapper.SortRefs(deps)

	tags := make([]*entity.Tag, 0, len(rec.tagIds))
	for _, id := range rec.tagIds {
		tag := s.tags[id]
		tags = append(tags, &tag)
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].Value < tags[j].Value
	})

	return &entity.Feature{
		Id:              rec.id,
		Name:            rec.name,
		DockerData:      rec.dockerData,
		TestInstruction: copyStr(rec.testInstruction),
		Description:     copyStr(rec.description),
		Approved:        rec.approved,
		Dependencies:    deps,
		Tags:            tags,
		CreatedAt:       rec.createdAt,
		UpdatedAt:       rec.updatedAt,
	}
}

func sortedRecords(s *state) []featureRecord {
	recs := make([]featureRecord, 0, len(s.features))
	for _, rec := range s.features {
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs
}

// sortRecords orders by name key, then id. Keys are computed once per record.
func sortRecords(recs []featureRecord) {
	keys := make(map[uuid.UUID]string, len(recs))
	for _, rec := range recs {
		keys[rec.id] = entity.NameKey(rec.name)
	}
	sort.Slice(recs, func(i, j int) bool {
		ki, kj := keys[recs[i].id], keys[recs[j].id]
		if ki != kj {
			return ki < kj
		}
		return idLess(recs[i].id, recs[j].id)
	})
}

// query interprets the specifications the gorm repository understands.
// ByID and ByIDs are resolved by map lookup, so only matching records are
// filtered and sorted.
func query(s *state, specs []specification.Specification) ([]featureRecord, error) {
	var (
		ids   map[uuid.UUID]struct{} // nil means every record
		preds []func(featureRecord) bool
		order *specification.OrderBy
		page  *specification.Pagination
	)
	restrict := func(next []uuid.UUID) {
		set := make(map[uuid.UUID]struct{}, len(next))
		for _, id := range next {
			if ids != nil {
				if _, ok := ids[id]; !ok {
					continue
				}
			}
			set[id] = struct{}{}
		}
		ids = set
	}

	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			restrict([]uuid.UUID{sp.ID})
		case specification.ByIDs:
			restrict(sp.IDs)
		case specification.NameContains:
			sub := strings.ToLower(sp.Substring)
			preds = append(preds, func(rec featureRecord) bool {
				return strings.Contains(entity.NameKey(rec.name), sub)
			})
		case specification.OrderBy:
			o := sp
			order = &o
		case specification.Pagination:
			p := sp
			page = &p
		default:
			return nil, fmt.Errorf("memory: unsupported specification %T", spec)
		}
	}

	var candidates []featureRecord
	if ids != nil {
		candidates = make([]featureRecord, 0, len(ids))
		for id := range ids {
			if rec, ok := s.features[id]; ok {
				candidates = append(candidates, rec)
			}
		}
	} else {
		candidates = make([]featureRecord, 0, len(s.features))
		for _, rec := range s.features {
			candidates = append(candidates, rec)
		}
	}

	res := candidates[:0]
	for _, rec := range candidates {
		match := true
		for _, pred := range preds {
			if !pred(rec) {
				match = false
				break
			}
		}
		if match {
			res = append(res, rec)
		}
	}
	sortRecords(res)

	if order != nil {
		if err := applyOrder(res, *order); err != nil {
			return nil, err
		}
	}
	if page != nil {
		res = paginate(res, *page)
	}
	return res, nil
}

func applyOrder(recs []featureRecord, o specification.OrderBy) error {
	var less func(a, b featureRecord) bool
	switch o.Field {
	case "name", "name_key":
		less = func(a, b featureRecord) bool { return entity.NameKey(a.name) < entity.NameKey(b.name) }
	case "created_at":
		less = func(a, b featureRecord) bool { return a.createdAt.Before(b.createdAt) }
	case "updated_at":
		less = func(a, b featureRecord) bool { return a.updatedAt.Before(b.updatedAt) }
	default:
		return fmt.Errorf("memory: unsupported order field %q", o.Field)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if o.Desc {
			return less(recs[j], recs[i])
		}
		return less(recs[i], recs[j])
	})
	return nil
}

func paginate(recs []featureRecord, p specification.Pagination) []featureRecord {
	if p.Offset >= len(recs) {
		return nil
	}
	end := len(recs)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return recs[p.Offset:end]
}
