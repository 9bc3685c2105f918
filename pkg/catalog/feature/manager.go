package feature

import (
	"context"
	"errors"
	"strings"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/specification"
	"pazuzu-registry/internal/repository/unitofwork"
	"pazuzu-registry/pkg/catalog/tag"
	"pazuzu-registry/pkg/depgraph"

	"github.com/google/uuid"
)

// InvariantModule is the log module for corrupted graph state.
const InvariantModule = "GRAPH_INVARIANT"

// Manager is the only code path that mutates features. Every method runs
// against the given unit of work; the caller owns the transaction.
type Manager struct {
	tags   *tag.Manager
	logger logger.ILogger
}

// NewManager creates a new feature manager
func NewManager(tags *tag.Manager, logger logger.ILogger) *Manager {
	return &Manager{
		tags:   tags,
		logger: logger,
	}
}

// Get loads a feature by name, case-insensitively.
func (m *Manager) Get(ctx context.Context, uow unitofwork.UnitOfWork, name string) (*entity.Feature, error) {
	f, err := uow.FeatureRepository().FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperrors.ErrFeatureNotFound(name)
	}
	return f, nil
}

// List returns the features whose name contains substring, ignoring case,
// ordered by name.
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork, substring string) ([]*entity.Feature, error) {
	return uow.FeatureRepository().FindAll(ctx,
		specification.NameContains{Substring: substring},
		specification.OrderBy{Field: "name_key"},
	)
}

// Page returns one page ordered by name plus the size of the whole catalog.
func (m *Manager) Page(ctx context.Context, uow unitofwork.UnitOfWork, offset, limit int) ([]*entity.Feature, int64, error) {
	features, err := uow.FeatureRepository().FindAll(ctx,
		specification.OrderBy{Field: "name_key"},
		specification.Pagination{Offset: offset, Limit: limit},
	)
	if err != nil {
		return nil, 0, err
	}
	total, err := uow.FeatureRepository().Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return features, total, nil
}

// Revision identifies the catalog state visible to uow.
func (m *Manager) Revision(ctx context.Context, uow unitofwork.UnitOfWork) (int64, error) {
	return uow.FeatureRepository().Revision(ctx)
}

// Create adds a feature with approved=false.
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, req dto.CreateFeatureRequest) (*entity.Feature, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ErrFeatureNameEmpty()
	}
	if err := m.ensureNameFree(ctx, uow, name, uuid.Nil); err != nil {
		return nil, err
	}

	deps, err := m.ResolveDependencies(ctx, uow, req.Dependencies)
	if err != nil {
		return nil, err
	}

	tags, err := m.tags.Upsert(ctx, uow, req.Tags)
	if err != nil {
		return nil, err
	}

	feature := &entity.Feature{
		Name:         name,
		Dependencies: refs(deps),
		Tags:         tags,
	}
	if req.DockerData != nil {
		feature.DockerData = *req.DockerData
	}
	if req.TestInstruction != nil {
		feature.TestInstruction = req.TestInstruction
	}
	if req.Description != nil && *req.Description != "" {
		feature.Description = req.Description
	}

	if err := uow.FeatureRepository().Create(ctx, feature); err != nil {
		return nil, err
	}
	return feature, nil
}

// Update changes the feature currently called name. Nil request fields are
// left untouched.
func (m *Manager) Update(ctx context.Context, uow unitofwork.UnitOfWork, name string, req dto.UpdateFeatureRequest) (*entity.Feature, error) {
	feature, err := m.Get(ctx, uow, name)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, apperrors.ErrFeatureNameEmpty()
		}
		if newName != feature.Name {
			if err := m.ensureNameFree(ctx, uow, newName, feature.Id); err != nil {
				return nil, err
			}
			feature.Name = newName
		}
	}
	if req.DockerData != nil {
		feature.DockerData = *req.DockerData
	}
	if req.TestInstruction != nil {
		feature.TestInstruction = req.TestInstruction
	}
	if req.Description != nil {
		feature.Description = req.Description
	}

	if req.Dependencies != nil {
		deps, err := m.ResolveDependencies(ctx, uow, req.Dependencies)
		if err != nil {
			return nil, err
		}
		if err := m.checkRecursion(ctx, uow, feature, deps); err != nil {
			return nil, err
		}
		feature.Dependencies = refs(deps)
	}

	if err := uow.FeatureRepository().Update(ctx, feature); err != nil {
		return nil, err
	}
	return feature, nil
}

// Approve flips the approved flag. Nothing else changes.
func (m *Manager) Approve(ctx context.Context, uow unitofwork.UnitOfWork, name string) (*entity.Feature, error) {
	feature, err := m.Get(ctx, uow, name)
	if err != nil {
		return nil, err
	}
	feature.Approved = true
	if err := uow.FeatureRepository().Update(ctx, feature); err != nil {
		return nil, err
	}
	return feature, nil
}

// Delete removes a feature nobody depends on and returns it.
func (m *Manager) Delete(ctx context.Context, uow unitofwork.UnitOfWork, name string) (*entity.Feature, error) {
	feature, err := m.Get(ctx, uow, name)
	if err != nil {
		return nil, err
	}

	referencing, err := uow.FeatureRepository().FindAllReferencing(ctx, feature.Id)
	if err != nil {
		return nil, err
	}
	if len(referencing) > 0 {
		names := make([]string, 0, len(referencing))
		for _, r := range referencing {
			names = append(names, r.Name)
		}
		return nil, apperrors.ErrFeatureReferenced(names...)
	}

	if err := uow.FeatureRepository().Delete(ctx, feature.Id); err != nil {
		return nil, err
	}
	return feature, nil
}

// ResolveDependencies maps names to stored features. Names are deduplicated
// case-insensitively and blank entries are skipped. If any name is unknown
// the error lists all of them.
func (m *Manager) ResolveDependencies(ctx context.Context, uow unitofwork.UnitOfWork, names []string) ([]*entity.Feature, error) {
	seen := make(map[string]struct{}, len(names))
	resolved := make([]*entity.Feature, 0, len(names))
	var missing []string

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := entity.NameKey(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		f, err := uow.FeatureRepository().FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if f == nil {
			missing = append(missing, name)
			continue
		}
		resolved = append(resolved, f)
	}

	if len(missing) > 0 {
		return nil, apperrors.ErrFeatureNotFound(missing...)
	}
	return resolved, nil
}

// Linearize returns the transitive closure of the named roots ordered so
// that every feature follows all of its dependencies.
func (m *Manager) Linearize(ctx context.Context, uow unitofwork.UnitOfWork, names []string) ([]*entity.Feature, error) {
	roots, err := m.ResolveDependencies(ctx, uow, names)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return []*entity.Feature{}, nil
	}

	src := newRepositorySource(uow)
	rootNodes := make([]depgraph.Node, 0, len(roots))
	for _, r := range roots {
		src.loaded[r.Id] = r
		rootNodes = append(rootNodes, toNode(r))
	}

	g, err := depgraph.Expand(ctx, src, rootNodes)
	if err != nil {
		return nil, m.invariant(err, names)
	}
	ordered, err := g.TopologicalSort()
	if err != nil {
		return nil, m.invariant(err, names)
	}

	res := make([]*entity.Feature, 0, len(ordered))
	for _, n := range ordered {
		res = append(res, src.loaded[n.Id])
	}
	return res, nil
}

// checkRecursion rejects deps that already reach feature, which would close
// a cycle once feature depends on them.
func (m *Manager) checkRecursion(ctx context.Context, uow unitofwork.UnitOfWork, feature *entity.Feature, deps []*entity.Feature) error {
	if len(deps) == 0 {
		return nil
	}

	src := newRepositorySource(uow)
	roots := make([]depgraph.Node, 0, len(deps))
	for _, d := range deps {
		src.loaded[d.Id] = d
		roots = append(roots, toNode(d))
	}

	g, err := depgraph.Expand(ctx, src, roots)
	if err != nil {
		return m.invariant(err, []string{feature.Name})
	}

	var offending []string
	for _, d := range deps {
		if g.Reaches(d.Id, feature.Id) {
			offending = append(offending, d.Name)
		}
	}
	if len(offending) > 0 {
		return apperrors.ErrFeatureRecursiveDependency(offending...)
	}
	return nil
}

func (m *Manager) ensureNameFree(ctx context.Context, uow unitofwork.UnitOfWork, name string, self uuid.UUID) error {
	existing, err := uow.FeatureRepository().FindByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.Id != self {
		return apperrors.ErrFeatureDuplicate(name)
	}
	return nil
}

// invariant converts graph corruption into an internal error and logs it.
// Everything else (store failures, cancellation) passes through unchanged.
func (m *Manager) invariant(err error, roots []string) error {
	if !errors.Is(err, depgraph.ErrCycle) && !errors.Is(err, depgraph.ErrDanglingEdge) {
		return err
	}
	m.logger.Error(InvariantModule, "Feature graph invariant violated", map[string]interface{}{
		"error": err.Error(),
		"roots": roots,
	})
	return apperrors.ErrInvariant(err)
}

// repositorySource feeds depgraph.Expand from the feature repository and
// keeps the loaded entities so results can be mapped back.
type repositorySource struct {
	uow    unitofwork.UnitOfWork
	loaded map[uuid.UUID]*entity.Feature
}

func newRepositorySource(uow unitofwork.UnitOfWork) *repositorySource {
	return &repositorySource{
		uow:    uow,
		loaded: make(map[uuid.UUID]*entity.Feature),
	}
}

func (s *repositorySource) Fetch(ctx context.Context, ids []uuid.UUID) ([]depgraph.Node, error) {
	features, err := s.uow.FeatureRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	nodes := make([]depgraph.Node, 0, len(features))
	for _, f := range features {
		s.loaded[f.Id] = f
		nodes = append(nodes, toNode(f))
	}
	return nodes, nil
}

func toNode(f *entity.Feature) depgraph.Node {
	return depgraph.Node{
		Id:        f.Id,
		Name:      f.Name,
		DependsOn: f.DependencyIds(),
	}
}

func refs(features []*entity.Feature) []entity.FeatureRef {
	res := make([]entity.FeatureRef, 0, len(features))
	for _, f := range features {
		res = append(res, f.Ref())
	}
	return res
}
