package memory

import (
	"context"
	"fmt"

	"pazuzu-registry/internal/repository/contract"
	"pazuzu-registry/internal/repository/unitofwork"
)

type repositoryFactory struct {
	store *Store
}

// NewRepositoryFactory returns a factory whose units of work share store.
func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store    *Store
	inTx     bool
	snapshot state
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.snapshot = u.store.state.clone()
	u.inTx = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.inTx = false
	u.snapshot = state{}
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.state = u.snapshot
	u.inTx = false
	u.snapshot = state{}
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) FeatureRepository() contract.FeatureRepository {
	return &featureRepository{uow: u}
}

func (u *UnitOfWork) TagRepository() contract.TagRepository {
	return &tagRepository{uow: u}
}

// read runs fn under the read lock unless the transaction already holds the
// write lock.
func (u *UnitOfWork) read(fn func(s *state)) {
	if !u.inTx {
		u.store.mu.RLock()
		defer u.store.mu.RUnlock()
	}
	fn(&u.store.state)
}

func (u *UnitOfWork) write(fn func(s *state) error) error {
	if !u.inTx {
		u.store.mu.Lock()
		defer u.store.mu.Unlock()
	}
	return fn(&u.store.state)
}
