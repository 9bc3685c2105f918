package memory

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"pazuzu-registry/internal/entity"

	"github.com/google/uuid"
)

var (
	// ErrUniqueViolation mirrors the unique index on features.name_key.
	ErrUniqueViolation = errors.New("memory: unique constraint violated")
	// ErrForeignKeyViolation mirrors the foreign keys of the join tables.
	ErrForeignKeyViolation = errors.New("memory: foreign key constraint violated")
)

// featureRecord is stored by value and never mutated in place, so a shallow
// copy of the map is a full snapshot.
type featureRecord struct {
	id              uuid.UUID
	name            string
	dockerData      string
	testInstruction *string
	description     *string
	approved        bool
	dependencyIds   []uuid.UUID
	tagIds          []uuid.UUID
	createdAt       time.Time
	updatedAt       time.Time
}

type state struct {
	features map[uuid.UUID]featureRecord
	tags     map[uuid.UUID]entity.Tag
	revision int64
}

func (s state) clone() state {
	c := state{
		features: make(map[uuid.UUID]featureRecord, len(s.features)),
		tags:     make(map[uuid.UUID]entity.Tag, len(s.tags)),
		revision: s.revision,
	}
	for k, v := range s.features {
		c.features[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	return c
}

// Store is a process-local catalog. A unit of work holds the write lock for
// the whole transaction, which serializes mutations.
type Store struct {
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: state{
			features: make(map[uuid.UUID]featureRecord),
			tags:     make(map[uuid.UUID]entity.Tag),
		},
		now: time.Now,
	}
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func idLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
