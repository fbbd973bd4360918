// Package inmem provides an in-memory implementation of the server's
// persistence layer, suitable for testing and for running without a data
// directory.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Pratheep-Srikones/rpal-online/server/dao"
	"github.com/google/uuid"
)

// NewDatastore creates a new in-memory store with empty repositories.
func NewDatastore() dao.Store {
	return &store{
		runs: NewRunsRepository(),
	}
}

type store struct {
	runs *InMemoryRunsRepository
}

func (s *store) Runs() dao.RunRepository {
	return s.runs
}

func (s *store) Close() error {
	return nil
}

// NewRunsRepository creates a new Runs repo backed by a map.
func NewRunsRepository() *InMemoryRunsRepository {
	return &InMemoryRunsRepository{
		runs: make(map[uuid.UUID]dao.Run),
	}
}

// InMemoryRunsRepository is safe for concurrent use by multiple goroutines.
type InMemoryRunsRepository struct {
	mtx  sync.RWMutex
	runs map[uuid.UUID]dao.Run
}

func (imrr *InMemoryRunsRepository) Close() error {
	return nil
}

func (imrr *InMemoryRunsRepository) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, fmt.Errorf("could not generate ID: %w", err)
	}

	run.ID = newUUID
	run.Created = time.Now()

	imrr.mtx.Lock()
	defer imrr.mtx.Unlock()

	if _, ok := imrr.runs[run.ID]; ok {
		return dao.Run{}, dao.ErrConstraintViolation
	}
	imrr.runs[run.ID] = run

	return run, nil
}

func (imrr *InMemoryRunsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	imrr.mtx.RLock()
	defer imrr.mtx.RUnlock()

	run, ok := imrr.runs[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	return run, nil
}

func (imrr *InMemoryRunsRepository) GetAll(ctx context.Context) ([]dao.Run, error) {
	imrr.mtx.RLock()
	defer imrr.mtx.RUnlock()

	all := make([]dao.Run, 0, len(imrr.runs))
	for k := range imrr.runs {
		all = append(all, imrr.runs[k])
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Created.Equal(all[j].Created) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].Created.After(all[j].Created)
	})

	return all, nil
}

func (imrr *InMemoryRunsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	imrr.mtx.Lock()
	defer imrr.mtx.Unlock()

	run, ok := imrr.runs[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	delete(imrr.runs, id)

	return run, nil
}
