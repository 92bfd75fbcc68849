package tasks

import (
	"context"
	"sort"
	"sync"
)

// Repository persists tasks. Inputs are expected to be validated already;
// each method is a single atomic unit against the store.
type Repository interface {
	Create(ctx context.Context, in TaskInput) (Task, error)
	CreateMany(ctx context.Context, ins []TaskInput) ([]Task, error)
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Update(ctx context.Context, id int64, in TaskInput) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

type InMemoryRepo struct {
	mu    sync.Mutex
	seq   int64
	store map[int64]Task
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		store: make(map[int64]Task),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, in TaskInput) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(in), nil
}

func (r *InMemoryRepo) CreateMany(_ context.Context, ins []TaskInput) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(ins))
	for _, in := range ins {
		out = append(out, r.insert(in))
	}
	return out, nil
}

// insert requires r.mu.
func (r *InMemoryRepo) insert(in TaskInput) Task {
	r.seq++
	t := Task{
		ID:          r.seq,
		Title:       in.Title,
		IsCompleted: in.IsCompleted,
	}
	r.store[t.ID] = t
	return t
}

func (r *InMemoryRepo) List(_ context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(r.store))
	for _, t := range r.store {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepo) Get(_ context.Context, id int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.store[id]
	if !ok {
		return Task{}, &NotFoundError{ID: id}
	}
	return t, nil
}

func (r *InMemoryRepo) Update(_ context.Context, id int64, in TaskInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return &NotFoundError{ID: id}
	}
	r.store[id] = Task{ID: id, Title: in.Title, IsCompleted: in.IsCompleted}
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, id)
	return nil
}

func (r *InMemoryRepo) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.store[id]; ok {
			delete(r.store, id)
			n++
		}
	}
	return n, nil
}
