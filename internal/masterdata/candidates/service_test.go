package candidates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/shared"
)

type mockRepo struct {
	items      map[int64]Candidate
	registered []Registration
}

func newMockRepo(items ...Candidate) *mockRepo {
	m := &mockRepo{items: map[int64]Candidate{}}
	for _, c := range items {
		m.items[c.ID] = c
	}
	return m
}

func (m *mockRepo) List(_ context.Context, status Status) ([]Candidate, error) {
	var out []Candidate
	for _, c := range m.items {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Candidate, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	c, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Status = status
	m.items[id] = c
	return nil
}

func (m *mockRepo) BulkRegister(_ context.Context, regs []Registration) (int, error) {
	for _, reg := range regs {
		c, ok := m.items[reg.CandidateID]
		if !ok || c.Status != StatusPending {
			return 0, shared.ErrNotFound
		}
		c.Status = StatusRegistered
		m.items[reg.CandidateID] = c
	}
	m.registered = append(m.registered, regs...)
	return len(regs), nil
}

func (m *mockRepo) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, c := range m.items {
		if c.Status != StatusPending && c.UpdatedAt.Before(cutoff) {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func TestServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.List(context.Background(), Status("archived"))
	assert.Error(t, err)
}

func TestServiceBulkRegister(t *testing.T) {
	repo := newMockRepo(Candidate{ID: 1, ProductCode: "RINO-XYZ", SampleSKU: "RINO-XYZ-M", Status: StatusPending})
	svc := NewService(repo)

	n, err := svc.BulkRegister(context.Background(), []Registration{{
		CandidateID:       1,
		ProductName:       "新商品",
		SalesPriceExclTax: 2000,
		CostExclTax:       800,
		ProductType:       products.TypeOwnBrand,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusRegistered, repo.items[1].Status)
}

func TestServiceBulkRegisterValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.BulkRegister(context.Background(), nil)
	assert.Error(t, err)

	_, err = svc.BulkRegister(context.Background(), []Registration{{
		CandidateID: 1,
		ProductName: "  ",
		ProductType: products.TypeOwnBrand,
	}})
	assert.Error(t, err)

	_, err = svc.BulkRegister(context.Background(), []Registration{{
		CandidateID: 1,
		ProductName: "新商品",
		ProductType: "consignment",
	}})
	assert.Error(t, err)
}

func TestServiceCleanupResolved(t *testing.T) {
	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	repo := newMockRepo(
		Candidate{ID: 1, Status: StatusRegistered, UpdatedAt: old},
		Candidate{ID: 2, Status: StatusIgnored, UpdatedAt: old},
		Candidate{ID: 3, Status: StatusPending, UpdatedAt: old},
		Candidate{ID: 4, Status: StatusRegistered, UpdatedAt: time.Now().UTC()},
	)
	svc := NewService(repo)

	n, err := svc.CleanupResolved(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Contains(t, repo.items, int64(3))
	assert.Contains(t, repo.items, int64(4))
}
