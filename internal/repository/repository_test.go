package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// failingStore は全操作でエラーを返すStore。
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Set(context.Context, string, []byte) error         { return f.err }
func (f failingStore) Remove(context.Context, string) error              { return f.err }
func (f failingStore) SeedIfEmpty(context.Context, map[string][]byte) error {
	return f.err
}

// fixedClock は呼び出しごとに1秒ずつ進む時刻を返す。
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func TestNewID_UniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 100; i++ {
		id, err := NewID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Greater(t, id, prev, "ids must sort in creation order")
		prev = id
	}
}

func TestStoreLeadRepo_CreateAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreLeadRepo(store.NewMemoryStore(), nil)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.c.now = fixedClock(start)

	first, err := repo.Create(ctx, model.Lead{ID: "caller-supplied", BusinessName: "A"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, model.Lead{BusinessName: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, "caller-supplied", first.ID)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, start, first.CreatedAt)

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "A", leads[0].BusinessName, "list preserves insertion order")
	assert.Equal(t, "B", leads[1].BusinessName)
	assert.Equal(t, first.ID, leads[0].ID)
}

func TestStoreLeadRepo_ListEmptyWhenAbsent(t *testing.T) {
	repo := NewStoreLeadRepo(store.NewMemoryStore(), nil)

	leads, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestStoreLeadRepo_UndecodableValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyLeads, []byte("{not json")))

	reg := prometheus.NewRegistry()
	repo := NewStoreLeadRepo(s, metrics.NewCollector(reg))

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)

	families, err := reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, mf := range families {
		if mf.GetName() == "salesnav_store_decode_failures_total" {
			failures = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), failures)

	// 破損した値の上にも追加できる
	_, err = repo.Create(ctx, model.Lead{BusinessName: "fresh"})
	require.NoError(t, err)
	leads, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestStoreLeadRepo_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreLeadRepo(store.NewMemoryStore(), nil)
	created, err := repo.Create(ctx, model.Lead{BusinessName: "Cafe", City: "Austin", StoppedBy: true})
	require.NoError(t, err)

	yes := true
	updated, err := repo.Update(ctx, created.ID, model.LeadPatch{FollowedUp: &yes})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.True(t, updated.FollowedUp)
	assert.False(t, updated.Converted)
	assert.Equal(t, "Cafe", updated.BusinessName)
	assert.Equal(t, "Austin", updated.City)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, leads[0].FollowedUp, "update must be persisted")
}

// recordingStore はSet呼び出し回数を記録するStore。
type recordingStore struct {
	*store.MemoryStore
	sets int
}

func (r *recordingStore) Set(ctx context.Context, key string, value []byte) error {
	r.sets++
	return r.MemoryStore.Set(ctx, key, value)
}

func TestStoreLeadRepo_UpdateMissReturnsNilWithoutWrite(t *testing.T) {
	ctx := context.Background()
	s := &recordingStore{MemoryStore: store.NewMemoryStore()}
	repo := NewStoreLeadRepo(s, nil)
	_, err := repo.Create(ctx, model.Lead{BusinessName: "A"})
	require.NoError(t, err)
	writes := s.sets

	yes := true
	got, err := repo.Update(ctx, "no-such-id", model.LeadPatch{FollowedUp: &yes})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, writes, s.sets, "miss must not write")
}

func TestStoreLeadRepo_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	repo := NewStoreLeadRepo(failingStore{err: boom}, nil)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = repo.Create(context.Background(), model.Lead{})
	assert.ErrorIs(t, err, boom)
}

func TestStoreLeadRepo_IDGeneratorFailure(t *testing.T) {
	repo := NewStoreLeadRepo(store.NewMemoryStore(), nil)
	repo.c.newID = func() (string, error) { return "", errors.New("entropy") }

	_, err := repo.Create(context.Background(), model.Lead{})
	assert.Error(t, err)
}

func TestStoreClientRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreClientRepo(store.NewMemoryStore(), nil)
	repo.c.newID = sequentialIDs()

	c, err := repo.Create(ctx, model.Client{CompanyName: "Acme", PackageValue: 1500})
	require.NoError(t, err)
	assert.Equal(t, "id-1", c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	clients, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, 1500.0, clients[0].PackageValue)
}

func TestStoreEventRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreEventRepo(store.NewMemoryStore(), nil)
	date := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	e, err := repo.Create(ctx, model.Event{Title: "Demo", Date: date, Time: "10:00 AM", Type: model.EventTypeMeeting})
	require.NoError(t, err)

	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, e.ID, events[0].ID)
	assert.True(t, date.Equal(events[0].Date))
}

func TestStoreReferralRepo_CreateForcesPending(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreReferralRepo(store.NewMemoryStore(), nil)

	r, err := repo.Create(ctx, model.Referral{Candidate: "Jane", Status: model.ReferralStatusHired})
	require.NoError(t, err)
	assert.Equal(t, model.ReferralStatusPending, r.Status)
}

func TestStoreReferralRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreReferralRepo(store.NewMemoryStore(), nil)
	r, err := repo.Create(ctx, model.Referral{Candidate: "Jane"})
	require.NoError(t, err)

	status := model.ReferralStatusInterviewing
	paid := true
	updated, err := repo.Update(ctx, r.ID, model.ReferralPatch{Status: &status, RewardPaid: &paid})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.ReferralStatusInterviewing, updated.Status)
	assert.True(t, updated.RewardPaid)
	assert.Equal(t, "Jane", updated.Candidate)

	missing, err := repo.Update(ctx, "nope", model.ReferralPatch{RewardPaid: &paid})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreUserRepo_FindByEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyUsers,
		[]byte(`[{"id":"1","email":"admin@example.com","password":"pw","name":"Admin","role":"admin","team":"Mgmt"}]`)))
	repo := NewStoreUserRepo(s, nil)

	u, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, "pw", u.Password)

	u, err = repo.FindByEmail(ctx, "Admin@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestStoreSessionRepo_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreSessionRepo(store.NewMemoryStore(), nil)

	token, user, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	require.NoError(t, repo.Save(ctx, "tok", model.User{ID: "1", Email: "a@b.c", Password: "secret"}))

	token, user, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NotNil(t, user)
	assert.Equal(t, "1", user.ID)
	assert.Empty(t, user.Password, "cached user must not carry credentials")

	require.NoError(t, repo.Delete(ctx))
	require.NoError(t, repo.Delete(ctx), "delete is idempotent")

	token, user, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestStoreSessionRepo_CorruptUserIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyAuthToken, []byte(`"tok"`)))
	require.NoError(t, s.Set(ctx, store.KeyUserData, []byte(`garbage`)))
	repo := NewStoreSessionRepo(s, nil)

	token, user, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Nil(t, user)
}
