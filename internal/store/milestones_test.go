package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/seed"
	"github.com/pkordes/babysteps/backend/internal/store"
)

func milestoneFixture() domain.Milestone {
	return domain.Milestone{
		Title:    "Heard the heartbeat",
		Date:     time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC),
		Notes:    "160 bpm",
		Category: domain.CategoryMedical,
	}
}

func openMilestones(t *testing.T, backend kv.Store) *store.Milestones {
	t.Helper()
	return store.OpenMilestones(context.Background(), backend, testOptions()...)
}

func TestOpenMilestones_SeedsEmptyBackend(t *testing.T) {
	backend := kv.NewMemory()

	s := openMilestones(t, backend)

	assert.Equal(t, seed.Milestones(now), s.All())

	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	assert.Equal(t, seed.Milestones(now), stored, "seed data is persisted immediately")
}

func TestOpenMilestones_CorruptBlobFallsBackToSeed(t *testing.T) {
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(`{not json`)))

	s := openMilestones(t, backend)

	assert.Equal(t, seed.Milestones(now), s.All())

	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	assert.Equal(t, seed.Milestones(now), stored, "seed data replaces the corrupt blob")
}

func TestOpenMilestones_WrongShapeFallsBackToSeed(t *testing.T) {
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(`{"id":"1"}`)))

	s := openMilestones(t, backend)

	assert.Len(t, s.All(), 3)
}

func TestOpenMilestones_ReadFailureFallsBackToSeed(t *testing.T) {
	backend := newFlakyBackend()
	backend.failGet = true

	s := openMilestones(t, backend)

	assert.Equal(t, seed.Milestones(now), s.All())
}

func TestOpenMilestones_ReadFailureLeavesBlobIntact(t *testing.T) {
	backend := newFlakyBackend()
	userBlob := `[{"id":"user-1","title":"My real milestone","date":"2025-08-01T00:00:00Z","category":"medical","createdAt":"2025-08-01T00:00:00Z"}]`
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(userBlob)))
	backend.failGet = true

	s := openMilestones(t, backend)
	backend.failGet = false

	assert.Equal(t, seed.Milestones(now), s.All(), "seed data is served from memory")
	assert.JSONEq(t, userBlob, string(rawBlob(t, backend, store.MilestonesKey)))
}

func TestMilestones_Add_WhileBackendUnreadable_DoesNotOverwrite(t *testing.T) {
	backend := newFlakyBackend()
	userBlob := `[{"id":"user-1","title":"My real milestone","date":"2025-08-01T00:00:00Z","category":"medical","createdAt":"2025-08-01T00:00:00Z"}]`
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(userBlob)))
	backend.failGet = true
	s := openMilestones(t, backend)

	_, err := s.Add(context.Background(), milestoneFixture())

	require.NoError(t, err)
	assert.Len(t, s.All(), 4, "change is kept in memory")
	assert.JSONEq(t, userBlob, string(rawBlob(t, backend, store.MilestonesKey)))
}

func TestMilestones_Add_AfterBackendRecovers_MergesPersistedData(t *testing.T) {
	backend := newFlakyBackend()
	userBlob := `[{"id":"user-1","title":"My real milestone","date":"2025-08-01T00:00:00Z","category":"medical","createdAt":"2025-08-01T00:00:00Z"}]`
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(userBlob)))
	backend.failGet = true
	s := openMilestones(t, backend)
	backend.failGet = false

	got, err := s.Add(context.Background(), milestoneFixture())

	require.NoError(t, err)
	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	require.Len(t, stored, 2)
	assert.Equal(t, got.ID, stored[0].ID)
	assert.Equal(t, "user-1", stored[1].ID)
	assert.Equal(t, stored, s.All())
}

func TestOpenMilestones_MissingCategoryReadsAsGeneral(t *testing.T) {
	backend := kv.NewMemory()
	blob := `[
		{"id":"a","title":"No category","date":"2025-08-01T00:00:00Z","createdAt":"2025-08-01T00:00:00Z"},
		{"id":"b","title":"Unknown category","date":"2025-08-02T00:00:00Z","category":"spiritual","createdAt":"2025-08-02T00:00:00Z"},
		{"id":"c","title":"Medical","date":"2025-08-03T00:00:00Z","category":"medical","createdAt":"2025-08-03T00:00:00Z"}
	]`
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(blob)))

	s := openMilestones(t, backend)

	general := s.ByCategory(domain.CategoryGeneral)
	require.Len(t, general, 2)
	assert.Equal(t, "a", general[0].ID)
	assert.Equal(t, "b", general[1].ID)
	assert.Len(t, s.ByCategory(domain.CategoryMedical), 1)
}

func TestMilestones_TwoStoresOnOneBackend(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()
	server := openMilestones(t, backend)
	admin := openMilestones(t, backend)

	_, ok, err := admin.Update(ctx, "1", domain.MilestonePatch{Notes: ptr("edited elsewhere")})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = server.Add(ctx, milestoneFixture())
	require.NoError(t, err)

	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	require.Len(t, stored, 4)
	first, found := server.Get("1")
	require.True(t, found)
	assert.Equal(t, "edited elsewhere", first.Notes)
	assert.Equal(t, stored, server.All())
}

func TestMilestones_Remove_SeesRecordAddedElsewhere(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()
	server := openMilestones(t, backend)
	other := store.OpenMilestones(ctx, backend,
		store.WithClock(func() time.Time { return now }),
		store.WithIDGenerator(func() string { return "other-1" }))

	_, err := other.Add(ctx, milestoneFixture())
	require.NoError(t, err)

	ok, err := server.Remove(ctx, "other-1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, server.All(), 3)
}

func TestMilestones_Sync(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()
	server := openMilestones(t, backend)
	admin := openMilestones(t, backend)

	var notified int
	cancel := server.Subscribe(func([]domain.Milestone) { notified++ })
	defer cancel()

	assert.False(t, server.Sync(ctx), "nothing changed yet")

	_, err := admin.Remove(ctx, "2")
	require.NoError(t, err)

	assert.True(t, server.Sync(ctx))
	assert.Len(t, server.All(), 2)
	assert.Equal(t, 1, notified)
	assert.False(t, server.Sync(ctx))
}

func TestMilestones_Sync_KeepsUnpersistedChanges(t *testing.T) {
	backend := newFlakyBackend()
	ctx := context.Background()
	s := openMilestones(t, backend)
	backend.failSet = true
	_, err := s.Add(ctx, milestoneFixture())
	require.NoError(t, err)

	assert.False(t, s.Sync(ctx))
	assert.Len(t, s.All(), 4)
}

func TestOpenMilestones_EmptyListIsNotReseeded(t *testing.T) {
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(context.Background(), store.MilestonesKey, []byte(`[]`)))

	s := openMilestones(t, backend)

	assert.Empty(t, s.All())
	assert.NotNil(t, s.All())
}

func TestMilestones_Add(t *testing.T) {
	backend := kv.NewMemory()
	s := openMilestones(t, backend)
	before := len(s.All())

	got, err := s.Add(context.Background(), milestoneFixture())

	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Nil(t, got.UpdatedAt)

	all := s.All()
	require.Len(t, all, before+1)
	assert.Equal(t, got, all[0], "new milestones go to the front")

	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	require.Len(t, stored, before+1)
	assert.Equal(t, got, stored[0])
}

func TestMilestones_Add_KeepsCallerIDAndCreatedAt(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	m := milestoneFixture()
	m.ID = "1717171717171"
	m.CreatedAt = now.Add(-time.Hour)

	got, err := s.Add(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, "1717171717171", got.ID)
	assert.Equal(t, now.Add(-time.Hour), got.CreatedAt)
}

func TestMilestones_Add_ReplacesTakenID(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	m := milestoneFixture()
	m.ID = "1" // taken by the seed data

	got, err := s.Add(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
}

func TestMilestones_Add_DefaultsCategory(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	m := milestoneFixture()
	m.Category = ""

	got, err := s.Add(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGeneral, got.Category)
}

// The store does not validate: blank titles are the caller's problem.
func TestMilestones_Add_IsPermissive(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())

	got, err := s.Add(context.Background(), domain.Milestone{})

	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Equal(t, got, s.All()[0])
}

func TestMilestones_Add_PersistFailureKeepsMemoryState(t *testing.T) {
	backend := newFlakyBackend()
	s := openMilestones(t, backend)
	backend.failSet = true

	got, err := s.Add(context.Background(), milestoneFixture())

	require.NoError(t, err, "write failures are swallowed")
	assert.Equal(t, got, s.All()[0])

	var stored []domain.Milestone
	persisted(t, backend, store.MilestonesKey, &stored)
	assert.Len(t, stored, 3, "backend still holds the seed data")
}

func TestMilestones_Add_CancelledDuringLatency(t *testing.T) {
	s := store.OpenMilestones(context.Background(), kv.NewMemory(),
		append(testOptions(), store.WithLatency(store.Latency{Add: time.Hour}))...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Add(ctx, milestoneFixture())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.All(), 3, "nothing is stored")
}

func TestMilestones_Add_WithLatency(t *testing.T) {
	s := store.OpenMilestones(context.Background(), kv.NewMemory(),
		append(testOptions(), store.WithLatency(store.Latency{Add: time.Millisecond}))...)

	got, err := s.Add(context.Background(), milestoneFixture())

	require.NoError(t, err)
	assert.Equal(t, got, s.All()[0])
}

func TestMilestones_Update(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	title := "First ultrasound (12 weeks)"
	cat := domain.CategoryEmotional

	got, ok, err := s.Update(context.Background(), "3", domain.MilestonePatch{Title: &title, Category: &cat})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", got.ID)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, cat, got.Category)
	assert.Equal(t, "Amazing to see the baby for the first time! Heart rate looks perfect.", got.Notes)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, now, *got.UpdatedAt)

	stored, found := s.Get("3")
	require.True(t, found)
	assert.Equal(t, got, stored)
	assert.Equal(t, "3", s.All()[2].ID, "update keeps the record in place")
}

func TestMilestones_Update_UnknownIDLeavesBlobUnchanged(t *testing.T) {
	backend := kv.NewMemory()
	s := openMilestones(t, backend)
	before := rawBlob(t, backend, store.MilestonesKey)
	title := "ghost"

	_, ok, err := s.Update(context.Background(), "does-not-exist", domain.MilestonePatch{Title: &title})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, rawBlob(t, backend, store.MilestonesKey))
	assert.Equal(t, seed.Milestones(now), s.All())
}

func TestMilestones_Update_DoesNotAlterEarlierSnapshots(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	snap := s.All()
	notes := "changed"

	_, _, err := s.Update(context.Background(), "1", domain.MilestonePatch{Notes: &notes})

	require.NoError(t, err)
	assert.Equal(t, "Everything looks good! Due date confirmed.", snap[0].Notes)
}

func TestMilestones_Remove_IsIdempotent(t *testing.T) {
	backend := kv.NewMemory()
	s := openMilestones(t, backend)

	ok, err := s.Remove(context.Background(), "2")
	require.NoError(t, err)
	assert.True(t, ok)
	afterFirst := rawBlob(t, backend, store.MilestonesKey)

	ok, err = s.Remove(context.Background(), "2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, afterFirst, rawBlob(t, backend, store.MilestonesKey))

	ids := []string{}
	for _, m := range s.All() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestMilestones_ByCategory(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())

	medical := s.ByCategory(domain.CategoryMedical)
	emotional := s.ByCategory(domain.CategoryEmotional)

	require.Len(t, medical, 2)
	assert.Equal(t, "1", medical[0].ID)
	assert.Equal(t, "3", medical[1].ID)
	assert.NotNil(t, emotional)
	assert.Empty(t, emotional)
}

func TestMilestones_ByDateRange_Inclusive(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())

	// Seed dates: id 1 at -14d, id 2 at -21d, id 3 at -7d.
	got := s.ByDateRange(now.AddDate(0, 0, -21), now.AddDate(0, 0, -14))

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestMilestones_RoundTrip(t *testing.T) {
	backend := kv.NewMemory()
	first := openMilestones(t, backend)
	_, err := first.Add(context.Background(), milestoneFixture())
	require.NoError(t, err)
	notes := "edited"
	_, _, err = first.Update(context.Background(), "2", domain.MilestonePatch{Notes: &notes})
	require.NoError(t, err)

	second := openMilestones(t, backend)

	assert.Equal(t, first.All(), second.All())
}

func TestMilestones_Subscribe(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())

	var sizes []int
	cancel := s.Subscribe(func(all []domain.Milestone) { sizes = append(sizes, len(all)) })

	_, err := s.Add(context.Background(), milestoneFixture())
	require.NoError(t, err)
	_, err = s.Remove(context.Background(), "does-not-exist")
	require.NoError(t, err)
	_, err = s.Remove(context.Background(), "1")
	require.NoError(t, err)

	cancel()
	_, err = s.Add(context.Background(), milestoneFixture())
	require.NoError(t, err)

	assert.Equal(t, []int{4, 3}, sizes, "no-ops do not notify; cancelled subscribers hear nothing")
}

func TestMilestones_Reset(t *testing.T) {
	s := openMilestones(t, kv.NewMemory())
	_, err := s.Add(context.Background(), milestoneFixture())
	require.NoError(t, err)

	require.NoError(t, s.Reset(context.Background()))

	assert.Equal(t, seed.Milestones(now), s.All())
}
