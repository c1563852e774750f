package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// MockSource implements Source for testing.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Fetch(ctx context.Context, platform model.Platform, terms []string, profession, location string) ([]model.RawRecord, error) {
	args := m.Called(ctx, platform, terms, profession, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawRecord), args.Error(1)
}

func newIngestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func registerClient(t *testing.T, s store.Store, platform model.Platform) *model.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), model.Client{
		Name:        "Glow Beauty",
		Platform:    platform,
		SearchTerms: []string{"beauty"},
	})
	require.NoError(t, err)
	return c
}

func TestRun_StoresAndMarksFetched(t *testing.T) {
	s := newIngestStore(t)
	c := registerClient(t, s, model.PlatformInstagram)

	src := new(MockSource)
	src.On("Fetch", mock.Anything, model.PlatformInstagram, []string{"beauty"}, "", "").
		Return([]model.RawRecord{
			{"id": "p1", "caption": "one"},
			{"id": "p2", "caption": "two"},
			{}, // empty records are rejected before storage
		}, nil)

	ing := NewIngestor(s, src, time.Minute)
	res, err := ing.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 0, res.Skipped)

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusDataFetched, got.Status)
	assert.Equal(t, 2, got.ProfileCount)
	src.AssertExpectations(t)
}

func TestRun_IdempotentRerun(t *testing.T) {
	s := newIngestStore(t)
	c := registerClient(t, s, model.PlatformInstagram)

	records := []model.RawRecord{
		{"id": "p1", "caption": "one"},
		{"id": "p2", "caption": "two"},
	}
	src := new(MockSource)
	src.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(records, nil)

	ing := NewIngestor(s, src, time.Minute)

	first, err := ing.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Stored)

	// Unchanged upstream set: second run stores nothing new.
	second, err := ing.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 2, second.Skipped)

	n, err := s.CountAudience(context.Background(), c.ID, model.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_ZeroRecordsStillMarksFetched(t *testing.T) {
	s := newIngestStore(t)
	c := registerClient(t, s, model.PlatformLinkedIn)

	src := new(MockSource)
	src.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.RawRecord{}, nil)

	ing := NewIngestor(s, src, time.Minute)
	res, err := ing.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, res.Stored)

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusDataFetched, got.Status)
}

func TestRun_UnsupportedPlatformShortCircuits(t *testing.T) {
	s := newIngestStore(t)

	src := new(MockSource)
	ing := NewIngestor(s, src, time.Minute)

	_, err := ing.Run(context.Background(), &model.Client{
		ID:       "c1",
		Platform: model.Platform("myspace"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnsupportedPlatform)
	// No fetch attempted, no store mutation.
	src.AssertNotCalled(t, "Fetch")
}

func TestRun_SourceFailureLeavesStatusUnchanged(t *testing.T) {
	s := newIngestStore(t)
	c := registerClient(t, s, model.PlatformFacebook)

	src := new(MockSource)
	src.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, model.ErrSourceUnavailable)

	ing := NewIngestor(s, src, time.Minute)
	_, err := ing.Run(context.Background(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusRegistered, got.Status)
}

func TestSweepAll_FailureDoesNotAbortBatch(t *testing.T) {
	s := newIngestStore(t)
	bad := registerClient(t, s, model.PlatformInstagram)
	good := registerClient(t, s, model.PlatformFacebook)

	src := new(MockSource)
	src.On("Fetch", mock.Anything, model.PlatformInstagram, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, model.ErrSourceUnavailable)
	src.On("Fetch", mock.Anything, model.PlatformFacebook, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.RawRecord{{"name": "Glow Spa", "about": "spa"}}, nil)

	ing := NewIngestor(s, src, time.Minute)
	require.NoError(t, ing.SweepAll(context.Background(), 2))

	gotBad, err := s.GetClient(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusRegistered, gotBad.Status)

	gotGood, err := s.GetClient(context.Background(), good.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusDataFetched, gotGood.Status)
}
