package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowreach/outreach-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testClient(platform model.Platform) model.Client {
	return model.Client{
		Name:        "Beauty Brand Co",
		Role:        "owner",
		Email:       "hello@example.com",
		Platform:    platform,
		SearchTerms: []string{"beauty", "skincare"},
		Profession:  "lifestyle blogger",
		Location:    "New York",
	}
}

func TestSQLite_CreateAndGetClient(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	created, err := s.CreateClient(ctx, testClient(model.PlatformInstagram))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.ClientStatusRegistered, created.Status)

	got, err := s.GetClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beauty Brand Co", got.Name)
	assert.Equal(t, model.PlatformInstagram, got.Platform)
	assert.Equal(t, []string{"beauty", "skincare"}, got.SearchTerms)
	assert.Nil(t, got.DataFetchedAt)
}

func TestSQLite_GetClient_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetClient(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_MarkDataFetched(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformLinkedIn))
	require.NoError(t, err)

	require.NoError(t, s.MarkDataFetched(ctx, c.ID, 7))
	require.NoError(t, s.MarkDataFetched(ctx, c.ID, 3))

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusDataFetched, got.Status)
	assert.Equal(t, 10, got.ProfileCount)
	assert.NotNil(t, got.DataFetchedAt)
}

func TestSQLite_MarkMessagesGenerated(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformFacebook))
	require.NoError(t, err)

	require.NoError(t, s.MarkMessagesGenerated(ctx, c.ID, "Hi there!"))

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusMessagesGenerated, got.Status)
	assert.Equal(t, "Hi there!", got.GeneratedMessage)
	assert.NotNil(t, got.MessagesGeneratedAt)
}

func TestSQLite_InsertAudience_Dedup(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformInstagram))
	require.NoError(t, err)

	rec := model.AudienceRecord{
		ClientID:  c.ID,
		Platform:  model.PlatformInstagram,
		UniqueKey: "post-abc",
		FetchedAt: time.Now().UTC(),
		Payload:   model.RawRecord{"caption": "glow up", "likesCount": float64(15)},
	}

	inserted, err := s.InsertAudience(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same (client, platform, unique_key) must be ignored.
	rec.ID = ""
	inserted, err = s.InsertAudience(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := s.CountAudience(ctx, c.ID, model.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_InsertAudience_SameKeyDifferentPlatform(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformInstagram))
	require.NoError(t, err)

	for _, p := range []model.Platform{model.PlatformInstagram, model.PlatformFacebook} {
		inserted, err := s.InsertAudience(ctx, model.AudienceRecord{
			ClientID:  c.ID,
			Platform:  p,
			UniqueKey: "shared-key",
			FetchedAt: time.Now().UTC(),
			Payload:   model.RawRecord{"name": "x"},
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	}
}

func TestSQLite_HasAudience(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformFacebook))
	require.NoError(t, err)

	ok, err := s.HasAudience(ctx, c.ID, model.PlatformFacebook, "page-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.InsertAudience(ctx, model.AudienceRecord{
		ClientID:  c.ID,
		Platform:  model.PlatformFacebook,
		UniqueKey: "page-1",
		FetchedAt: time.Now().UTC(),
		Payload:   model.RawRecord{"name": "Glow Spa"},
	})
	require.NoError(t, err)

	ok, err = s.HasAudience(ctx, c.ID, model.PlatformFacebook, "page-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_ListAudience_PayloadRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformInstagram))
	require.NoError(t, err)

	payload := model.RawRecord{
		"caption":    "new serum drop #skincare",
		"hashtags":   []any{"skincare", "beauty"},
		"likesCount": float64(42),
		"ownerId":    "991",
	}
	_, err = s.InsertAudience(ctx, model.AudienceRecord{
		ClientID:  c.ID,
		Platform:  model.PlatformInstagram,
		UniqueKey: "k1",
		FetchedAt: time.Now().UTC(),
		Payload:   payload,
	})
	require.NoError(t, err)

	records, err := s.ListAudience(ctx, AudienceFilter{ClientID: c.ID, Platform: model.PlatformInstagram})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, payload, records[0].Payload)
	assert.Equal(t, "k1", records[0].UniqueKey)
}

func TestSQLite_ListAudience_Limit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, testClient(model.PlatformLinkedIn))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.InsertAudience(ctx, model.AudienceRecord{
			ClientID:  c.ID,
			Platform:  model.PlatformLinkedIn,
			UniqueKey: string(rune('a' + i)),
			FetchedAt: time.Now().UTC(),
			Payload:   model.RawRecord{"fullName": "p"},
		})
		require.NoError(t, err)
	}

	records, err := s.ListAudience(ctx, AudienceFilter{ClientID: c.ID, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
