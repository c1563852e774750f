package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/config"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
	"github.com/glowreach/outreach-cli/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// MockEngine implements anthropic.Client for testing.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:       "claude-haiku-4-5-20251001",
			MaxTokens:   800,
			Temperature: 0.7,
			TimeoutSecs: 30,
		},
		Pipeline: config.PipelineConfig{MaxIterations: 3},
	}
}

func newChainStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "chain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedClient(t *testing.T, s store.Store, platform model.Platform, terms []string) *model.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), model.Client{
		Name:        "Glow Beauty",
		Role:        "founder",
		Platform:    platform,
		SearchTerms: terms,
	})
	require.NoError(t, err)
	return c
}

func seedAudience(t *testing.T, s store.Store, clientID string, platform model.Platform, key string, payload model.RawRecord) {
	t.Helper()
	inserted, err := s.InsertAudience(context.Background(), model.AudienceRecord{
		ClientID:  clientID,
		Platform:  platform,
		UniqueKey: key,
		FetchedAt: time.Now().UTC(),
		Payload:   payload,
	})
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestChain_HappyPath(t *testing.T) {
	s := newChainStore(t)
	c := seedClient(t, s, model.PlatformInstagram, []string{"beauty"})
	seedAudience(t, s, c.ID, model.PlatformInstagram, "p1", model.RawRecord{
		"ownerUsername": "glowgal",
		"caption":       "Beauty routine before work",
		"hashtags":      []any{"beauty", "skincare"},
		"likesCount":    float64(40),
		"commentsCount": float64(9),
	})

	engine := new(MockEngine)
	engine.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		prompt := req.Messages[0].Content
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 800 &&
			*req.Temperature == 0.7 &&
			strings.Contains(prompt, "glowgal") && strings.Contains(prompt, "beauty")
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Hi glowgal! Loved your beauty routine post."}},
	}, nil)

	chain := New(testConfig(), s, engine)
	res, err := chain.Run(context.Background(), c.ID, model.PlatformInstagram)
	require.NoError(t, err)

	assert.Equal(t, "Hi glowgal! Loved your beauty routine post.", res.Message)
	assert.Equal(t, "glowgal", res.Target)
	assert.Contains(t, res.Rationale, "glowgal")
	assert.False(t, res.InsufficientData)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, res.Stages, 3)
	for _, st := range res.Stages {
		assert.Equal(t, model.StageStatusComplete, st.Status)
	}

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusMessagesGenerated, got.Status)
	assert.Equal(t, res.Message, got.GeneratedMessage)
	engine.AssertExpectations(t)
}

func TestChain_NoCandidatePropagation(t *testing.T) {
	s := newChainStore(t)
	c := seedClient(t, s, model.PlatformFacebook, []string{"beauty"})

	engine := new(MockEngine)
	chain := New(testConfig(), s, engine)

	res, err := chain.Run(context.Background(), c.ID, "")
	require.NoError(t, err)

	assert.True(t, res.InsufficientData)
	assert.Contains(t, res.Message, "insufficient facebook data")
	// No fabricated username.
	assert.Empty(t, res.Target)
	// The engine is never consulted for an absence acknowledgment.
	engine.AssertNotCalled(t, "CreateMessage")

	// Client status is untouched.
	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusRegistered, got.Status)
}

func TestChain_PlatformMismatchFailsFast(t *testing.T) {
	s := newChainStore(t)
	c := seedClient(t, s, model.PlatformInstagram, nil)

	engine := new(MockEngine)
	chain := New(testConfig(), s, engine)

	res, err := chain.Run(context.Background(), c.ID, model.PlatformLinkedIn)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrChainValidation)
	require.Len(t, res.Stages, 1)
	assert.Equal(t, model.StageStatusFailed, res.Stages[0].Status)
	assert.Zero(t, res.Attempts)
	engine.AssertNotCalled(t, "CreateMessage")
}

func TestChain_BudgetExceeded(t *testing.T) {
	s := newChainStore(t)
	c := seedClient(t, s, model.PlatformInstagram, []string{"beauty"})
	seedAudience(t, s, c.ID, model.PlatformInstagram, "p1", model.RawRecord{
		"ownerId": "1", "caption": "beauty post",
	})

	engine := new(MockEngine)
	engine.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	chain := New(testConfig(), s, engine)
	res, err := chain.Run(context.Background(), c.ID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrChainBudgetExceeded)
	assert.Equal(t, 3, res.Attempts)
	engine.AssertNumberOfCalls(t, "CreateMessage", 3)
}

func TestChain_RetriesTransientEngineFailure(t *testing.T) {
	s := newChainStore(t)
	c := seedClient(t, s, model.PlatformInstagram, []string{"beauty"})
	seedAudience(t, s, c.ID, model.PlatformInstagram, "p1", model.RawRecord{
		"ownerId": "1", "caption": "beauty post",
	})

	engine := new(MockEngine)
	engine.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()
	engine.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "Hello!"}},
		}, nil).Once()

	chain := New(testConfig(), s, engine)
	res, err := chain.Run(context.Background(), c.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "Hello!", res.Message)
}

func TestChain_UnknownClient(t *testing.T) {
	s := newChainStore(t)
	chain := New(testConfig(), s, new(MockEngine))
	_, err := chain.Run(context.Background(), "missing", "")
	require.Error(t, err)
}

