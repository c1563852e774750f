package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "Hi "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "there"},
		},
	}
	assert.Equal(t, "Hi there", resp.Text())
}

func TestEstimateCost_KnownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	cost := u.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, u.EstimateCost("some-future-model"))
}

func TestEstimateCost_CacheTokens(t *testing.T) {
	u := TokenUsage{CacheCreationInputTokens: 1_000_000, CacheReadInputTokens: 1_000_000}
	cost := u.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80*1.25+0.80*0.1, cost, 0.001)
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("You write outreach messages.")
	require.Len(t, blocks, 1)
	assert.Equal(t, "You write outreach messages.", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestMockClient_RoundTrip(t *testing.T) {
	mockClient := new(MockClient)
	want := &MessageResponse{
		ID:      "msg_1",
		Content: []ContentBlock{{Type: "text", Text: "hello"}},
	}
	mockClient.On("CreateMessage", mock.Anything, mock.Anything).Return(want, nil)

	got, err := mockClient.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 800,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	mockClient.AssertExpectations(t)
}
