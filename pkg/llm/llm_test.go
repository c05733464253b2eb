package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel 按顺序返回预置应答
type fakeModel struct {
	replies []string
	calls   int
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if f.calls >= len(f.replies) {
		return nil, errors.New("no more replies")
	}
	content := f.replies[f.calls]
	f.calls++
	return &schema.Message{Role: schema.Assistant, Content: content}, nil
}

func (f *fakeModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (f *fakeModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

type reply struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

func TestCompleteDecodesFencedJSON(t *testing.T) {
	cm := &fakeModel{replies: []string{"```json\n{\"answer\": \"ok\", \"score\": 8}\n```"}}

	out, err := Complete[reply](context.Background(), cm, nil, "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Answer)
	assert.Equal(t, 8, out.Score)
}

func TestCompleteRetriesOnBadJSON(t *testing.T) {
	cm := &fakeModel{replies: []string{"这不是 JSON", `{"answer": "second", "score": 1}`}}

	out, err := Complete[reply](context.Background(), cm, nil, "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "second", out.Answer)
	assert.Equal(t, 2, cm.calls)
}

func TestCompleteGivesUpAfterRetries(t *testing.T) {
	cm := &fakeModel{replies: []string{"bad", "bad", "bad", "bad", "bad"}}

	_, err := Complete[reply](context.Background(), cm, nil, "system", "user")
	require.Error(t, err)
	assert.Equal(t, maxRetries+1, cm.calls)
}

func TestStripJSONFence(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                  `{"a":1}`,
		"```json\n{\"a\":1}\n```":    `{"a":1}`,
		"```\n{\"a\":1}\n```":        `{"a":1}`,
		"  \n```json\n{\"a\":1}```\t": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripJSONFence(in))
	}
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(errors.New("status 429")))
	assert.True(t, isRateLimited(errors.New("Too Many Requests")))
	assert.False(t, isRateLimited(errors.New("connection refused")))
}
