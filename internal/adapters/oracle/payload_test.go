package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare array", `[{"title":"a"}]`, `[{"title":"a"}]`},
		{"json fence", "```json\n[{\"title\":\"a\"}]\n```", `[{"title":"a"}]`},
		{"plain fence", "```\n[1]\n```", `[1]`},
		{"prose around array", "Here you go:\n[1, 2]\nGood luck!", `[1, 2]`},
		{"object", `{"steps": []}`, `{"steps": []}`},
		{"no json", "sorry, I cannot help", "sorry, I cannot help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

func TestDecodeSteps_FencedArray(t *testing.T) {
	text := "```json\n[\n" +
		`{"title": "Walk", "description": "Go outside", "order": 1, "xp_reward": 60, "coin_reward": 5},` + "\n" +
		`{"title": "Run", "description": "Go faster", "order": 2}` +
		"\n]\n```"

	drafts, err := DecodeSteps(text)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Walk", drafts[0].Title)
	assert.Equal(t, 1, drafts[0].Order)
	require.NotNil(t, drafts[0].XPReward)
	assert.Equal(t, 60, *drafts[0].XPReward)
	require.NotNil(t, drafts[0].CoinReward)
	assert.Equal(t, 5, *drafts[0].CoinReward)

	assert.Nil(t, drafts[1].XPReward)
	assert.Nil(t, drafts[1].CoinReward)
}

func TestDecodeSteps_WrappedObject(t *testing.T) {
	drafts, err := DecodeSteps(`{"steps": [{"title": "Budget", "order": 1}]}`)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Budget", drafts[0].Title)
}

func TestDecodeSteps_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "I am unable to comply"},
		{"truncated", `[{"title": "Walk"`},
		{"object without steps", `{"title": "Walk"}`},
		{"wrong field type", `[{"title": "Walk", "order": "first"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSteps(tt.text)
			assert.Error(t, err)
		})
	}
}
