package tokens

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/subcue/internal/types"
)

const cloudWithSpeakers = `{
  "results": {
    "items": [
      {"start_time": "0.0", "end_time": "0.5", "type": "pronunciation", "alternatives": [{"content": "Hello"}]},
      {"start_time": "0.5", "end_time": "0.9", "type": "pronunciation", "alternatives": [{"content": "there"}]},
      {"type": "punctuation", "alternatives": [{"content": ","}]},
      {"start_time": "2.0", "end_time": "2.4", "type": "pronunciation", "alternatives": [{"content": "Bob"}]},
      {"start_time": "3.0", "end_time": "3.2", "type": "pronunciation", "alternatives": [{"content": "ok"}]}
    ],
    "speaker_labels": {
      "segments": [
        {"speaker_label": "spk_0", "items": [{"start_time": "0.0"}, {"start_time": "0.50"}]},
        {"speaker_label": "spk_1", "items": [{"start_time": "2.0"}]}
      ]
    }
  }
}`

func TestNormalize_CloudWithSpeakers(t *testing.T) {
	res, err := Normalize([]byte(cloudWithSpeakers))
	require.NoError(t, err)

	assert.Equal(t, ShapeCloud, res.Shape)
	assert.True(t, res.HasSpeakerLabels)
	require.Len(t, res.Tokens, 4)

	assert.Equal(t, "there,", res.Tokens[1].Content)
	assert.Equal(t, []string{"spk_0", "spk_0", "spk_1", DefaultSpeaker},
		[]string{res.Tokens[0].SpeakerID, res.Tokens[1].SpeakerID, res.Tokens[2].SpeakerID, res.Tokens[3].SpeakerID})
	assert.InDelta(t, 2.0, res.Tokens[2].Start, 1e-9)
	assert.InDelta(t, 2.4, res.Tokens[2].End, 1e-9)
	assert.Empty(t, res.Skipped)
}

func TestNormalize_CloudItemSpeakerLabelAndNumericTimes(t *testing.T) {
	raw := `{"results": {"items": [
		{"id": 0, "start_time": 1.5, "end_time": 1.75, "type": "pronunciation", "speaker_label": "spk_3", "alternatives": [{"content": "hi"}]}
	]}}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.True(t, res.HasSpeakerLabels)
	assert.Equal(t, "spk_3", res.Tokens[0].SpeakerID)
	assert.InDelta(t, 1.75, res.Tokens[0].End, 1e-9)
}

func TestNormalize_CloudSpeakerByID(t *testing.T) {
	raw := `{"results": {
		"items": [
			{"id": 7, "start_time": "0.0", "end_time": "0.4", "type": "pronunciation", "alternatives": [{"content": "yo"}]}
		],
		"speaker_labels": {"segments": [{"speaker_label": "spk_2", "items": [{"item_id": "7", "start_time": "9.9"}]}]}
	}}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "spk_2", res.Tokens[0].SpeakerID)
}

func TestNormalize_CloudWithoutSpeakers(t *testing.T) {
	raw := `{"results": {"items": [
		{"start_time": "0.0", "end_time": "0.3", "type": "pronunciation", "alternatives": [{"content": "one"}]},
		{"start_time": "0.4", "end_time": "0.6", "type": "pronunciation", "alternatives": [{"content": "two"}]}
	]}}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.False(t, res.HasSpeakerLabels)
	for _, tok := range res.Tokens {
		assert.Empty(t, tok.SpeakerID)
	}
}

func TestNormalize_SkipsMalformedItems(t *testing.T) {
	raw := `{"results": {"items": [
		{"type": "punctuation", "alternatives": [{"content": "."}]},
		{"start_time": "0.0", "end_time": "0.3", "type": "pronunciation", "alternatives": [{"content": "fine"}]},
		{"end_time": "0.6", "type": "pronunciation", "alternatives": [{"content": "nostart"}]},
		{"start_time": "0.7", "end_time": "0.9", "type": "pronunciation", "alternatives": []},
		{"start_time": "1.2", "end_time": "1.0", "type": "pronunciation", "alternatives": [{"content": "backwards"}]},
		{"start_time": "abc", "end_time": "1.4", "type": "pronunciation", "alternatives": [{"content": "garbled"}]},
		{"start_time": "1.5", "end_time": "1.8", "type": "pronunciation", "alternatives": [{"content": "done"}]}
	]}}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)

	require.Len(t, res.Tokens, 2)
	assert.Equal(t, "fine", res.Tokens[0].Content)
	assert.Equal(t, "done", res.Tokens[1].Content)

	reasons := make([]string, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		reasons = append(reasons, s.Reason)
		assert.True(t, errors.Is(s, types.ErrMalformedToken))
	}
	assert.Equal(t, []string{
		ReasonOrphanPunctuation,
		ReasonMissingTimestamps,
		ReasonEmptyContent,
		ReasonInvertedTimestamps,
		ReasonMissingTimestamps,
	}, reasons)
}

func TestNormalize_LocalSegmentsProportionalTiming(t *testing.T) {
	raw := `{"segments": [{"start": 1.0, "end": 2.0, "text": " ab cd , "}]}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, ShapeLocal, res.Shape)
	assert.False(t, res.HasSpeakerLabels)
	require.Len(t, res.Tokens, 2)
	assert.Equal(t, "ab", res.Tokens[0].Content)
	assert.Equal(t, "cd,", res.Tokens[1].Content)
	assert.InDelta(t, 1.0, res.Tokens[0].Start, 1e-9)
	assert.InDelta(t, 1.4, res.Tokens[0].End, 1e-9)
	assert.InDelta(t, 1.4, res.Tokens[1].Start, 1e-9)
	assert.InDelta(t, 1.8, res.Tokens[1].End, 1e-9)
	assert.Empty(t, res.Tokens[0].SpeakerID)
}

func TestNormalize_LocalWordsPreferred(t *testing.T) {
	raw := `{"segments": [{"start": 0, "end": 3, "text": "a b", "words": [
		{"start": 0.1, "end": 0.2, "word": " a"},
		{"start": 2.5, "end": 2.9, "word": "b "}
	]}]}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 2)
	assert.Equal(t, "a", res.Tokens[0].Content)
	assert.InDelta(t, 2.5, res.Tokens[1].Start, 1e-9)
}

func TestNormalize_WhisperCPPTranscription(t *testing.T) {
	raw := `{"transcription": [
		{"offsets": {"from": 0, "to": 400}, "text": " Hello"},
		{"offsets": {"from": 400, "to": 500}, "text": "[BLANK_AUDIO]"},
		{"offsets": {"from": 600, "to": 1000}, "text": " world."}
	]}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 2)
	assert.Equal(t, "world.", res.Tokens[1].Content)
	assert.InDelta(t, 0.6, res.Tokens[1].Start, 1e-9)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, ReasonEmptyContent, res.Skipped[0].Reason)
}

func TestNormalize_ComposesUnicode(t *testing.T) {
	raw := `{"segments": [{"start": 0, "end": 1, "text": "cafe\u0301"}]}`
	res, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "caf\u00e9", res.Tokens[0].Content)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{"results": [`, types.ErrInvalidTranscript},
		{"array", `[1,2,3]`, types.ErrInvalidTranscript},
		{"unknown shape", `{"foo": 1}`, types.ErrInvalidTranscript},
		{"results wrong type", `{"results": "x"}`, types.ErrInvalidTranscript},
		{"no items", `{"results": {"items": []}}`, types.ErrEmptyTranscript},
		{"only junk", `{"segments": [{"text": "hi"}]}`, types.ErrEmptyTranscript},
		{"out of order", `{"segments": [{"start": 5, "end": 6, "text": "b"}, {"start": 1, "end": 2, "text": "a"}]}`, types.ErrInvalidTranscript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsPunctuation(t *testing.T) {
	assert.True(t, IsPunctuation(","))
	assert.True(t, IsPunctuation("?!"))
	assert.False(t, IsPunctuation("a,"))
	assert.False(t, IsPunctuation("42"))
	assert.False(t, IsPunctuation(""))
}
