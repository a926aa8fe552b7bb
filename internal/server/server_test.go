package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/subcue/internal/config"
	"github.com/forPelevin/subcue/internal/taskstore"
	"github.com/forPelevin/subcue/internal/usecase"
)

const transcript = `{
  "results": {
    "items": [
      {"start_time": "0.0", "end_time": "0.5", "type": "pronunciation", "alternatives": [{"content": "Hello"}]},
      {"start_time": "0.5", "end_time": "0.9", "type": "pronunciation", "alternatives": [{"content": "there"}]},
      {"type": "punctuation", "alternatives": [{"content": ","}]},
      {"start_time": "2.0", "end_time": "2.4", "type": "pronunciation", "alternatives": [{"content": "Bob"}]}
    ],
    "speaker_labels": {
      "segments": [
        {"speaker_label": "spk_0", "items": [{"start_time": "0.0"}, {"start_time": "0.5"}]},
        {"speaker_label": "spk_1", "items": [{"start_time": "2.0"}]}
      ]
    }
  }
}`

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := config.Default()
	opts := Options{
		Usecase: usecase.New(usecase.Deps{}, usecase.Capabilities{}),
		Template: usecase.Input{
			Style:         app.Style,
			Segment:       app.SegmentOptions(),
			Merge:         app.MergeOptions(),
			Position:      app.PositionOptions(),
			SamplesPerCue: app.Position.SamplesPerCue,
		},
	}
	if withStore {
		store, err := taskstore.Open(filepath.Join(t.TempDir(), "tasks.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		opts.Store = store
	}
	return New(opts)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestSubtitles_SRTAndTaskHistory(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/subtitles", map[string]any{
		"transcript": json.RawMessage(transcript),
		"format":     "srt",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:01,000\nHello there,\n\n2\n00:00:02,000 --> 00:00:03,000\n-- Bob\n\n",
		w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/x-subrip"), w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	id := w.Header().Get("X-Task-ID")
	require.NotEmpty(t, id)
	w = do(t, s, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var task taskstore.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, taskstore.StatusCompleted, task.Status)
	assert.Equal(t, 2, task.CueCount)
	assert.Equal(t, "api", task.Source)
}

func TestSubtitles_TranscriptAsStringAndRegions(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodPost, "/api/v1/subtitles", map[string]any{
		"transcript":   transcript,
		"format":       "vtt",
		"frame_height": 1000,
		"regions": []map[string]any{
			{"timestamp": 0.5, "confidence": 95, "box": map[string]int{"x": 100, "y": 900, "w": 800, "h": 60}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "WEBVTT"))
	assert.Contains(t, body, "00:00:00.000 --> 00:00:01.000 line:10% align:center")
	assert.Contains(t, body, "00:00:02.000 --> 00:00:03.000\n")
	assert.Empty(t, w.Header().Get("X-Task-ID"))
}

func TestSubtitles_StyleOverlay(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodPost, "/api/v1/subtitles", map[string]any{
		"transcript": json.RawMessage(transcript),
		"format":     "ass",
		"style":      map[string]any{"font_name": "Helvetica", "font_size": 64},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Helvetica,64,")
	assert.Contains(t, w.Body.String(), "[Events]")
}

func TestSubtitles_Errors(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing transcript", map[string]any{"format": "srt"}, http.StatusBadRequest},
		{"unknown format", map[string]any{"transcript": json.RawMessage(transcript), "format": "sub"}, http.StatusBadRequest},
		{"invalid transcript", map[string]any{"transcript": json.RawMessage(`[1,2]`)}, http.StatusBadRequest},
		{"empty transcript", map[string]any{"transcript": json.RawMessage(`{"results":{"items":[]}}`)}, http.StatusUnprocessableEntity},
		{"negative frame height", map[string]any{"transcript": json.RawMessage(transcript), "frame_height": -1}, http.StatusBadRequest},
		{"bad style", map[string]any{"transcript": json.RawMessage(transcript), "style": "big"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/subtitles", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	w := do(t, s, http.MethodGet, "/api/v1/tasks?status=failed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tasks []taskstore.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 2)
	for _, task := range list.Tasks {
		assert.Equal(t, taskstore.StatusFailed, task.Status)
		assert.NotEmpty(t, task.Message)
	}
}

func TestSubtitles_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, false)
	s = New(Options{Usecase: s.opts.Usecase, Template: s.opts.Template, MaxBodyBytes: 64})

	w := do(t, s, http.MethodPost, "/api/v1/subtitles", map[string]any{"transcript": json.RawMessage(transcript)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestTasks(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodGet, "/api/v1/tasks/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/tasks?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/tasks?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[]}`, w.Body.String())
}

func TestTasks_HistoryDisabled(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodGet, "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, s, http.MethodGet, "/api/v1/tasks/abc", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status       string          `json:"status"`
		Capabilities map[string]bool `json:"capabilities"`
		TaskHistory  bool            `json:"task_history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.Capabilities["asr"])
	assert.True(t, health.TaskHistory)

	do(t, s, http.MethodPost, "/api/v1/subtitles", map[string]any{"transcript": json.RawMessage(transcript)})
	w = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "subcue_tasks_total")
}
