package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/subcue/internal/domain/subtitles"
	"github.com/forPelevin/subcue/internal/logging"
	"github.com/forPelevin/subcue/internal/metrics"
	"github.com/forPelevin/subcue/internal/taskstore"
	"github.com/forPelevin/subcue/internal/types"
	"github.com/forPelevin/subcue/internal/usecase"
)

const defaultTaskLimit = 50

type subtitleRequest struct {
	// Transcript is the transcript document, inline or as a JSON string.
	Transcript     json.RawMessage    `json:"transcript"`
	Format         string             `json:"format"`
	Regions        []types.TextRegion `json:"regions"`
	FrameHeight    int                `json:"frame_height"`
	Style          json.RawMessage    `json:"style"`
	Cleanup        *bool              `json:"cleanup"`
	TargetLanguage string             `json:"target_language"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	caps := s.opts.Capabilities
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"capabilities": gin.H{
			"asr":            caps.ASR,
			"text_detection": caps.TextDetection,
			"translation":    caps.Translation,
		},
		"task_history": s.opts.Store != nil,
	})
}

func (s *Server) handleSubtitles(c *gin.Context) {
	var req subtitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	in, err := s.buildInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	log := s.log
	var task *taskstore.Task
	if s.opts.Store != nil {
		if task, err = s.opts.Store.Begin(ctx, "api", []string{string(in.Formats[0])}); err != nil {
			log.Error("record task", logging.Args(logging.Error(err))...)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not record task"})
			return
		}
		log = logging.WithTask(log, task.ID)
		c.Header("X-Task-ID", task.ID)
	}

	res, runErr := s.opts.Usecase.Run(ctx, in)
	status := taskstore.StatusForError(runErr)
	metrics.RecordTask(string(status))
	if task != nil {
		if err := s.opts.Store.Finish(ctx, task.ID, len(res.Cues), nil, runErr); err != nil {
			log.Warn("could not record task outcome", logging.Args(logging.Error(err))...)
		}
	}
	if runErr != nil {
		log.Warn("subtitle request failed", logging.Args(logging.String("status", string(status)), logging.Error(runErr))...)
		c.JSON(statusForRunError(runErr), errorResponse{Error: runErr.Error()})
		return
	}

	if len(res.Degraded) > 0 {
		c.Header("X-Degraded", strings.Join(res.Degraded, ","))
	}
	c.Header("X-Skipped-Tokens", strconv.Itoa(len(res.Skipped)))
	out := res.Outputs[0]
	c.Data(http.StatusOK, subtitles.ContentType(out.Format), out.Data)
}

// buildInput overlays the request on the configured template.
func (s *Server) buildInput(req subtitleRequest) (usecase.Input, error) {
	in := s.opts.Template
	in.MediaPath = ""
	in.VideoPath = ""

	raw, err := transcriptBytes(req.Transcript)
	if err != nil {
		return in, err
	}
	in.Transcript = raw

	name := req.Format
	if name == "" {
		name = string(subtitles.FormatSRT)
	}
	f, err := subtitles.ParseFormat(name)
	if err != nil {
		return in, err
	}
	in.Formats = []subtitles.Format{f}

	if len(req.Style) > 0 {
		style := in.Style
		if err := json.Unmarshal(req.Style, &style); err != nil {
			return in, errors.New("invalid style: " + err.Error())
		}
		in.Style = style
	}
	if req.Cleanup != nil {
		in.Cleanup = *req.Cleanup
	}
	if req.FrameHeight < 0 {
		return in, errors.New("frame_height must not be negative")
	}
	if req.FrameHeight > 0 {
		in.Position.FrameHeight = req.FrameHeight
	}
	if req.Regions != nil {
		in.Regions = req.Regions
	}
	in.TargetLang = strings.TrimSpace(req.TargetLanguage)
	return in, nil
}

func transcriptBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("transcript is required")
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, errors.New("invalid transcript string: " + err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("transcript is required")
	}
	return []byte(text), nil
}

func statusForRunError(err error) int {
	switch {
	case errors.Is(err, types.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidTranscript), errors.Is(err, types.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGetTask(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "task history is disabled"})
		return
	}
	task, err := s.opts.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error("get task", logging.Args(logging.Error(err))...)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not read task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "task history is disabled"})
		return
	}
	limit := defaultTaskLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	var statuses []taskstore.Status
	for _, part := range strings.Split(c.Query("status"), ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := taskstore.ParseStatus(part)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		statuses = append(statuses, st)
	}

	tasks, err := s.opts.Store.List(c.Request.Context(), limit, statuses...)
	if err != nil {
		s.log.Error("list tasks", logging.Args(logging.Error(err))...)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not list tasks"})
		return
	}
	if tasks == nil {
		tasks = []*taskstore.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
