package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel     = "anthropic/claude-3.5-sonnet"
	defaultBatchSize = 40
	callTimeout      = 90 * time.Second
	completionsPath  = "/api/v1/chat/completions"
)

// Adapter translates subtitle lines through an OpenRouter chat completion model.
type Adapter struct {
	key       string
	model     string
	baseURL   string
	batchSize int
	client    *http.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		key:       apiKey,
		model:     model,
		baseURL:   normalizeBaseURL(baseURL),
		batchSize: defaultBatchSize,
		client:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type promptLine struct {
	Idx  int    `json:"idx"`
	Text string `json:"text"`
}

// Translate sends texts in batches and returns one translation per input.
// Lines the model drops or leaves empty keep their source text.
func (a *Adapter) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, errors.New("openrouter: target language is required")
	}
	out := append([]string(nil), texts...)

	for lo := 0; lo < len(texts); lo += a.batchSize {
		hi := min(lo+a.batchSize, len(texts))
		var batch []promptLine
		for i, s := range texts[lo:hi] {
			if strings.TrimSpace(s) != "" {
				batch = append(batch, promptLine{Idx: lo + i, Text: s})
			}
		}
		if len(batch) == 0 {
			continue
		}

		got, err := a.translateBatch(ctx, batch, targetLang)
		if err != nil {
			return nil, err
		}
		for _, ln := range got {
			text := strings.TrimSpace(ln.Text)
			if ln.Idx >= lo && ln.Idx < hi && text != "" {
				out[ln.Idx] = text
			}
		}
	}
	return out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Stream         bool            `json:"stream"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format"`
}

// linesFormat asks the model for {"lines":[{"idx":..,"text":..}]}.
var linesFormat = json.RawMessage(`{
  "type": "json_schema",
  "json_schema": {
    "name": "subcue_translate",
    "schema": {
      "type": "object",
      "required": ["lines"],
      "properties": {
        "lines": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["idx", "text"],
            "properties": {
              "idx": {"type": "integer"},
              "text": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`)

func (a *Adapter) translateBatch(ctx context.Context, batch []promptLine, targetLang string) ([]promptLine, error) {
	linesJSON, err := json.Marshal(struct {
		TargetLanguage string       `json:"target_language"`
		Lines          []promptLine `json:"lines"`
	}{targetLang, batch})
	if err != nil {
		return nil, fmt.Errorf("marshal prompt: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model:          a.model,
		Messages:       []chatMessage{{Role: "user", Content: translatePrompt + string(linesJSON)}},
		ResponseFormat: linesFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reply, err := a.post(ctx, body)
	if err != nil {
		return nil, err
	}
	content, err := reply.text()
	if err != nil {
		return nil, err
	}
	return decodeLines(content)
}

const translatePrompt = "Translate every subtitle line into the target language. " +
	"Return strictly valid JSON (no markdown, no code fences) matching the provided schema. " +
	"Keep each idx unchanged and return exactly one entry per input line. " +
	"Keep translations about as short as the source so they fit on screen, " +
	"and keep a leading \"-- \" if a line has one." +
	"\n\nLines JSON:\n"

// post sends one chat completion and decodes the reply envelope. Error bodies
// are redacted before they reach the caller.
func (a *Adapter) post(ctx context.Context, body []byte) (*chatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("openrouter: no reply within %s (model=%s)", callTimeout, a.model)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, clip(redactSecrets(string(snippet), a.key), 400))
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("openrouter: decode response: %w", err)
	}
	return &reply, nil
}
