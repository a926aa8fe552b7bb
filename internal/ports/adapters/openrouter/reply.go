package openrouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errEmptyContent = errors.New("openrouter: empty content")

type chatReply struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// text returns the first choice's content. Providers send either a plain
// string or a list of {type, text} parts.
func (r *chatReply) text() (string, error) {
	if len(r.Choices) == 0 {
		return "", errors.New("openrouter: no choices in response")
	}
	return contentText(r.Choices[0].Message.Content)
}

func contentText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("openrouter: unexpected content %s", clip(string(raw), 80))
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyContent
	}
	return b.String(), nil
}

// decodeLines reads the first JSON object in content, tolerating code fences
// and chatter around it.
func decodeLines(content string) ([]promptLine, error) {
	t := strings.TrimSpace(content)
	if t == "" {
		return nil, errEmptyContent
	}
	if rest, ok := strings.CutPrefix(t, "```"); ok {
		_, rest, _ = strings.Cut(rest, "\n")
		rest, _, _ = strings.Cut(rest, "```")
		t = rest
	}
	i := strings.IndexByte(t, '{')
	if i < 0 {
		return nil, fmt.Errorf("openrouter: no JSON object in %q", clip(t, 200))
	}
	var out struct {
		Lines []promptLine `json:"lines"`
	}
	if err := json.NewDecoder(strings.NewReader(t[i:])).Decode(&out); err != nil {
		return nil, fmt.Errorf("openrouter: decode translations: %w", err)
	}
	return out.Lines, nil
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

var (
	credentialFieldRE = regexp.MustCompile(`(?i)\b(authorization|x-api-key|api[_-]?key)(\s*[:=]\s*)[^\n\r,;]+`)
	bearerRE          = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+`)
)

// redactSecrets masks credentials in error bodies before they are logged.
func redactSecrets(s, apiKey string) string {
	s = credentialFieldRE.ReplaceAllString(s, "${1}${2}[REDACTED]")
	s = bearerRE.ReplaceAllString(s, "Bearer [REDACTED]")
	if apiKey != "" {
		s = strings.ReplaceAll(s, apiKey, "[REDACTED]")
	}
	return s
}
