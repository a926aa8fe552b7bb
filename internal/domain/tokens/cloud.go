package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

type cloudResults struct {
	Items         []cloudItem `json:"items"`
	SpeakerLabels *struct {
		Segments []struct {
			SpeakerLabel string      `json:"speaker_label"`
			Items        []cloudItem `json:"items"`
		} `json:"segments"`
	} `json:"speaker_labels"`
}

type cloudItem struct {
	ID           json.RawMessage `json:"id"`
	ItemID       json.RawMessage `json:"item_id"`
	StartTime    flexFloat       `json:"start_time"`
	EndTime      flexFloat       `json:"end_time"`
	Type         string          `json:"type"`
	SpeakerLabel string          `json:"speaker_label"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

func (it cloudItem) content() string {
	if len(it.Alternatives) == 0 {
		return ""
	}
	return it.Alternatives[0].Content
}

// keys identifies an item for speaker lookup, most specific first: ids, then start time.
func (it cloudItem) keys() []string {
	var out []string
	for _, raw := range []json.RawMessage{it.ItemID, it.ID} {
		if id := rawScalar(raw); id != "" {
			out = append(out, "id:"+id)
		}
	}
	if it.StartTime.ok {
		out = append(out, "t:"+strconv.FormatFloat(it.StartTime.v, 'f', 3, 64))
	}
	return out
}

func lookupSpeaker(speakers map[string]string, it cloudItem) string {
	for _, k := range it.keys() {
		if label, ok := speakers[k]; ok {
			return label
		}
	}
	return ""
}

func normalizeCloud(raw json.RawMessage) (Result, error) {
	var r cloudResults
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, fmt.Errorf("%w: results: %v", types.ErrInvalidTranscript, err)
	}

	speakers := map[string]string{}
	hasLabels := r.SpeakerLabels != nil && len(r.SpeakerLabels.Segments) > 0
	if hasLabels {
		for _, seg := range r.SpeakerLabels.Segments {
			for _, it := range seg.Items {
				label := it.SpeakerLabel
				if label == "" {
					label = seg.SpeakerLabel
				}
				if label == "" {
					continue
				}
				for _, k := range it.keys() {
					speakers[k] = label
				}
			}
		}
	}
	for _, it := range r.Items {
		if it.SpeakerLabel != "" {
			hasLabels = true
			break
		}
	}

	acc := &accumulator{}
	for i, it := range r.Items {
		content := it.content()
		if it.Type == "punctuation" {
			content = cleanContent(content)
			if content == "" {
				acc.skip(i, ReasonEmptyContent)
				continue
			}
			acc.attachPunctuation(i, content)
			continue
		}
		if !it.StartTime.ok || !it.EndTime.ok {
			acc.skip(i, ReasonMissingTimestamps)
			continue
		}

		speaker := ""
		if hasLabels {
			speaker = it.SpeakerLabel
			if speaker == "" {
				speaker = lookupSpeaker(speakers, it)
			}
			if speaker == "" {
				speaker = DefaultSpeaker
			}
		}
		acc.add(i, content, it.StartTime.v, it.EndTime.v, speaker)
	}

	return Result{
		Tokens:           acc.tokens,
		Skipped:          acc.skipped,
		HasSpeakerLabels: hasLabels,
		Shape:            ShapeCloud,
	}, nil
}

// flexFloat decodes a number given either as a JSON number or a numeric string.
// Unparseable or absent values leave ok false.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.v, f.ok = v, true
	return nil
}

func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}
