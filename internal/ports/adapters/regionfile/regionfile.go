// Package regionfile serves text detections that an external vision job has
// already written to disk, as JSON or YAML.
package regionfile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/subcue/internal/types"
)

// DefaultTolerance is how far (seconds) a stored observation may sit from a
// requested sample and still be returned.
const DefaultTolerance = 0.5

// DefaultMinConfidence drops unsure detections. Vision jobs write confidence
// on a 0-100 scale.
const DefaultMinConfidence = 70.0

type Adapter struct {
	path          string
	tolerance     float64
	minConfidence float64
}

func New(path string) *Adapter {
	return &Adapter{path: path, tolerance: DefaultTolerance, minConfidence: DefaultMinConfidence}
}

// WithMinConfidence returns a copy that keeps observations with confidence at
// or above c; c <= 0 keeps every observation.
func (a *Adapter) WithMinConfidence(c float64) *Adapter {
	cp := *a
	cp.minConfidence = c
	return &cp
}

// WithTolerance returns a copy using tol; tol <= 0 returns every observation
// regardless of the requested samples.
func (a *Adapter) WithTolerance(tol float64) *Adapter {
	cp := *a
	cp.tolerance = tol
	return &cp
}

// Available reports whether the detections file exists.
func (a *Adapter) Available() bool {
	if strings.TrimSpace(a.path) == "" {
		return false
	}
	st, err := os.Stat(a.path)
	return err == nil && !st.IsDir()
}

type relBox struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type fileRegion struct {
	Timestamp  float64            `json:"timestamp" yaml:"timestamp"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	Text       string             `json:"text" yaml:"text"`
	Type       string             `json:"type" yaml:"type"`
	Box        *types.BoundingBox `json:"box" yaml:"box"`
	Relative   *relBox            `json:"relative" yaml:"relative"`
}

type fileDoc struct {
	FrameWidth  int          `json:"frame_width" yaml:"frame_width"`
	FrameHeight int          `json:"frame_height" yaml:"frame_height"`
	Regions     []fileRegion `json:"regions" yaml:"regions"`
}

// DetectText loads the file and returns the observations near samples.
// videoPath is only used in error messages.
func (a *Adapter) DetectText(ctx context.Context, videoPath string, samples []float64) (types.Detection, error) {
	if err := ctx.Err(); err != nil {
		return types.Detection{}, err
	}
	b, err := os.ReadFile(a.path)
	if err != nil {
		return types.Detection{}, fmt.Errorf("read text regions for %s: %w", videoPath, err)
	}
	doc, err := decode(a.path, b)
	if err != nil {
		return types.Detection{}, fmt.Errorf("decode text regions %s: %w", a.path, err)
	}
	return a.toDetection(doc, samples)
}

func decode(path string, b []byte) (fileDoc, error) {
	var doc fileDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err := yaml.Unmarshal(b, &doc)
		return doc, err
	case ".json":
		err := json.Unmarshal(b, &doc)
		return doc, err
	default:
		// YAML is a superset of JSON.
		err := yaml.Unmarshal(b, &doc)
		return doc, err
	}
}

func (a *Adapter) toDetection(doc fileDoc, samples []float64) (types.Detection, error) {
	out := types.Detection{FrameWidth: doc.FrameWidth, FrameHeight: doc.FrameHeight}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	for i, r := range doc.Regions {
		// Line-level entries duplicate their words.
		if r.Type != "" && !strings.EqualFold(r.Type, "word") {
			continue
		}
		box, err := resolveBox(r, doc.FrameWidth, doc.FrameHeight)
		if err != nil {
			return types.Detection{}, fmt.Errorf("region %d: %w", i, err)
		}
		if a.tolerance > 0 && len(sorted) > 0 && !near(sorted, r.Timestamp, a.tolerance) {
			continue
		}
		if a.minConfidence > 0 && r.Confidence < a.minConfidence {
			continue
		}
		out.Regions = append(out.Regions, types.TextRegion{
			Box:        box,
			Timestamp:  r.Timestamp,
			Confidence: r.Confidence,
			Text:       r.Text,
		})
	}
	return out, nil
}

func resolveBox(r fileRegion, frameW, frameH int) (types.BoundingBox, error) {
	switch {
	case r.Box != nil:
		return *r.Box, nil
	case r.Relative != nil:
		if frameW <= 0 || frameH <= 0 {
			return types.BoundingBox{}, fmt.Errorf("relative box needs frame_width and frame_height")
		}
		return types.BoundingBox{
			X: int(r.Relative.Left * float64(frameW)),
			Y: int(r.Relative.Top * float64(frameH)),
			W: int(r.Relative.Width * float64(frameW)),
			H: int(r.Relative.Height * float64(frameH)),
		}, nil
	default:
		return types.BoundingBox{}, fmt.Errorf("missing box")
	}
}

// near reports whether ts is within tol of any value in sorted.
func near(sorted []float64, ts, tol float64) bool {
	i := sort.SearchFloat64s(sorted, ts)
	if i < len(sorted) && math.Abs(sorted[i]-ts) <= tol {
		return true
	}
	return i > 0 && math.Abs(sorted[i-1]-ts) <= tol
}
