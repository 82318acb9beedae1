package downloader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ytfetch/internal/format"
)

var ErrInvalidOptions = errors.New("invalid engine options")

// Engine runs the external extractor for a single job
type Engine interface {
	Extract(ctx context.Context, opts EngineOptions) (*EngineInfo, error)
}

// TranscoderProbe reports whether the transcoder is installed
type TranscoderProbe interface {
	Available() bool
}

// ProbeFunc adapts a plain function to TranscoderProbe
type ProbeFunc func() bool

func (f ProbeFunc) Available() bool { return f() }

// EngineOptions is everything the engine receives for one job
type EngineOptions struct {
	URL            string
	Selector       format.Selector
	Steps          []Step
	OutputTemplate string
	Headers        map[string]string
}

// NewEngineOptions builds options, rejecting missing fields
func NewEngineOptions(url string, sel format.Selector, steps []Step, outputTemplate string, headers map[string]string) (EngineOptions, error) {
	if strings.TrimSpace(url) == "" {
		return EngineOptions{}, fmt.Errorf("%w: url is empty", ErrInvalidOptions)
	}
	if len(sel) == 0 {
		return EngineOptions{}, fmt.Errorf("%w: selector is empty", ErrInvalidOptions)
	}
	if strings.TrimSpace(outputTemplate) == "" {
		return EngineOptions{}, fmt.Errorf("%w: output template is empty", ErrInvalidOptions)
	}
	if err := ValidateSteps(steps); err != nil {
		return EngineOptions{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	hdrs := make(map[string]string, len(headers))
	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			return EngineOptions{}, fmt.Errorf("%w: empty header name", ErrInvalidOptions)
		}
		hdrs[k] = v
	}

	return EngineOptions{
		URL:            url,
		Selector:       sel,
		Steps:          steps,
		OutputTemplate: outputTemplate,
		Headers:        hdrs,
	}, nil
}

// EngineInfo is the record the engine hands back after a successful run.
// Filename is the engine's declared name before postprocessing; Artifacts
// lists final paths when the engine reported them.
type EngineInfo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Ext       string   `json:"ext"`
	Filename  string   `json:"filename"`
	Artifacts []string `json:"-"`
}
