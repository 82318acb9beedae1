package ytdl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"ytfetch/internal/downloader"
	"ytfetch/internal/logger"
)

// afterMovePrint makes yt-dlp print the final path once postprocessing
// has moved the file into place.
const afterMovePrint = "after_move:filepath"

// Engine runs yt-dlp through go-ytdlp
type Engine struct {
	executable string
	timeout    time.Duration
}

// NewEngine creates an engine. An empty executable lets go-ytdlp find
// yt-dlp on PATH; a zero timeout means none.
func NewEngine(executable string, timeout time.Duration) *Engine {
	return &Engine{
		executable: executable,
		timeout:    timeout,
	}
}

// Extract downloads opts.URL and reports what yt-dlp produced
func (e *Engine) Extract(ctx context.Context, opts downloader.EngineOptions) (*downloader.EngineInfo, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := e.command(opts)

	logger.FromContext(ctx).Debug("running yt-dlp", "url", opts.URL, "executable", e.executable)
	result, err := cmd.Run(ctx, opts.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctx.Err())
		}
		if result != nil && (result.ExitCode > 0 || strings.Contains(result.Stderr, "ERROR:")) {
			return nil, &downloader.ExtractionError{Detail: failureDetail(result.Stderr, result.ExitCode)}
		}
		return nil, fmt.Errorf("failed to run yt-dlp: %w", err)
	}

	return infoFromResult(result), nil
}

// command maps engine options onto yt-dlp flags
func (e *Engine) command(opts downloader.EngineOptions) *ytdlp.Command {
	cmd := ytdlp.New().
		Format(opts.Selector.Expression()).
		Output(opts.OutputTemplate).
		NoPlaylist().
		NoWarnings().
		NoProgress().
		DumpJSON().
		NoSimulate().
		Print(afterMovePrint)

	if e.executable != "" {
		cmd.SetExecutable(e.executable)
	}

	keys := make([]string, 0, len(opts.Headers))
	for k := range opts.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.AddHeaders(k + ":" + opts.Headers[k])
	}

	for _, step := range opts.Steps {
		switch step.Kind {
		case downloader.StepExtractAudio:
			cmd.ExtractAudio().
				AudioFormat(step.Codec).
				AudioQuality(step.Quality)
		case downloader.StepRemuxMergeVideo:
			cmd.MergeOutputFormat(step.Container)
		case downloader.StepAttachMetadata:
			cmd.EmbedMetadata()
		}
	}

	return cmd
}

// infoFromResult fills the engine record from what go-ytdlp decoded: the
// first -j info line plus every after_move path printed on stdout.
func infoFromResult(res *ytdlp.Result) *downloader.EngineInfo {
	if res == nil {
		return nil
	}

	var info *downloader.EngineInfo
	if extracted, err := res.GetExtractedInfo(); err == nil && len(extracted) > 0 && extracted[0] != nil {
		first := extracted[0]
		info = &downloader.EngineInfo{
			ID:       text(first.ID),
			Title:    text(first.Title),
			Ext:      text(first.Extension),
			Filename: text(first.Filename),
		}
		if info.Filename == "" {
			info.Filename = text(first.AltFilename)
		}
	}

	var artifacts []string
	for _, l := range res.OutputLogs {
		if l == nil || l.JSON != nil || l.Pipe != "stdout" {
			continue
		}
		if line := strings.TrimSpace(l.Line); line != "" {
			artifacts = append(artifacts, line)
		}
	}

	if info == nil {
		if len(artifacts) == 0 {
			return nil
		}
		info = &downloader.EngineInfo{}
	}

	info.Artifacts = artifacts
	return info
}

// text reads an extracted info field, which go-ytdlp exposes either as a
// plain string or as a nil-able pointer.
func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

// failureDetail keeps yt-dlp's own error lines
func failureDetail(stderr string, exitCode int) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			lines = append(lines, line)
		}
	}

	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	return fmt.Sprintf("yt-dlp exited with code %d", exitCode)
}
