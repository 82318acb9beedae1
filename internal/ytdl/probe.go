package ytdl

import (
	"os/exec"
	"strings"
)

// FFmpegProbe reports whether ffmpeg can be found
type FFmpegProbe struct {
	Path string
}

// NewFFmpegProbe creates a probe for the given binary name or path
func NewFFmpegProbe(path string) *FFmpegProbe {
	if strings.TrimSpace(path) == "" {
		path = "ffmpeg"
	}
	return &FFmpegProbe{Path: path}
}

// Available implements downloader.TranscoderProbe
func (p *FFmpegProbe) Available() bool {
	_, err := exec.LookPath(p.Path)
	return err == nil
}
