package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var ErrInvalidOption = errors.New("invalid option")

// MediaKind represents what the user wants to keep from the source
type MediaKind int

const (
	MediaKindVideo MediaKind = iota
	MediaKindAudio
)

func (k MediaKind) String() string {
	switch k {
	case MediaKindVideo:
		return "video"
	case MediaKindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Container represents the requested output container
type Container int

const (
	ContainerMP4 Container = iota
	ContainerWebm
	ContainerMP3
	ContainerM4A
)

func (c Container) String() string {
	switch c {
	case ContainerMP4:
		return "mp4"
	case ContainerWebm:
		return "webm"
	case ContainerMP3:
		return "mp3"
	case ContainerM4A:
		return "m4a"
	default:
		return "unknown"
	}
}

// Kind returns the media kind a container belongs to
func (c Container) Kind() MediaKind {
	if c == ContainerMP3 || c == ContainerM4A {
		return MediaKindAudio
	}
	return MediaKindVideo
}

// Quality represents the requested quality tier
type Quality int

const (
	QualityBest Quality = iota
	Quality1080p
	Quality720p
	Quality480p
	Quality360p
)

func (q Quality) String() string {
	switch q {
	case QualityBest:
		return "best"
	case Quality1080p:
		return "1080p"
	case Quality720p:
		return "720p"
	case Quality480p:
		return "480p"
	case Quality360p:
		return "360p"
	default:
		return "unknown"
	}
}

// MaxHeight returns the height cap for the tier, 0 meaning no cap
func (q Quality) MaxHeight() int {
	switch q {
	case Quality1080p:
		return 1080
	case Quality720p:
		return 720
	case Quality480p:
		return 480
	case Quality360p:
		return 360
	default:
		return 0
	}
}

// ParseMediaKind parses a form value, defaulting to video when empty
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video":
		return MediaKindVideo, nil
	case "audio":
		return MediaKindAudio, nil
	default:
		return 0, fmt.Errorf("%w: media type %q", ErrInvalidOption, s)
	}
}

// ParseContainer parses a form value for the given media kind.
// Empty values fall back to mp4 for video and mp3 for audio.
func ParseContainer(kind MediaKind, s string) (Container, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if kind == MediaKindAudio {
		switch v {
		case "", "mp3":
			return ContainerMP3, nil
		case "m4a":
			return ContainerM4A, nil
		}
		return 0, fmt.Errorf("%w: audio format %q", ErrInvalidOption, s)
	}

	switch v {
	case "", "mp4":
		return ContainerMP4, nil
	case "webm":
		return ContainerWebm, nil
	}
	return 0, fmt.Errorf("%w: video format %q", ErrInvalidOption, s)
}

// ParseQuality parses a form value, defaulting to best when empty
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best":
		return QualityBest, nil
	case "1080p":
		return Quality1080p, nil
	case "720p":
		return Quality720p, nil
	case "480p":
		return Quality480p, nil
	case "360p":
		return Quality360p, nil
	default:
		return 0, fmt.Errorf("%w: quality %q", ErrInvalidOption, s)
	}
}

// DownloadRequest describes what the user asked for
type DownloadRequest struct {
	URL        string    `json:"url"`
	MediaKind  MediaKind `json:"mediaKind"`
	Container  Container `json:"container"`
	Quality    Quality   `json:"quality"`
	CustomName string    `json:"customName,omitempty"`
	OutputDir  string    `json:"outputDir"`
}

// Validate checks that the container matches the media kind
func (r DownloadRequest) Validate() error {
	if r.Container.Kind() != r.MediaKind {
		return fmt.Errorf("%w: %s is not a %s format", ErrInvalidOption, r.Container, r.MediaKind)
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalidOption)
	}
	return nil
}

// StoredFile represents a downloaded file on disk
type StoredFile struct {
	Dir     string    `json:"dir"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Path returns the absolute file path
func (f StoredFile) Path() string {
	return filepath.Join(f.Dir, f.Name)
}
