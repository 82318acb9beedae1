package downloader

import (
	"errors"
	"fmt"

	"ytfetch/pkg/models"
)

// AudioQuality is the bitrate hint passed to audio extraction
const AudioQuality = "192"

var ErrInvalidChain = errors.New("invalid postprocessing chain")

// StepKind identifies a postprocessing stage
type StepKind int

const (
	StepExtractAudio StepKind = iota
	StepRemuxMergeVideo
	StepAttachMetadata
)

func (k StepKind) String() string {
	switch k {
	case StepExtractAudio:
		return "extract-audio"
	case StepRemuxMergeVideo:
		return "remux-merge"
	case StepAttachMetadata:
		return "attach-metadata"
	default:
		return "unknown"
	}
}

// Step is one postprocessing stage. Codec and Quality apply to ExtractAudio,
// Container to RemuxMergeVideo.
type Step struct {
	Kind      StepKind
	Codec     string
	Quality   string
	Container string
}

func (s Step) String() string {
	switch s.Kind {
	case StepExtractAudio:
		return fmt.Sprintf("%s(%s@%s)", s.Kind, s.Codec, s.Quality)
	case StepRemuxMergeVideo:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Container)
	default:
		return s.Kind.String()
	}
}

// ExtractAudio returns an audio extraction step
func ExtractAudio(codec, quality string) Step {
	return Step{Kind: StepExtractAudio, Codec: codec, Quality: quality}
}

// RemuxMergeVideo returns a merge step targeting container
func RemuxMergeVideo(container string) Step {
	return Step{Kind: StepRemuxMergeVideo, Container: container}
}

// AttachMetadata returns a metadata tagging step
func AttachMetadata() Step {
	return Step{Kind: StepAttachMetadata}
}

// BuildSteps returns the postprocessing chain for a request.
// Audio requires the transcoder; video degrades to no postprocessing without it.
func BuildSteps(kind models.MediaKind, container models.Container, transcoder bool) ([]Step, error) {
	if kind == models.MediaKindAudio {
		if !transcoder {
			return nil, fmt.Errorf("%w: ffmpeg is required for audio extraction", ErrMissingDependency)
		}
		return []Step{
			ExtractAudio(container.String(), AudioQuality),
			AttachMetadata(),
		}, nil
	}

	if !transcoder {
		return []Step{}, nil
	}

	return []Step{
		RemuxMergeVideo(container.String()),
		AttachMetadata(),
	}, nil
}

// ValidateSteps enforces chain ordering rules
func ValidateSteps(steps []Step) error {
	var extract, merge bool
	for i, s := range steps {
		switch s.Kind {
		case StepExtractAudio:
			if s.Codec == "" {
				return fmt.Errorf("%w: audio extraction without codec", ErrInvalidChain)
			}
			extract = true
		case StepRemuxMergeVideo:
			if s.Container == "" {
				return fmt.Errorf("%w: merge without container", ErrInvalidChain)
			}
			merge = true
		case StepAttachMetadata:
			if i != len(steps)-1 {
				return fmt.Errorf("%w: metadata must be the last step", ErrInvalidChain)
			}
		default:
			return fmt.Errorf("%w: unknown step %d", ErrInvalidChain, s.Kind)
		}
	}

	if extract && merge {
		return fmt.Errorf("%w: audio extraction and merge are exclusive", ErrInvalidChain)
	}

	return nil
}
