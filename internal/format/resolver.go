// Package format turns a download request's shape into a yt-dlp format
// selector chain, most specific alternative first.
package format

import (
	"fmt"
	"strings"

	"ytfetch/pkg/models"
)

// StreamKind selects which family of streams a spec picks from
type StreamKind int

const (
	StreamBest StreamKind = iota
	StreamBestVideo
	StreamBestAudio
)

func (k StreamKind) String() string {
	switch k {
	case StreamBestVideo:
		return "bestvideo"
	case StreamBestAudio:
		return "bestaudio"
	default:
		return "best"
	}
}

// Predicate narrows the candidate streams. Zero values mean "any".
type Predicate struct {
	Ext       string
	MaxHeight int
}

// IsZero reports whether the predicate constrains nothing
func (p Predicate) IsZero() bool {
	return p.Ext == "" && p.MaxHeight == 0
}

// Stream is a single stream spec such as bestvideo[height<=720][ext=mp4]
type Stream struct {
	Kind  StreamKind
	Where Predicate
}

func (s Stream) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	if s.Where.MaxHeight > 0 {
		fmt.Fprintf(&b, "[height<=%d]", s.Where.MaxHeight)
	}
	if s.Where.Ext != "" {
		fmt.Fprintf(&b, "[ext=%s]", s.Where.Ext)
	}
	return b.String()
}

// Alternative is one fallback tier; multiple streams are merged together
type Alternative []Stream

func (a Alternative) String() string {
	parts := make([]string, len(a))
	for i, s := range a {
		parts[i] = s.String()
	}
	return strings.Join(parts, "+")
}

// Generic reports whether every stream in the tier is unconstrained
func (a Alternative) Generic() bool {
	for _, s := range a {
		if !s.Where.IsZero() {
			return false
		}
	}
	return true
}

// Selector is the ordered fallback chain handed to the engine
type Selector []Alternative

// Expression renders the chain in yt-dlp's -f syntax
func (s Selector) Expression() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, "/")
}

func (s Selector) String() string {
	return s.Expression()
}

var generic = Alternative{{Kind: StreamBest}}

// Resolve builds the selector chain for a media kind, container and quality tier.
// The last alternative is always a bare "best".
func Resolve(kind models.MediaKind, container models.Container, quality models.Quality) Selector {
	if kind == models.MediaKindAudio {
		// the audio codec is chosen later by the extract step
		return Selector{
			{{Kind: StreamBestAudio}},
			generic,
		}
	}

	h := quality.MaxHeight()
	videoExt, audioExt := pairedExts(container)

	sel := Selector{
		{
			{Kind: StreamBestVideo, Where: Predicate{Ext: videoExt, MaxHeight: h}},
			{Kind: StreamBestAudio, Where: Predicate{Ext: audioExt}},
		},
		{{Kind: StreamBest, Where: Predicate{Ext: videoExt, MaxHeight: h}}},
		{{Kind: StreamBest, Where: Predicate{MaxHeight: h}}},
	}

	if !sel[len(sel)-1].Generic() {
		sel = append(sel, generic)
	}

	return sel
}

// pairedExts returns the video extension and its native audio companion
func pairedExts(c models.Container) (string, string) {
	if c == models.ContainerWebm {
		return "webm", "webm"
	}
	return "mp4", "m4a"
}
