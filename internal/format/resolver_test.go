package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytfetch/pkg/models"
)

func TestResolveVideo(t *testing.T) {
	tests := []struct {
		name      string
		container models.Container
		quality   models.Quality
		want      string
	}{
		{
			name:      "mp4 best",
			container: models.ContainerMP4,
			quality:   models.QualityBest,
			want:      "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
		{
			name:      "mp4 720p",
			container: models.ContainerMP4,
			quality:   models.Quality720p,
			want:      "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]/best[height<=720]/best",
		},
		{
			name:      "webm best",
			container: models.ContainerWebm,
			quality:   models.QualityBest,
			want:      "bestvideo[ext=webm]+bestaudio[ext=webm]/best[ext=webm]/best",
		},
		{
			name:      "webm 360p",
			container: models.ContainerWebm,
			quality:   models.Quality360p,
			want:      "bestvideo[height<=360][ext=webm]+bestaudio[ext=webm]/best[height<=360][ext=webm]/best[height<=360]/best",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(models.MediaKindVideo, tt.container, tt.quality)
			assert.Equal(t, tt.want, got.Expression())
		})
	}
}

func TestResolveAudio(t *testing.T) {
	for _, c := range []models.Container{models.ContainerMP3, models.ContainerM4A} {
		for _, q := range []models.Quality{models.QualityBest, models.Quality480p} {
			got := Resolve(models.MediaKindAudio, c, q)
			assert.Equal(t, "bestaudio/best", got.Expression())
		}
	}
}

func TestResolveAlwaysEndsGeneric(t *testing.T) {
	kinds := map[models.MediaKind][]models.Container{
		models.MediaKindVideo: {models.ContainerMP4, models.ContainerWebm},
		models.MediaKindAudio: {models.ContainerMP3, models.ContainerM4A},
	}
	qualities := []models.Quality{
		models.QualityBest,
		models.Quality1080p,
		models.Quality720p,
		models.Quality480p,
		models.Quality360p,
	}

	for kind, containers := range kinds {
		for _, c := range containers {
			for _, q := range qualities {
				sel := Resolve(kind, c, q)
				require.NotEmpty(t, sel, "%s/%s/%s", kind, c, q)

				last := sel[len(sel)-1]
				assert.True(t, last.Generic(), "%s/%s/%s", kind, c, q)
				assert.NotContains(t, last.String(), "height")
				assert.NotContains(t, last.String(), "ext=")
			}
		}
	}
}

func TestResolveHeightOmittedForBest(t *testing.T) {
	sel := Resolve(models.MediaKindVideo, models.ContainerMP4, models.QualityBest)
	assert.False(t, strings.Contains(sel.Expression(), "height"))
	assert.Len(t, sel, 3)
}

func TestResolveFirstTierPairsStreams(t *testing.T) {
	sel := Resolve(models.MediaKindVideo, models.ContainerMP4, models.Quality720p)
	require.Len(t, sel[0], 2)

	assert.Equal(t, StreamBestVideo, sel[0][0].Kind)
	assert.Equal(t, Predicate{Ext: "mp4", MaxHeight: 720}, sel[0][0].Where)
	assert.Equal(t, StreamBestAudio, sel[0][1].Kind)
	assert.Equal(t, Predicate{Ext: "m4a"}, sel[0][1].Where)
}
