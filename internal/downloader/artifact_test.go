package downloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestOutputTemplate(t *testing.T) {
	dir := filepath.Join("base", "out")

	assert.Equal(t, filepath.Join(dir, "%(title)s [%(id)s].%(ext)s"), OutputTemplate(dir, ""))
	assert.Equal(t, filepath.Join(dir, "%(title)s [%(id)s].%(ext)s"), OutputTemplate(dir, " /:* "))
	assert.Equal(t, filepath.Join(dir, "my song.%(ext)s"), OutputTemplate(dir, " my song? "))
}

func TestResolveArtifact(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		custom  string
		info    func(dir string) *EngineInfo
		want    string
		wantErr bool
	}{
		{
			name:  "reported artifact wins",
			files: []string{"final.mp3", "clip [id].webm"},
			info: func(dir string) *EngineInfo {
				return &EngineInfo{ID: "id", Title: "clip", Ext: "webm", Artifacts: []string{filepath.Join(dir, "final.mp3")}}
			},
			want: "final.mp3",
		},
		{
			name:  "missing artifact falls back to declared name",
			files: []string{"clip [id].mp4"},
			info: func(dir string) *EngineInfo {
				return &EngineInfo{ID: "id", Title: "clip", Ext: "mp4", Artifacts: []string{filepath.Join(dir, "gone.mp4")}}
			},
			want: "clip [id].mp4",
		},
		{
			name:  "declared filename used",
			files: []string{"declared.mp4"},
			info: func(dir string) *EngineInfo {
				return &EngineInfo{Filename: filepath.Join(dir, "declared.mp4")}
			},
			want: "declared.mp4",
		},
		{
			name:  "template rendered when no filename",
			files: []string{"Song [xyz].webm"},
			info: func(dir string) *EngineInfo {
				return &EngineInfo{ID: "xyz", Title: "Song", Ext: "webm"}
			},
			want: "Song [xyz].webm",
		},
		{
			name:   "same stem recovers rewritten extension",
			files:  []string{"clip.mp3"},
			custom: "clip",
			info: func(dir string) *EngineInfo {
				return &EngineInfo{Ext: "mp4"}
			},
			want: "clip.mp3",
		},
		{
			name:  "stem match with brackets in title",
			files: []string{"Live [Remix] [id9].m4a"},
			info: func(dir string) *EngineInfo {
				return &EngineInfo{ID: "id9", Title: "Live [Remix]", Ext: "webm"}
			},
			want: "Live [Remix] [id9].m4a",
		},
		{
			name:   "partial downloads ignored",
			files:  []string{"clip.mp3.part", "clip.part", "clip.ogg"},
			custom: "clip",
			info: func(dir string) *EngineInfo {
				return &EngineInfo{Ext: "webm"}
			},
			want: "clip.ogg",
		},
		{
			name:   "relative filename joined to template dir",
			files:  []string{"rel.mp4"},
			custom: "rel",
			info: func(dir string) *EngineInfo {
				return &EngineInfo{Filename: "rel.mp4"}
			},
			want: "rel.mp4",
		},
		{
			name:   "nothing found",
			files:  []string{"other.mp4"},
			custom: "clip",
			info: func(dir string) *EngineInfo {
				return &EngineInfo{Ext: "mp4"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(dir, f))
			}

			got, err := ResolveArtifact(OutputTemplate(dir, tt.custom), tt.info(dir))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrArtifactMissing)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestResolveArtifactNilInfo(t *testing.T) {
	_, err := ResolveArtifact(OutputTemplate(t.TempDir(), ""), nil)
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestFindByStemSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "clip.d"), 0755))

	_, ok := findByStem(filepath.Join(dir, "clip.mp4"))
	assert.False(t, ok)

	touch(t, filepath.Join(dir, "clip.opus"))
	got, ok := findByStem(filepath.Join(dir, "clip.mp4"))
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "clip.opus"), got)
}
