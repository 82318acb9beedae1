package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCLI(t *testing.T) {
	cli := NewCLI("1.0.0")
	require.NotNil(t, cli)
	assert.Equal(t, "1.0.0", cli.version)
}

func TestParseCommand_NoArgs(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{})
	assert.Error(t, err)
	assert.Nil(t, cmd)
}

func TestParseCommand_Help(t *testing.T) {
	cli := NewCLI("1.0.0")

	testCases := []struct {
		name string
		args []string
	}{
		{"help flag", []string{"-h"}},
		{"help long", []string{"--help"}},
		{"help command", []string{"help"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := cli.ParseCommand(tc.args)
			require.NoError(t, err)
			assert.Equal(t, CommandHelp, cmd.Type)
		})
	}
}

func TestParseCommand_Version(t *testing.T) {
	cli := NewCLI("1.0.0")

	testCases := []struct {
		name string
		args []string
	}{
		{"version flag", []string{"-v"}},
		{"version long", []string{"--version"}},
		{"version command", []string{"version"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := cli.ParseCommand(tc.args)
			require.NoError(t, err)
			assert.Equal(t, CommandVersion, cmd.Type)
		})
	}
}

func TestParseCommand_Server(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"server"})
	require.NoError(t, err)
	assert.Equal(t, CommandServer, cmd.Type)
	assert.Equal(t, 0, cmd.Port)
	assert.Empty(t, cmd.ConfigPath)
}

func TestParseCommand_ServerWithFlags(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"server", "-port", "9000", "-config", "/etc/ytfetch.json"})
	require.NoError(t, err)
	assert.Equal(t, CommandServer, cmd.Type)
	assert.Equal(t, 9000, cmd.Port)
	assert.Equal(t, "/etc/ytfetch.json", cmd.ConfigPath)
}

func TestParseCommand_ServerBadPort(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"server", "-port", "70000"})
	assert.Error(t, err)
	assert.Nil(t, cmd)
}

func TestParseCommand_Download(t *testing.T) {
	cli := NewCLI("1.0.0")

	tests := []struct {
		name string
		args []string
		want DownloadArgs
	}{
		{
			name: "defaults",
			args: []string{"-url", "https://youtu.be/abc"},
			want: DownloadArgs{URL: "https://youtu.be/abc", Type: "video", Quality: "best"},
		},
		{
			name: "positional url",
			args: []string{"https://youtu.be/abc"},
			want: DownloadArgs{URL: "https://youtu.be/abc", Type: "video", Quality: "best"},
		},
		{
			name: "all flags",
			args: []string{
				"-url", "https://youtu.be/abc",
				"-type", "audio",
				"-format", "m4a",
				"-quality", "720p",
				"-name", "song",
				"-outdir", "/tmp/music",
			},
			want: DownloadArgs{
				URL:     "https://youtu.be/abc",
				Type:    "audio",
				Format:  "m4a",
				Quality: "720p",
				Name:    "song",
				OutDir:  "/tmp/music",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := cli.ParseCommand(append([]string{"download"}, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, CommandDownload, cmd.Type)
			assert.Equal(t, tt.want, cmd.Download)
		})
	}
}

func TestParseCommand_DownloadMissingURL(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"download", "-type", "audio"})
	assert.ErrorIs(t, err, ErrMissingURL)
	assert.Nil(t, cmd)
}

func TestParseCommand_Install(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"install"})
	require.NoError(t, err)
	assert.Equal(t, CommandInstall, cmd.Type)
	assert.False(t, cmd.CheckOnly)

	cmd, err = cli.ParseCommand([]string{"install", "-check"})
	require.NoError(t, err)
	assert.True(t, cmd.CheckOnly)
}

func TestParseCommand_InvalidCommand(t *testing.T) {
	cli := NewCLI("1.0.0")

	cmd, err := cli.ParseCommand([]string{"invalid"})
	assert.Error(t, err)
	assert.Nil(t, cmd)
}

func TestParseCommand_InvalidFlags(t *testing.T) {
	cli := NewCLI("1.0.0")

	for _, name := range []string{"server", "download", "install"} {
		t.Run(name, func(t *testing.T) {
			cmd, err := cli.ParseCommand([]string{name, "-invalid"})
			assert.Error(t, err)
			assert.Nil(t, cmd)
		})
	}
}

func TestPrintHelp(t *testing.T) {
	cli := NewCLI("1.0.0")

	var buf bytes.Buffer
	cli.PrintHelp(&buf)

	output := buf.String()
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "server")
	assert.Contains(t, output, "download")
	assert.Contains(t, output, "install")
}

func TestPrintVersion(t *testing.T) {
	cli := NewCLI("1.2.3")

	var buf bytes.Buffer
	cli.PrintVersion(&buf)

	assert.Contains(t, buf.String(), "1.2.3")
}

func TestCommand_String(t *testing.T) {
	testCases := []struct {
		name     string
		cmd      *Command
		contains string
	}{
		{"help", &Command{Type: CommandHelp}, "help"},
		{"version", &Command{Type: CommandVersion}, "version"},
		{"server", &Command{Type: CommandServer}, "server"},
		{"server with port", &Command{Type: CommandServer, Port: 9000}, "9000"},
		{"download", &Command{Type: CommandDownload, Download: DownloadArgs{URL: "https://youtu.be/x"}}, "youtu.be/x"},
		{"install", &Command{Type: CommandInstall}, "install"},
		{"install check only", &Command{Type: CommandInstall, CheckOnly: true}, "check"},
		{"unknown type", &Command{Type: CommandType(999)}, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, strings.Contains(tc.cmd.String(), tc.contains))
		})
	}
}

func TestRun(t *testing.T) {
	cli := NewCLI("1.0.0")

	testCases := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"help"}, 0},
		{"version", []string{"version"}, 0},
		{"no args", []string{}, 1},
		{"invalid command", []string{"invalid"}, 1},
		{"server", []string{"server"}, 0},
		{"download without url", []string{"download"}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cli.Run(tc.args))
		})
	}
}
