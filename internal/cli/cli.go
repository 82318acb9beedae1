package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

var ErrMissingURL = errors.New("download requires -url")

// CommandType represents the type of CLI command
type CommandType int

const (
	CommandHelp CommandType = iota
	CommandVersion
	CommandServer
	CommandDownload
	CommandInstall
)

// DownloadArgs holds the flags of the download command
type DownloadArgs struct {
	URL     string
	Type    string
	Format  string
	Quality string
	Name    string
	OutDir  string
}

// Command represents a parsed CLI command
type Command struct {
	Type       CommandType
	Port       int
	ConfigPath string
	CheckOnly  bool
	Download   DownloadArgs
}

// String returns a string representation of the command
func (c *Command) String() string {
	switch c.Type {
	case CommandHelp:
		return "help"
	case CommandVersion:
		return "version"
	case CommandServer:
		if c.Port != 0 {
			return fmt.Sprintf("server (port: %d)", c.Port)
		}
		return "server"
	case CommandDownload:
		return fmt.Sprintf("download (url: %s)", c.Download.URL)
	case CommandInstall:
		if c.CheckOnly {
			return "install (check only)"
		}
		return "install"
	default:
		return "unknown"
	}
}

// CLI represents the command-line interface
type CLI struct {
	version string
}

// NewCLI creates a new CLI instance
func NewCLI(version string) *CLI {
	return &CLI{
		version: version,
	}
}

// ParseCommand parses command-line arguments and returns a Command
func (c *CLI) ParseCommand(args []string) (*Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command specified")
	}

	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return &Command{Type: CommandHelp}, nil
	}

	if args[0] == "-v" || args[0] == "--version" || args[0] == "version" {
		return &Command{Type: CommandVersion}, nil
	}

	switch args[0] {
	case "server":
		return c.parseServerCommand(args[1:])
	case "download":
		return c.parseDownloadCommand(args[1:])
	case "install":
		return c.parseInstallCommand(args[1:])
	default:
		return nil, fmt.Errorf("unknown command: %s", args[0])
	}
}

// parseServerCommand parses the server command
func (c *CLI) parseServerCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	port := fs.Int("port", 0, "Server port (overrides config)")
	configPath := fs.String("config", "", "Config file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *port < 0 || *port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", *port)
	}

	return &Command{
		Type:       CommandServer,
		Port:       *port,
		ConfigPath: *configPath,
	}, nil
}

// parseDownloadCommand parses the download command.
// The URL may also be given as the first positional argument.
func (c *CLI) parseDownloadCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	var d DownloadArgs
	fs.StringVar(&d.URL, "url", "", "YouTube video URL")
	fs.StringVar(&d.Type, "type", "video", "Media type: video or audio")
	fs.StringVar(&d.Format, "format", "", "Container: mp4/webm for video, mp3/m4a for audio")
	fs.StringVar(&d.Quality, "quality", "best", "Quality: best, 1080p, 720p, 480p, 360p")
	fs.StringVar(&d.Name, "name", "", "Custom file name without extension")
	fs.StringVar(&d.OutDir, "outdir", "", "Output directory (default from config)")
	configPath := fs.String("config", "", "Config file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if d.URL == "" && fs.NArg() > 0 {
		d.URL = fs.Arg(0)
	}
	if d.URL == "" {
		return nil, ErrMissingURL
	}

	return &Command{
		Type:       CommandDownload,
		ConfigPath: *configPath,
		Download:   d,
	}, nil
}

// parseInstallCommand parses the install command
func (c *CLI) parseInstallCommand(args []string) (*Command, error) {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	checkOnly := fs.Bool("check", false, "Only check for a newer yt-dlp without installing")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Command{
		Type:      CommandInstall,
		CheckOnly: *checkOnly,
	}, nil
}

// PrintHelp prints the help message
func (c *CLI) PrintHelp(w io.Writer) {
	help := `ytfetch - download YouTube videos and audio through yt-dlp

Usage:
  ytfetch [command] [flags]

Available Commands:
  server      Start HTTP API server
  download    Download a single video or audio track
  install     Install or update the managed yt-dlp binary
  version     Print version information
  help        Print this help message

Server Flags:
  -port int        Server port (default from config)
  -config string   Config file path

Download Flags:
  -url string      YouTube video URL (required)
  -type string     video or audio (default: video)
  -format string   mp4, webm, mp3 or m4a
  -quality string  best, 1080p, 720p, 480p, 360p (default: best)
  -name string     Custom file name
  -outdir string   Output directory

Install Flags:
  -check   Only check for updates without installing

Examples:
  ytfetch server
  ytfetch server -port 9000
  ytfetch download -url https://youtu.be/dQw4w9WgXcQ -quality 720p
  ytfetch download -url https://youtu.be/dQw4w9WgXcQ -type audio -format m4a
  ytfetch install
  ytfetch install -check
  ytfetch version
`
	fmt.Fprint(w, help)
}

// PrintVersion prints the version information
func (c *CLI) PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ytfetch version %s\n", c.version)
}

// Run executes the CLI with the given arguments
func (c *CLI) Run(args []string) int {
	cmd, err := c.ParseCommand(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		c.PrintHelp(os.Stderr)
		return 1
	}

	switch cmd.Type {
	case CommandHelp:
		c.PrintHelp(os.Stdout)
		return 0
	case CommandVersion:
		c.PrintVersion(os.Stdout)
		return 0
	default:
		// Other commands are handled by main
		return 0
	}
}
