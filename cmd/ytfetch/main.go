package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"ytfetch/internal/api"
	"ytfetch/internal/cli"
	"ytfetch/internal/config"
	"ytfetch/internal/delivery"
	"ytfetch/internal/downloader"
	"ytfetch/internal/logger"
	"ytfetch/internal/ytdl"
	"ytfetch/pkg/models"
)

const Version = "0.1.0"

func main() {
	cliApp := cli.NewCLI(Version)

	if len(os.Args) < 2 {
		cliApp.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	cmd, err := cliApp.ParseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cliApp.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	if cmd.Type == cli.CommandHelp {
		cliApp.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	if cmd.Type == cli.CommandVersion {
		cliApp.PrintVersion(os.Stdout)
		os.Exit(0)
	}

	os.Exit(executeCommand(cmd))
}

func executeCommand(cmd *cli.Command) int {
	switch cmd.Type {
	case cli.CommandServer:
		return runServer(cmd.ConfigPath, cmd.Port)
	case cli.CommandDownload:
		return runDownload(cmd.ConfigPath, cmd.Download)
	case cli.CommandInstall:
		return runInstall(cmd.CheckOnly)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd.String())
		return 1
	}
}

// loadConfig reads the config file and initialises logging from it
func loadConfig(path string) (*models.Config, error) {
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfgMgr, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}

	cfg := cfgMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Debug("config loaded", "path", cfgMgr.Path())

	return cfg, nil
}

// newOrchestrator wires yt-dlp and ffmpeg into a download orchestrator
func newOrchestrator(cfg *models.Config, mgr *ytdl.Manager) *downloader.Orchestrator {
	if cfg.YtdlAutoInstall && cfg.YtdlPath == "" {
		if err := mgr.EnsureInstalled(); err != nil {
			logger.Warn("failed to install yt-dlp, falling back to PATH", "error", err)
		}
	}

	engine := ytdl.NewEngine(
		mgr.ResolveExecutable(cfg.YtdlPath),
		time.Duration(cfg.JobTimeoutSeconds)*time.Second,
	)
	probe := ytdl.NewFFmpegProbe(cfg.FfmpegPath)
	if !probe.Available() {
		logger.Warn("ffmpeg not found; audio downloads are disabled and video is saved without merging", "path", probe.Path)
	}

	return downloader.NewOrchestrator(engine, probe,
		downloader.WithUserAgent(cfg.UserAgent),
		downloader.WithLogger(logger.L),
	)
}

func runServer(configPath string, port int) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	if port != 0 {
		cfg.ServerPort = port
	}

	mgr := ytdl.NewManager(config.GetUtilsDir())
	orchestrator := newOrchestrator(cfg, mgr)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Warn("failed to create output directory", "dir", cfg.OutputDir, "error", err)
	}
	gateway := delivery.NewGateway(cfg.ServableDirs()...)

	server := api.NewServer(cfg, orchestrator, gateway,
		api.WithYtdlManager(mgr),
		api.WithVersion(Version),
	)

	if err := server.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		return 1
	}

	fmt.Printf("Server listening on http://%s\n", server.GetActualAddr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		logger.Error("shutdown failed", "error", err)
		return 1
	}

	return 0
}

func runDownload(configPath string, args cli.DownloadArgs) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	req, err := buildRequest(cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	orchestrator := newOrchestrator(cfg, ytdl.NewManager(config.GetUtilsDir()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Downloading %s...\n", req.URL)
	file, err := orchestrator.Submit(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Download failed (%s): %v\n", downloader.ErrorKind(err), err)
		if errors.Is(err, downloader.ErrMissingDependency) {
			fmt.Fprintln(os.Stderr, "Install ffmpeg or set ffmpegPath in the config file")
		}
		return 1
	}

	fmt.Printf("Saved %s (%s)\n", file.Path(), humanize.Bytes(uint64(file.Size)))
	return 0
}

// buildRequest applies config defaults to the download flags
func buildRequest(cfg *models.Config, args cli.DownloadArgs) (models.DownloadRequest, error) {
	kind, err := models.ParseMediaKind(args.Type)
	if err != nil {
		return models.DownloadRequest{}, err
	}
	container, err := models.ParseContainer(kind, args.Format)
	if err != nil {
		return models.DownloadRequest{}, err
	}
	quality, err := models.ParseQuality(args.Quality)
	if err != nil {
		return models.DownloadRequest{}, err
	}

	outDir := args.OutDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	return models.DownloadRequest{
		URL:        args.URL,
		MediaKind:  kind,
		Container:  container,
		Quality:    quality,
		CustomName: args.Name,
		OutputDir:  outDir,
	}, nil
}

func runInstall(checkOnly bool) int {
	mgr := ytdl.NewManager(config.GetUtilsDir())

	if !checkOnly {
		if err := mgr.AutoUpdate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error installing yt-dlp: %v\n", err)
			return 1
		}
		fmt.Printf("yt-dlp %s is installed at %s\n", mgr.GetCurrentVersion(), mgr.GetYtdlpPath())
		return 0
	}

	latest, hasUpdate, err := mgr.CheckForUpdate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking for updates: %v\n", err)
		return 1
	}

	current := mgr.GetCurrentVersion()
	if current == "" {
		current = "none"
	}

	if !hasUpdate {
		fmt.Printf("yt-dlp is up to date (version %s)\n", current)
		return 0
	}

	fmt.Printf("yt-dlp update available: %s -> %s\n", current, latest)
	fmt.Println("Run 'ytfetch install' to install it")
	return 0
}
