// Package ytdl wires yt-dlp into the download orchestrator: it installs and
// updates the yt-dlp binary, probes for ffmpeg and runs extraction jobs.
package ytdl

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"ytfetch/internal/logger"
)

const (
	ytdlpReleaseAPI = "https://api.github.com/repos/yt-dlp/yt-dlp/releases/latest"
	versionFile     = "yt-dlp.version"
	checksumAsset   = "SHA2-256SUMS"
	requestTimeout  = 5 * time.Minute
)

// HTTPClient interface for mocking
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// Manager handles yt-dlp installation and updates
type Manager struct {
	utilsDir       string
	currentVersion string
	httpClient     HTTPClient
}

// GitHubRelease represents a GitHub release
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewManager creates a new yt-dlp manager
func NewManager(utilsDir string) *Manager {
	return NewManagerWithClient(utilsDir, &http.Client{Timeout: requestTimeout})
}

// NewManagerWithClient creates a manager with a custom HTTP client
func NewManagerWithClient(utilsDir string, client HTTPClient) *Manager {
	if err := os.MkdirAll(utilsDir, 0755); err != nil {
		logger.Warn("failed to create utils directory", "dir", utilsDir, "error", err)
	}

	m := &Manager{
		utilsDir:   utilsDir,
		httpClient: client,
	}
	m.currentVersion = m.readVersion()

	return m
}

// GetYtdlpPath returns the path to the managed yt-dlp executable
func (m *Manager) GetYtdlpPath() string {
	return filepath.Join(m.utilsDir, detectPlatform())
}

// IsInstalled checks if the managed yt-dlp binary exists
func (m *Manager) IsInstalled() bool {
	info, err := os.Stat(m.GetYtdlpPath())
	return err == nil && info.Mode().IsRegular()
}

// GetCurrentVersion returns the installed release tag, if known
func (m *Manager) GetCurrentVersion() string {
	return m.currentVersion
}

// ResolveExecutable picks the yt-dlp binary to run. An explicitly configured
// path wins, then the managed install. Empty means "look it up on PATH".
func (m *Manager) ResolveExecutable(configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	if m.IsInstalled() {
		return m.GetYtdlpPath()
	}
	return ""
}

// CheckForUpdate checks if a newer version is available
func (m *Manager) CheckForUpdate() (string, bool, error) {
	release, err := m.fetchRelease()
	if err != nil {
		return "", false, fmt.Errorf("failed to check for updates: %w", err)
	}

	if !m.IsInstalled() {
		return release.TagName, true, nil
	}

	if m.currentVersion == "" || m.currentVersion != release.TagName {
		return release.TagName, true, nil
	}

	return release.TagName, false, nil
}

// Download downloads and installs the latest yt-dlp release
func (m *Manager) Download() error {
	release, err := m.fetchRelease()
	if err != nil {
		return fmt.Errorf("failed to fetch release info: %w", err)
	}

	platform := detectPlatform()
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == platform {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}

	if downloadURL == "" {
		return fmt.Errorf("no asset found for platform: %s", platform)
	}

	logger.Info("downloading yt-dlp", "version", release.TagName, "asset", platform)
	resp, err := m.httpClient.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download yt-dlp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	ytdlpPath := m.GetYtdlpPath()
	tmpPath := ytdlpPath + ".tmp"

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if expected, err := m.expectedChecksum(release, platform); err != nil {
		os.Remove(tmpPath)
		return err
	} else if expected != "" {
		if err := verifyChecksum(tmpPath, expected); err != nil {
			os.Remove(tmpPath)
			return err
		}
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to make executable: %w", err)
	}

	// keep the previous binary until the new one is in place
	backupPath := ytdlpPath + ".old"
	hadPrevious := m.IsInstalled()
	if hadPrevious {
		os.Remove(backupPath)
		if err := os.Rename(ytdlpPath, backupPath); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to back up old file: %w", err)
		}
	}

	if err := os.Rename(tmpPath, ytdlpPath); err != nil {
		if hadPrevious {
			if rerr := os.Rename(backupPath, ytdlpPath); rerr != nil {
				logger.Error("failed to restore previous yt-dlp", "error", rerr)
			}
		}
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	if hadPrevious {
		os.Remove(backupPath)
	}

	m.currentVersion = release.TagName
	if err := m.writeVersion(release.TagName); err != nil {
		logger.Warn("failed to record yt-dlp version", "error", err)
	}

	logger.Info("yt-dlp installed", "version", release.TagName, "path", ytdlpPath)
	return nil
}

// EnsureInstalled ensures yt-dlp is installed, downloading if necessary
func (m *Manager) EnsureInstalled() error {
	if m.IsInstalled() {
		return nil
	}

	logger.Info("yt-dlp not found, downloading", "dir", m.utilsDir)
	return m.Download()
}

// AutoUpdate checks for and applies updates if available
func (m *Manager) AutoUpdate() error {
	latestVersion, hasUpdate, err := m.CheckForUpdate()
	if err != nil {
		return err
	}

	if !hasUpdate {
		logger.Info("yt-dlp is up to date", "version", latestVersion)
		return nil
	}

	logger.Info("updating yt-dlp", "from", m.currentVersion, "to", latestVersion)
	return m.Download()
}

func (m *Manager) fetchRelease() (*GitHubRelease, error) {
	resp, err := m.httpClient.Get(ytdlpReleaseAPI)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release info: %w", err)
	}

	if release.TagName == "" {
		return nil, fmt.Errorf("release has no tag")
	}

	return &release, nil
}

// expectedChecksum looks up the published SHA-256 of asset. Releases
// without a checksum file yield "".
func (m *Manager) expectedChecksum(release *GitHubRelease, asset string) (string, error) {
	var sumsURL string
	for _, a := range release.Assets {
		if a.Name == checksumAsset {
			sumsURL = a.BrowserDownloadURL
			break
		}
	}
	if sumsURL == "" {
		return "", nil
	}

	resp, err := m.httpClient.Get(sumsURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checksums: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checksum download failed with status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && strings.TrimPrefix(fields[1], "*") == asset {
			return strings.ToLower(fields[0]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read checksums: %w", err)
	}

	return "", fmt.Errorf("no checksum listed for %s", asset)
}

// verifyChecksum compares the SHA-256 of a file with the expected hex digest
func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}

	return nil
}

func (m *Manager) readVersion() string {
	data, err := os.ReadFile(filepath.Join(m.utilsDir, versionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (m *Manager) writeVersion(version string) error {
	return os.WriteFile(filepath.Join(m.utilsDir, versionFile), []byte(version+"\n"), 0644)
}

// detectPlatform returns the yt-dlp release asset name for the current platform
func detectPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "yt-dlp.exe"
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "yt-dlp_linux_aarch64"
		}
		return "yt-dlp_linux"
	case "darwin":
		return "yt-dlp_macos"
	default:
		return "yt-dlp"
	}
}
