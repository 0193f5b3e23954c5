package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	appDir      = "keyserve"
	dictPattern = "*.dict"
)

// PathResolver finds the directories keyserve reads from: compiled
// dictionaries and its config file. Paths are anchored at the real location
// of the binary so a symlinked install still finds its data.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver resolves the running binary and the user's home.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := newPathResolver(execPath, homeDir)
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", pr.executablePath, pr.configDir)
	return pr, nil
}

func newPathResolver(execPath, homeDir string) *PathResolver {
	return &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      platformConfigDir(homeDir),
	}
}

// platformConfigDir honours XDG_CONFIG_HOME on Linux and APPDATA on Windows.
func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDir)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appDir)
	}
	return filepath.Join(homeDir, ".config", appDir)
}

// ConfigDirCandidates lists where a config directory may live, preferred
// first.
func (pr *PathResolver) ConfigDirCandidates() []string {
	dirs := []string{pr.configDir}
	if runtime.GOOS == "darwin" {
		dirs = append(dirs, filepath.Join(pr.homeDir, "Library", "Application Support", appDir))
	}
	return append(dirs, pr.executableDir)
}

// WritableConfigDir returns the first config directory candidate that exists
// or can be created, and accepts writes. The executable directory is the
// last resort and is returned even when read-only.
func (pr *PathResolver) WritableConfigDir() string {
	candidates := pr.ConfigDirCandidates()
	for _, dir := range candidates[:len(candidates)-1] {
		if CheckDirStatus(dir).Writable {
			return dir
		}
	}
	return pr.executableDir
}

// DataDirCandidates lists where dictionaries are looked for: requested as
// given when absolute, then relative to the binary and the working
// directory, then the conventional data/ folders.
func (pr *PathResolver) DataDirCandidates(requested string) []string {
	var dirs []string
	if filepath.IsAbs(requested) {
		dirs = append(dirs, requested)
	} else {
		dirs = append(dirs, filepath.Join(pr.executableDir, requested))
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, filepath.Join(cwd, requested))
		}
	}
	dirs = append(dirs,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)
	return slices.Compact(dirs)
}

// GetDataDir returns the first candidate holding at least one dictionary.
// When none does, requested is returned resolved against the binary so the
// caller can report where it looked.
func (pr *PathResolver) GetDataDir(requested string) (string, error) {
	for _, dir := range pr.DataDirCandidates(requested) {
		if len(Dictionaries(dir)) > 0 {
			log.Debugf("Found valid data directory: %s", dir)
			return dir, nil
		}
		log.Debugf("No dictionaries in %s", dir)
	}
	return pr.ResolveRelativePath(requested), nil
}

// Dictionaries lists the compiled dictionaries in dir.
func Dictionaries(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, dictPattern))
	if err != nil {
		return nil
	}
	return matches
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}

// ResolveRelativePath anchors a relative path at the executable directory.
func (pr *PathResolver) ResolveRelativePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(pr.executableDir, path)
}

// GetRuntimeInfo is printed in debug mode.
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}
	for _, name := range []string{"HOME", "XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(name); value != "" {
			info["env_"+strings.ToLower(name)] = value
		}
	}
	return info
}
