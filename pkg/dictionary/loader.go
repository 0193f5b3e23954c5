package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Loader finds and reads compiled dictionaries named <language>.dict in a
// data directory.
type Loader struct {
	dirPath string
}

// LanguageInfo describes one dictionary file found by the Loader.
type LanguageInfo struct {
	Language string
	Filename string
	Size     int64
}

// NewLoader creates a loader rooted at dirPath.
func NewLoader(dirPath string) *Loader {
	return &Loader{dirPath: dirPath}
}

// Dir returns the data directory.
func (l *Loader) Dir() string { return l.dirPath }

// Available scans the data directory for dictionary files, sorted by language.
func (l *Loader) Available() ([]LanguageInfo, error) {
	pattern := filepath.Join(l.dirPath, "*"+FileExt)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for dictionary files: %w", err)
	}

	var langs []LanguageInfo
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			log.Warnf("Failed to stat dictionary %s: %v", file, err)
			continue
		}
		langs = append(langs, LanguageInfo{
			Language: strings.TrimSuffix(filepath.Base(file), FileExt),
			Filename: file,
			Size:     info.Size(),
		})
	}

	sort.Slice(langs, func(i, j int) bool {
		return langs[i].Language < langs[j].Language
	})
	return langs, nil
}

// Path returns the file a language is expected in.
func (l *Loader) Path(language string) string {
	return filepath.Join(l.dirPath, language+FileExt)
}

// Read validates and reads the raw dictionary buffer for language.
func (l *Loader) Read(language string) ([]byte, error) {
	if language == "" || strings.ContainsAny(language, `/\`) {
		return nil, fmt.Errorf("invalid language name %q", language)
	}
	filename := l.Path(language)
	if err := ValidateFile(filename); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", filename, err)
	}
	log.Debugf("Read dictionary %s (%d bytes)", filename, len(buf))
	return buf, nil
}

// Load reads and parses the dictionary for language.
func (l *Loader) Load(language string) (*Store, error) {
	buf, err := l.Read(language)
	if err != nil {
		return nil, err
	}
	return Load(buf)
}
