package dictionary

import (
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileExt is the extension of compiled dictionary files.
const FileExt = ".dict"

// FormatInfo describes what a dictionary file on disk must look like.
type FormatInfo struct {
	Description string
	Extensions  []string
	MinSize     int64
}

var dictFormat = FormatInfo{
	Description: "Compiled Predictive Text Dictionary",
	Extensions:  []string{FileExt},
	MinSize:     headerSize + 1, // header + empty diacritics table
}

// Format returns the on-disk format description.
func Format() FormatInfo { return dictFormat }

// ValidateFile checks the size, extension and header of a dictionary file
// without reading the whole buffer.
func ValidateFile(filename string) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	if fileInfo.Size() < dictFormat.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), dictFormat.Description, dictFormat.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range dictFormat.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, dictFormat.Description, dictFormat.Extensions)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var header [headerSize]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	return validateHeader(filename, header[0], header[1], fileInfo.Size())
}

func validateHeader(name string, prefixLimit, units byte, size int64) error {
	if prefixLimit == 0 {
		return fmt.Errorf("%w: %s has a zero prefix limit", ErrMalformed, name)
	}
	if units == 0 {
		return fmt.Errorf("%w: %s has an empty bloom filter", ErrMalformed, name)
	}
	if bits.OnesCount8(units) != 1 {
		// the mask would skip bytes; lookups still work but lose precision
		log.Warnf("Dictionary %s bloom size %d units is not a power of two", name, units)
	}
	if need := int64(headerSize) + int64(units)*bloomUnitBytes; size < need {
		return fmt.Errorf("%w: %s has %d bytes, bloom region needs %d",
			ErrMalformed, name, size, need)
	}
	log.Debugf("Dictionary file %s validated: prefixLimit=%d bloomUnits=%d", name, prefixLimit, units)
	return nil
}
