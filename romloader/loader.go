// Package romloader handles loading ROM files from various sources,
// including archives (ZIP, 7z, RAR) and compressed streams (gzip, zstd,
// xz, lz4), optionally wrapping a tar archive.
package romloader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicZstd   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicLZ4    = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Maximum ROM size (8MB safety limit)
const maxROMSize = 8 * 1024 * 1024

// ErrNoROMFile is returned when no .gb file is found in an archive
var ErrNoROMFile = errors.New("no .gb file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRawROM
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatZstd
	formatXZ
	formatLZ4
)

// Loader reads ROM images from a filesystem.
type Loader struct {
	fs afero.Fs
}

// New returns a Loader reading from fs.
func New(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// LoadROM loads a ROM from a path on the host filesystem.
func LoadROM(path string) ([]byte, string, error) {
	return New(afero.NewOsFs()).Load(path)
}

// Load loads a ROM from path. It automatically detects and extracts from
// archives. Returns the ROM data, the filename of the ROM (useful for
// display), and any error encountered.
func (l *Loader) Load(path string) ([]byte, string, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat file: %w", err)
	}

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)

	// Reset file position
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch format {
	case formatRawROM:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil

	case formatZIP:
		return extractFromZIP(f, info.Size())

	case format7z:
		return extractFrom7z(f, info.Size())

	case formatRAR:
		return extractFromRAR(f)

	case formatGzip, formatZstd, formatXZ, formatLZ4:
		return extractFromStream(f, format, path)

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	// Check magic bytes first (more reliable)
	switch {
	case bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case bytes.HasPrefix(header, magicZstd):
		return formatZstd
	case bytes.HasPrefix(header, magicLZ4):
		return formatLZ4
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	// Fall back to extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gb":
		return formatRawROM
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".zst", ".tzst":
		return formatZstd
	case ".xz", ".txz":
		return formatXZ
	case ".lz4":
		return formatLZ4
	}

	return formatUnknown
}

// isROMFile checks if a filename has a .gb extension (case-insensitive)
func isROMFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".gb")
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxROMSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// extractFromZIP extracts the first .gb file from a ZIP archive
func extractFromZIP(r io.ReaderAt, size int64) ([]byte, string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !isROMFile(zf.Name) {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", zf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", zf.Name, err)
		}
		return data, filepath.Base(zf.Name), nil
	}

	return nil, "", ErrNoROMFile
}
