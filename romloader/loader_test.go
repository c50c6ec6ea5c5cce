package romloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// newTestLoader returns a loader over an in-memory filesystem
func newTestLoader() (*Loader, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(fs), fs
}

// writeTestFile stores data at path, failing the test on error
func writeTestFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

// zipBytes builds a zip archive holding the given name/data pairs
func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// tarBytes builds a tar archive holding a single file
func tarBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(data)), Typeflag: tar.TypeReg}
	if err := w.WriteHeader(hdr); err != nil {
		t.Fatalf("Failed to write tar header: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to tar: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close tar: %v", err)
	}
	return buf.Bytes()
}

// compress runs data through the compressor for format
func compress(t *testing.T, format formatType, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch format {
	case formatGzip:
		w = gzip.NewWriter(&buf)
	case formatZstd:
		w, err = zstd.NewWriter(&buf)
	case formatXZ:
		w, err = xz.NewWriter(&buf)
	case formatLZ4:
		w = lz4.NewWriter(&buf)
	default:
		t.Fatalf("no compressor for format %d", format)
	}
	if err != nil {
		t.Fatalf("Failed to create compressor: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close compressor: %v", err)
	}
	return buf.Bytes()
}

// TestLoader_RawROMLoad tests loading plain .gb files
func TestLoader_RawROMLoad(t *testing.T) {
	l, fs := newTestLoader()
	testData := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	writeTestFile(t, fs, "/roms/test.gb", testData)

	data, name, err := l.Load("/roms/test.gb")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}
	if name != "test.gb" {
		t.Errorf("Name mismatch: expected test.gb, got %s", name)
	}
}

// TestLoader_ZipLoad tests loading a ROM from ZIP archives, skipping
// other entries and keeping only the base name
func TestLoader_ZipLoad(t *testing.T) {
	l, fs := newTestLoader()
	testData := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	writeTestFile(t, fs, "/game.zip", zipBytes(t, map[string][]byte{
		"readme.txt":           []byte("hello"),
		"roms/games/tetris.gb": testData,
	}))

	data, name, err := l.Load("/game.zip")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}
	if name != "tetris.gb" {
		t.Errorf("Name should be just the filename, got %s", name)
	}
}

// TestLoader_NoROMInArchive tests error when no .gb found in archive
func TestLoader_NoROMInArchive(t *testing.T) {
	l, fs := newTestLoader()
	writeTestFile(t, fs, "/test.zip", zipBytes(t, map[string][]byte{"readme.txt": []byte("hello")}))

	_, _, err := l.Load("/test.zip")
	if !errors.Is(err, ErrNoROMFile) {
		t.Errorf("Expected ErrNoROMFile, got %v", err)
	}
}

// TestLoader_CompressedStreams tests single-file streams in every
// supported compression format
func TestLoader_CompressedStreams(t *testing.T) {
	testData := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 64)
	testCases := []struct {
		path   string
		format formatType
		name   string
	}{
		{"/game.gb.gz", formatGzip, "game.gb"},
		{"/game.gb.zst", formatZstd, "game.gb"},
		{"/game.gb.xz", formatXZ, "game.gb"},
		{"/game.gb.lz4", formatLZ4, "game.gb"},
	}

	for _, tc := range testCases {
		l, fs := newTestLoader()
		writeTestFile(t, fs, tc.path, compress(t, tc.format, testData))

		data, name, err := l.Load(tc.path)
		if err != nil {
			t.Errorf("%s: Load failed: %v", tc.path, err)
			continue
		}
		if !bytes.Equal(data, testData) {
			t.Errorf("%s: data mismatch", tc.path)
		}
		if name != tc.name {
			t.Errorf("%s: expected name %s, got %s", tc.path, tc.name, name)
		}
	}
}

// TestLoader_GzipRecordedName tests that the name stored in the gzip
// header wins over the path
func TestLoader_GzipRecordedName(t *testing.T) {
	l, fs := newTestLoader()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Name = "original.gb"
	w.Write([]byte{0x01})
	w.Close()
	writeTestFile(t, fs, "/download.gz", buf.Bytes())

	_, name, err := l.Load("/download.gz")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if name != "original.gb" {
		t.Errorf("Name mismatch: expected original.gb, got %s", name)
	}
}

// TestLoader_CompressedTar tests tar archives inside compressed streams
func TestLoader_CompressedTar(t *testing.T) {
	testData := []byte{0x12, 0x34, 0x56}
	archive := tarBytes(t, "dir/inner.gb", testData)

	testCases := []struct {
		path   string
		format formatType
	}{
		{"/pack.tar.gz", formatGzip},
		{"/pack.tgz", formatGzip},
		{"/pack.tar.zst", formatZstd},
		{"/pack.txz", formatXZ},
		{"/pack.tar.lz4", formatLZ4},
	}

	for _, tc := range testCases {
		l, fs := newTestLoader()
		writeTestFile(t, fs, tc.path, compress(t, tc.format, archive))

		data, name, err := l.Load(tc.path)
		if err != nil {
			t.Errorf("%s: Load failed: %v", tc.path, err)
			continue
		}
		if !bytes.Equal(data, testData) || name != "inner.gb" {
			t.Errorf("%s: got %v named %s", tc.path, data, name)
		}
	}
}

// TestLoader_FormatDetectionMagic tests detection via magic bytes
func TestLoader_FormatDetectionMagic(t *testing.T) {
	testCases := []struct {
		header   []byte
		path     string
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, "file.dat", formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, "file.dat", formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "file.dat", format7z},
		{[]byte{0x1F, 0x8B}, "file.dat", formatGzip},
		{[]byte{0x52, 0x61, 0x72, 0x21}, "file.dat", formatRAR},
		{[]byte{0x28, 0xB5, 0x2F, 0xFD}, "file.dat", formatZstd},
		{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, "file.dat", formatXZ},
		{[]byte{0x04, 0x22, 0x4D, 0x18}, "file.dat", formatLZ4},
		{[]byte{0x1F, 0x8B}, "file.gb", formatGzip},
	}

	for _, tc := range testCases {
		result := detectFormat(tc.header, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat(%v, %s): expected %d, got %d", tc.header, tc.path, tc.expected, result)
		}
	}
}

// TestLoader_FormatDetectionExtension tests fallback to extension
func TestLoader_FormatDetectionExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.gb", formatRawROM},
		{"game.GB", formatRawROM},
		{"game.zip", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.rar", formatRAR},
		{"game.zst", formatZstd},
		{"game.xz", formatXZ},
		{"game.lz4", formatLZ4},
		{"game.gbc", formatUnknown},
		{"game.unknown", formatUnknown},
	}

	for _, tc := range testCases {
		// Use empty header to force extension-based detection
		result := detectFormat([]byte{}, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat([], %s): expected %d, got %d", tc.path, tc.expected, result)
		}
	}
}

// TestLoader_CorruptArchives tests that damaged archives report errors
// instead of data
func TestLoader_CorruptArchives(t *testing.T) {
	testCases := []struct {
		path string
		data []byte
	}{
		{"/bad.7z", append([]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, make([]byte, 26)...)},
		{"/bad.rar", []byte("Rar!\x1a\x07\x00garbage")},
		{"/bad.zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}},
		{"/bad.xz", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00, 0xFF}},
	}

	for _, tc := range testCases {
		l, fs := newTestLoader()
		writeTestFile(t, fs, tc.path, tc.data)
		if data, _, err := l.Load(tc.path); err == nil {
			t.Errorf("%s: expected error, got %d bytes", tc.path, len(data))
		}
	}
}

// TestLoader_FileTooLarge tests rejection of files exceeding size limit
func TestLoader_FileTooLarge(t *testing.T) {
	largeData := make([]byte, maxROMSize+1)

	l, fs := newTestLoader()
	writeTestFile(t, fs, "/large.gb", largeData)
	if _, _, err := l.Load("/large.gb"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("raw: expected ErrFileTooLarge, got %v", err)
	}

	writeTestFile(t, fs, "/large.gb.gz", compress(t, formatGzip, largeData))
	if _, _, err := l.Load("/large.gb.gz"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("gzip: expected ErrFileTooLarge, got %v", err)
	}
}

// TestLoader_FileNotFound tests error for missing files
func TestLoader_FileNotFound(t *testing.T) {
	l, _ := newTestLoader()
	if _, _, err := l.Load("/nonexistent/path/game.gb"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

// TestLoader_UnsupportedFormat tests unknown files
func TestLoader_UnsupportedFormat(t *testing.T) {
	l, fs := newTestLoader()
	writeTestFile(t, fs, "/notes.txt", []byte("hello world"))
	if _, _, err := l.Load("/notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

// TestLoader_EmptyFile tests handling of empty files
func TestLoader_EmptyFile(t *testing.T) {
	l, fs := newTestLoader()
	writeTestFile(t, fs, "/empty.gb", []byte{})

	data, _, err := l.Load("/empty.gb")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty data, got %d bytes", len(data))
	}
}

// TestLoader_IsROMFile tests the .gb extension check
func TestLoader_IsROMFile(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"game.gb", true},
		{"game.GB", true},
		{"game.Gb", true},
		{"game.gbc", false},
		{"game.gb.bak", false},
		{"game", false},
		{".gb", true},
	}

	for _, tc := range testCases {
		result := isROMFile(tc.name)
		if result != tc.expected {
			t.Errorf("isROMFile(%q): expected %v, got %v", tc.name, tc.expected, result)
		}
	}
}

// TestLoader_StreamInnerName tests compression suffix stripping
func TestLoader_StreamInnerName(t *testing.T) {
	testCases := map[string]string{
		"/a/game.gb.gz": "game.gb",
		"pack.tgz":      "pack.tar",
		"pack.tar.zst":  "pack.tar",
		"pack.txz":      "pack.tar",
		"game.gb.lz4":   "game.gb",
		"mystery.bin":   "mystery.bin",
	}
	for in, want := range testCases {
		if got := streamInnerName(in); got != want {
			t.Errorf("streamInnerName(%q): expected %q, got %q", in, want, got)
		}
	}
}
