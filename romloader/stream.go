package romloader

import (
	"archive/tar"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// openStream wraps r in the decompressor for format. The returned name is
// the original filename recorded in the stream, if any.
func openStream(r io.Reader, format formatType) (io.Reader, string, func(), error) {
	switch format {
	case formatGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open gzip: %w", err)
		}
		return gz, gz.Name, func() { gz.Close() }, nil

	case formatZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open zstd: %w", err)
		}
		return zr, "", zr.Close, nil

	case formatXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open xz: %w", err)
		}
		return xr, "", func() {}, nil

	case formatLZ4:
		return lz4.NewReader(r), "", func() {}, nil
	}

	return nil, "", nil, ErrUnsupportedFormat
}

// streamInnerName strips the compression extension from path. Short tar
// forms such as .tgz map to .tar.
func streamInnerName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	switch strings.ToLower(ext) {
	case ".tgz", ".tzst", ".txz":
		return stem + ".tar"
	case ".gz", ".zst", ".xz", ".lz4":
		return stem
	}
	return base
}

// extractFromStream decompresses a single-file stream. A wrapped tar
// archive is searched for the first .gb file.
func extractFromStream(r io.Reader, format formatType, path string) ([]byte, string, error) {
	dr, recorded, closeFn, err := openStream(r, format)
	if err != nil {
		return nil, "", err
	}
	defer closeFn()

	name := streamInnerName(path)
	if strings.HasSuffix(strings.ToLower(name), ".tar") {
		return extractFromTar(dr)
	}

	data, err := limitedRead(dr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress %s: %w", filepath.Base(path), err)
	}
	if recorded != "" {
		name = filepath.Base(recorded)
	}
	return data, name, nil
}

// extractFromTar extracts the first regular .gb file from a tar stream
func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isROMFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoROMFile
}
