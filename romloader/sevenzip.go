package romloader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// extractFrom7z extracts the first .gb file from a 7z archive
func extractFrom7z(r io.ReaderAt, size int64) ([]byte, string, error) {
	sr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}

	for _, sf := range sr.File {
		if sf.FileInfo().IsDir() || !isROMFile(sf.Name) {
			continue
		}

		rc, err := sf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", sf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", sf.Name, err)
		}
		return data, filepath.Base(sf.Name), nil
	}

	return nil, "", ErrNoROMFile
}
