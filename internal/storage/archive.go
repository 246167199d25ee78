package storage

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

// ArchiveFile is one entry of a download archive.
type ArchiveFile struct {
	Name    string
	Content []byte
}

// WriteZip writes files as a deflate-compressed zip archive to w.
func WriteZip(w io.Writer, files []ArchiveFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// ZipBytes returns files packed into an in-memory zip archive.
func ZipBytes(files []ArchiveFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveName is the download name for a translation run of base at t.
func ArchiveName(base string, t time.Time) string {
	return fmt.Sprintf("%s_translated_%s.zip", base, t.Format("20060102_150405"))
}
