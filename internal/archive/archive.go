// Package archive moves processed batch files out of the inbox into
// zstd-compressed cold storage.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Archive compresses srcPath into archiveDir/{batch-name}.jsonl.zst and
// removes the source file. Returns the archive path.
func Archive(srcPath, archiveDir string) (string, error) {
	name := batchName(srcPath)
	if name == "" {
		return "", fmt.Errorf("cannot extract batch name from %s", srcPath)
	}

	destPath := ArchivePath(name, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	if err := os.Remove(srcPath); err != nil {
		return "", fmt.Errorf("remove source after archive: %w", err)
	}

	return destPath, nil
}

// Open opens a batch file for reading, transparently decompressing
// .jsonl.zst archives. The caller must close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &archiveReader{decoder: decoder, file: f}, nil
}

type archiveReader struct {
	decoder *zstd.Decoder
	file    *os.File
}

func (r *archiveReader) Read(p []byte) (int, error) { return r.decoder.Read(p) }

func (r *archiveReader) Close() error {
	r.decoder.Close()
	return r.file.Close()
}

// IsArchived returns true if an archive file exists for the batch name.
func IsArchived(name, archiveDir string) bool {
	_, err := os.Stat(ArchivePath(name, archiveDir))
	return err == nil
}

// ArchivePath returns the deterministic archive path for a batch name.
func ArchivePath(name, archiveDir string) string {
	return filepath.Join(archiveDir, name+".jsonl.zst")
}

func batchName(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".jsonl") {
		return strings.TrimSuffix(base, ".jsonl")
	}
	if strings.HasSuffix(base, ".jsonl.zst") {
		return strings.TrimSuffix(base, ".jsonl.zst")
	}
	return ""
}
