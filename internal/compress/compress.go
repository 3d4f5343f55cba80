// Package compress adapts gzip to the stream stages used by the pipeline.
// It sits between the archive stage and the encryption stage, so compression
// happens before encryption (ciphertext does not compress).
package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// NewWriter wraps dst with a gzip compression stage at the default level.
// The returned writer must be closed to flush the gzip trailer; closing it
// does not close dst.
func NewWriter(dst io.Writer) (*gzip.Writer, error) {
	writer, err := gzip.NewWriterLevel(dst, gzip.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("creating compression writer: %w", err)
	}

	return writer, nil
}

// NewReader wraps src with a gzip decompression stage.
func NewReader(src io.Reader) (*gzip.Reader, error) {
	reader, err := gzip.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("creating decompression reader: %w", err)
	}

	return reader, nil
}
