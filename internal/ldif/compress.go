package ldif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how an LDIF file is compressed.
type Compression string

const (
	// CompressionNone reads the file as plain text.
	CompressionNone Compression = "none"
	// CompressionGzip reads a gzip stream.
	CompressionGzip Compression = "gzip"
	// CompressionZstd reads a zstd stream.
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 reads an LZ4 frame stream.
	CompressionLZ4 Compression = "lz4"
	// CompressionAuto detects the format from the leading magic bytes.
	CompressionAuto Compression = "auto"
)

// ErrUnknownCompression is returned for an unrecognized compression name.
var ErrUnknownCompression = errors.New("ldif: unknown compression")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case "":
		return CompressionNone, nil
	case CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4, CompressionAuto:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// Open opens an LDIF file for reading. Closing the returned reader closes
// the decompressor and the file.
func Open(path string, c Compression, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ldif: open %s: %w", path, err)
	}

	rc, err := NewDecompressor(f, c)
	if err != nil {
		f.Close()
		return nil, err
	}

	return NewReader(&stackedReader{Reader: rc, closers: []io.Closer{rc, f}}, opts...), nil
}

// NewDecompressor wraps r so that reads return decompressed data. Closing the
// result releases the decompressor but not r.
func NewDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	if c == CompressionAuto {
		br := bufio.NewReader(r)
		detected, err := detectCompression(br)
		if err != nil {
			return nil, err
		}
		r, c = br, detected
	}

	switch c {
	case CompressionNone, "":
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("ldif: gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("ldif: zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
	}
}

// NewCompressor wraps w so that written data is compressed. Close flushes the
// compressor but does not close w.
func NewCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone, "":
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("ldif: zstd: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
	}
}

func detectCompression(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("ldif: detect compression: %w", err)
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd, nil
	case bytes.HasPrefix(head, lz4Magic):
		return CompressionLZ4, nil
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip, nil
	default:
		return CompressionNone, nil
	}
}

// stackedReader reads from the outermost layer and closes every layer in
// order.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
