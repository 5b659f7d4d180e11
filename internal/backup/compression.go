package backup

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType identifies a supported archive compression algorithm
type CompressionType string

const (
	CompressionGzip CompressionType = "gzip"
	CompressionZstd CompressionType = "zstd"
	CompressionLz4  CompressionType = "lz4"
)

// Compressor defines compression operations for archive export
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Algorithm() CompressionType
	Extension() string
}

// CompressionManager manages the available compressors
type CompressionManager struct {
	compressors map[CompressionType]Compressor
}

// NewCompressionManager creates a manager with all supported algorithms
func NewCompressionManager() *CompressionManager {
	return &CompressionManager{
		compressors: map[CompressionType]Compressor{
			CompressionGzip: &gzipCompressor{},
			CompressionZstd: &zstdCompressor{},
			CompressionLz4:  &lz4Compressor{},
		},
	}
}

// Get returns the compressor for the given algorithm
func (cm *CompressionManager) Get(algorithm CompressionType) (Compressor, error) {
	compressor, ok := cm.compressors[algorithm]
	if !ok {
		return nil, NewCompressionError(fmt.Sprintf("unsupported compression algorithm: %s", algorithm), nil)
	}
	return compressor, nil
}

// gzipCompressor implements Compressor using the standard library gzip

type gzipCompressor struct{}

func (c *gzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, NewCompressionError("gzip compression failed", err)
	}
	if err := writer.Close(); err != nil {
		return nil, NewCompressionError("gzip compression failed", err)
	}
	return buf.Bytes(), nil
}

func (c *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewCompressionError("gzip decompression failed", err)
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewCompressionError("gzip decompression failed", err)
	}
	return out, nil
}

func (c *gzipCompressor) Algorithm() CompressionType { return CompressionGzip }
func (c *gzipCompressor) Extension() string          { return ".gz" }

// zstdCompressor implements Compressor using klauspost/compress

type zstdCompressor struct{}

func (c *zstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, NewCompressionError("zstd encoder initialization failed", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil), nil
}

func (c *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, NewCompressionError("zstd decoder initialization failed", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, NewCompressionError("zstd decompression failed", err)
	}
	return out, nil
}

func (c *zstdCompressor) Algorithm() CompressionType { return CompressionZstd }
func (c *zstdCompressor) Extension() string          { return ".zst" }

// lz4Compressor implements Compressor using pierrec/lz4

type lz4Compressor struct{}

func (c *lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, NewCompressionError("lz4 compression failed", err)
	}
	if err := writer.Close(); err != nil {
		return nil, NewCompressionError("lz4 compression failed", err)
	}
	return buf.Bytes(), nil
}

func (c *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewCompressionError("lz4 decompression failed", err)
	}
	return out, nil
}

func (c *lz4Compressor) Algorithm() CompressionType { return CompressionLz4 }
func (c *lz4Compressor) Extension() string          { return ".lz4" }
