package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names a body compression algorithm.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// compressionTag identifies the algorithm used for one framed body.
// These values are protocol constants; changing them breaks artifacts
// already on disk.
type compressionTag uint8

const (
	tagNone compressionTag = 0
	tagLZ4  compressionTag = 1
	tagZstd compressionTag = 2
)

// maxBodySize bounds the uncompressed length accepted from a frame header.
const maxBodySize = 64 << 20

var errIncompressible = errors.New("data is incompressible")

// ParseCompression validates a compression name.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	case "":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("unknown compression %q", name)
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use via
// EncodeAll/DecodeAll, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// frame compresses data with the given algorithm and prepends the frame
// header: tag byte, then uvarint uncompressed length.
func frame(data []byte, c Compression) ([]byte, error) {
	tag := tagNone
	payload := data

	switch c {
	case CompressionLZ4:
		compressed, err := compressLZ4(data)
		switch {
		case err == nil:
			tag, payload = tagLZ4, compressed
		case !errors.Is(err, errIncompressible):
			return nil, err
		}
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) < len(data) {
			tag, payload = tagZstd, compressed
		}
	}

	header := make([]byte, 1, 1+binary.MaxVarintLen64+len(payload))
	header[0] = byte(tag)
	header = binary.AppendUvarint(header, uint64(len(data)))
	return append(header, payload...), nil
}

// unframe reverses frame.
func unframe(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, errors.New("empty frame")
	}
	tag := compressionTag(body[0])
	size, n := binary.Uvarint(body[1:])
	if n <= 0 {
		return nil, errors.New("corrupt frame header")
	}
	if size > maxBodySize {
		return nil, fmt.Errorf("frame size %d exceeds limit", size)
	}
	payload := body[1+n:]

	switch tag {
	case tagNone:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("raw frame: size %d does not match header %d", len(payload), size)
		}
		return payload, nil
	case tagLZ4:
		return decompressLZ4(payload, int(size))
	case tagZstd:
		out, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(out)) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression tag %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return dst[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return dst, nil
}
