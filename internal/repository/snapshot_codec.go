package repository

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Cached snapshots are JSON compressed with zstd. Ticket threads are
// repetitive text and compress well.

// The encoder and decoder are safe for concurrent use and reused across
// calls.
var (
	snapshotEncoder *zstd.Encoder
	snapshotDecoder *zstd.Decoder
)

func init() {
	var err error
	snapshotEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("repository: zstd encoder initialization failed: " + err.Error())
	}
	snapshotDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("repository: zstd decoder initialization failed: " + err.Error())
	}
}

func encodeSnapshot(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return snapshotEncoder.EncodeAll(data, nil), nil
}

func decodeSnapshot(data []byte, dst any) error {
	raw, err := snapshotDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}
