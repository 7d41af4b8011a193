package types

import (
	"crypto/sha256"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Params bound the size of uploaded blobs.
type Params struct {
	MaxChunkSize uint64 `json:"max_chunk_size" yaml:"max_chunk_size"`
	MaxChunks    uint8  `json:"max_chunks" yaml:"max_chunks"`
}

// DefaultParams returns the default chunk store parameters.
func DefaultParams() Params {
	return Params{
		MaxChunkSize: DefaultMaxChunkSize,
		MaxChunks:    MaxChunks,
	}
}

// Validate checks the chunk store parameters.
func (p Params) Validate() error {
	if p.MaxChunkSize == 0 {
		return errorsmod.Wrap(ErrChunkTooLarge, "max chunk size must be greater than zero")
	}
	if p.MaxChunks == 0 {
		return errorsmod.Wrap(ErrInvalidChunkCount, "max chunks must be greater than zero")
	}
	return nil
}

// BlobMetadata is stored alongside the chunks of a blob and pins the total chunk
// count announced by the first submitted chunk.
type BlobMetadata struct {
	TotalChunks uint8  `json:"total_chunks"`
	StoredBytes uint64 `json:"stored_bytes"`
}

// Refund is the storage reclaimed for a submitter when chunk records are deleted.
type Refund struct {
	Submitter string
	Bytes     uint64
}

// BlobID identifies a blob uploaded by a submitter for a client.
type BlobID struct {
	Submitter string
	ClientID  string
	ID        uint64
}

// Validate checks that the identifier can be used as a store key.
func (b BlobID) Validate() error {
	if strings.TrimSpace(b.Submitter) == "" {
		return errorsmod.Wrap(ErrInvalidSubmitter, "submitter cannot be blank")
	}
	if strings.ContainsRune(b.Submitter, '/') {
		return errorsmod.Wrapf(ErrInvalidSubmitter, "submitter %s cannot contain separator '/'", b.Submitter)
	}
	if strings.TrimSpace(b.ClientID) == "" || strings.ContainsRune(b.ClientID, '/') {
		return errorsmod.Wrapf(ErrInvalidSubmitter, "invalid client identifier %q", b.ClientID)
	}
	return nil
}

// Commitment returns the commitment of a blob, the SHA-256 of its bytes.
func Commitment(blob []byte) []byte {
	hash := sha256.Sum256(blob)
	return hash[:]
}

// Split divides blob into chunks of at most chunkSize bytes.
func Split(blob []byte, chunkSize int) ([][]byte, error) {
	if len(blob) == 0 {
		return nil, errorsmod.Wrap(ErrEmptyChunk, "cannot split an empty blob")
	}
	if chunkSize <= 0 {
		return nil, errorsmod.Wrapf(ErrChunkTooLarge, "invalid chunk size %d", chunkSize)
	}

	var chunks [][]byte
	for start := 0; start < len(blob); start += chunkSize {
		end := start + chunkSize
		if end > len(blob) {
			end = len(blob)
		}
		chunks = append(chunks, blob[start:end])
	}

	if len(chunks) > MaxChunks {
		return nil, errorsmod.Wrapf(ErrInvalidChunkCount, "blob requires %d chunks, maximum is %d", len(chunks), MaxChunks)
	}
	return chunks, nil
}
