package types

const (
	// ModuleName is the error codespace of the chunk store.
	ModuleName = "chunks"

	// MaxChunks is the maximum number of chunks a blob can be split into. The
	// count is carried as a single byte on the wire.
	MaxChunks = 255

	// DefaultMaxChunkSize is the default maximum size of a single chunk.
	DefaultMaxChunkSize = 64 * 1024

	// CommitmentSize is the size of a blob commitment.
	CommitmentSize = 32
)
