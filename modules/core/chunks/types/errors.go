package types

import (
	errorsmod "cosmossdk.io/errors"
)

// chunk store sentinel errors
var (
	ErrDuplicateChunk       = errorsmod.Register(ModuleName, 2, "chunk already submitted with different content")
	ErrMissingChunk         = errorsmod.Register(ModuleName, 3, "chunk missing")
	ErrCommitmentMismatch   = errorsmod.Register(ModuleName, 4, "reassembled blob does not match commitment")
	ErrInvalidChunkIndex    = errorsmod.Register(ModuleName, 5, "invalid chunk index")
	ErrInvalidChunkCount    = errorsmod.Register(ModuleName, 6, "invalid total chunk count")
	ErrChunkTooLarge        = errorsmod.Register(ModuleName, 7, "chunk exceeds maximum size")
	ErrEmptyChunk           = errorsmod.Register(ModuleName, 8, "chunk cannot be empty")
	ErrBlobNotFound         = errorsmod.Register(ModuleName, 9, "blob not found")
	ErrInvalidSubmitter     = errorsmod.Register(ModuleName, 10, "invalid chunk submitter")
	ErrInvalidCommitment    = errorsmod.Register(ModuleName, 11, "invalid blob commitment")
	ErrTotalChunksMismatch  = errorsmod.Register(ModuleName, 12, "total chunk count does not match the blob")
	ErrInvalidChunkMetadata = errorsmod.Register(ModuleName, 13, "invalid chunk metadata")
)
