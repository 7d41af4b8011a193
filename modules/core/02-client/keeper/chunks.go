package keeper

import (
	chunktypes "github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
)

// SubmitChunk stores one chunk of a client message uploaded by submitter. The
// client must be active.
func (k Keeper) SubmitChunk(submitter, clientID string, blobID uint64, index, total uint8, chunk []byte) error {
	if err := k.checkActive(clientID, "submit chunks for"); err != nil {
		return err
	}

	blob := chunktypes.BlobID{Submitter: submitter, ClientID: clientID, ID: blobID}
	return k.chunkKeeper.SubmitChunk(blob, index, total, chunk)
}

// CleanupChunks removes the chunks of a blob which was never assembled and returns
// the storage reclaimed for the submitter. It does not depend on the client status.
func (k Keeper) CleanupChunks(submitter, clientID string, blobID uint64) (chunktypes.Refund, error) {
	return k.chunkKeeper.Cleanup(chunktypes.BlobID{Submitter: submitter, ClientID: clientID, ID: blobID})
}

// HasChunks returns true if any chunk of the blob is stored.
func (k Keeper) HasChunks(submitter, clientID string, blobID uint64) (bool, error) {
	return k.chunkKeeper.HasBlob(chunktypes.BlobID{Submitter: submitter, ClientID: clientID, ID: blobID})
}
