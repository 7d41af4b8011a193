package keeper

import (
	"bytes"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	metrics "github.com/armon/go-metrics"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightcore/internal/keylock"
	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
	coremetrics "github.com/cosmos/ibc-lightcore/modules/core/metrics"
)

// Keeper stores blob chunks uploaded independently and reassembles them once
// every chunk is present.
type Keeper struct {
	store  dbm.DB
	params types.Params
	locks  *keylock.Map
	logger log.Logger
}

// NewKeeper creates a new chunk Keeper storing its records under the chunks
// prefix of db.
func NewKeeper(db dbm.DB, params types.Params, logger log.Logger) Keeper {
	if err := params.Validate(); err != nil {
		panic(err)
	}

	return Keeper{
		store:  dbm.NewPrefixDB(db, host.ChunkStorePrefixKey()),
		params: params,
		locks:  keylock.New(),
		logger: logger.With("module", fmt.Sprintf("x/%s", types.ModuleName)),
	}
}

// Params returns the chunk store parameters.
func (k Keeper) Params() types.Params {
	return k.params
}

// SubmitChunk stores a single chunk of a blob. Chunks may be submitted in any order.
// Resubmitting identical bytes for an index is a no-op, different bytes fail
// with ErrDuplicateChunk.
func (k Keeper) SubmitChunk(blob types.BlobID, index, total uint8, data []byte) error {
	if err := blob.Validate(); err != nil {
		return err
	}
	if total == 0 || total > k.params.MaxChunks {
		return errorsmod.Wrapf(types.ErrInvalidChunkCount, "total chunks must be within [1, %d], got %d", k.params.MaxChunks, total)
	}
	if index >= total {
		return errorsmod.Wrapf(types.ErrInvalidChunkIndex, "index %d must be lower than total chunks %d", index, total)
	}
	if len(data) == 0 {
		return errorsmod.Wrapf(types.ErrEmptyChunk, "chunk %d", index)
	}
	if uint64(len(data)) > k.params.MaxChunkSize {
		return errorsmod.Wrapf(types.ErrChunkTooLarge, "chunk %d has %d bytes, maximum is %d", index, len(data), k.params.MaxChunkSize)
	}

	unlock := k.locks.Lock(string(host.BlobPrefixKey(blob.Submitter, blob.ClientID, blob.ID)))
	defer unlock()

	metadata, found, err := k.getMetadata(blob)
	if err != nil {
		return err
	}
	if found && metadata.TotalChunks != total {
		return errorsmod.Wrapf(types.ErrTotalChunksMismatch, "blob %d was announced with %d chunks, got %d", blob.ID, metadata.TotalChunks, total)
	}

	chunkKey := host.ChunkKey(blob.Submitter, blob.ClientID, blob.ID, index)
	existing, err := k.store.Get(chunkKey)
	if err != nil {
		return err
	}
	if existing != nil {
		if bytes.Equal(existing, data) {
			return nil
		}
		return errorsmod.Wrapf(types.ErrDuplicateChunk, "blob %d index %d", blob.ID, index)
	}

	metadata.TotalChunks = total
	metadata.StoredBytes += uint64(len(data))

	batch := k.store.NewBatch()
	defer batch.Close()

	if err := batch.Set(chunkKey, data); err != nil {
		return err
	}
	if err := batch.Set(host.BlobMetadataKey(blob.Submitter, blob.ClientID, blob.ID), clienttypes.MustMarshal(metadata)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}

	k.logger.Debug("chunk stored", "client-id", blob.ClientID, "submitter", blob.Submitter, "blob-id", blob.ID, "index", index, "total", total)

	return nil
}

// Assemble concatenates the chunks of a blob in index order and checks the result
// against commitment. On success every record of the blob is deleted and the
// reclaimed storage is returned to the submitter. On failure the chunks are kept
// so that they can be completed or removed with Cleanup.
func (k Keeper) Assemble(blob types.BlobID, commitment []byte, total uint8) ([]byte, types.Refund, error) {
	if err := blob.Validate(); err != nil {
		return nil, types.Refund{}, err
	}
	if len(commitment) != types.CommitmentSize {
		return nil, types.Refund{}, errorsmod.Wrapf(types.ErrInvalidCommitment, "expected %d bytes, got %d", types.CommitmentSize, len(commitment))
	}

	unlock := k.locks.Lock(string(host.BlobPrefixKey(blob.Submitter, blob.ClientID, blob.ID)))
	defer unlock()

	metadata, found, err := k.getMetadata(blob)
	if err != nil {
		return nil, types.Refund{}, err
	}
	if !found {
		return nil, types.Refund{}, errorsmod.Wrapf(types.ErrBlobNotFound, "client %s blob %d from %s", blob.ClientID, blob.ID, blob.Submitter)
	}
	if metadata.TotalChunks != total {
		return nil, types.Refund{}, errorsmod.Wrapf(types.ErrTotalChunksMismatch, "blob %d was announced with %d chunks, got %d", blob.ID, metadata.TotalChunks, total)
	}

	assembled := make([]byte, 0, metadata.StoredBytes)
	for i := 0; i < int(total); i++ {
		chunk, err := k.store.Get(host.ChunkKey(blob.Submitter, blob.ClientID, blob.ID, uint8(i)))
		if err != nil {
			return nil, types.Refund{}, err
		}
		if chunk == nil {
			return nil, types.Refund{}, errorsmod.Wrapf(types.ErrMissingChunk, "blob %d index %d of %d", blob.ID, i, total)
		}
		assembled = append(assembled, chunk...)
	}

	if !bytes.Equal(types.Commitment(assembled), commitment) {
		return nil, types.Refund{}, errorsmod.Wrapf(types.ErrCommitmentMismatch, "expected %X, got %X", commitment, types.Commitment(assembled))
	}

	refund, err := k.deleteBlob(blob)
	if err != nil {
		return nil, types.Refund{}, err
	}

	k.logger.Debug("blob assembled", "client-id", blob.ClientID, "submitter", blob.Submitter, "blob-id", blob.ID, "bytes", len(assembled))

	return assembled, refund, nil
}

// Cleanup removes every record of a blob without assembling it and returns the
// storage reclaimed for the submitter.
func (k Keeper) Cleanup(blob types.BlobID) (types.Refund, error) {
	if err := blob.Validate(); err != nil {
		return types.Refund{}, err
	}

	unlock := k.locks.Lock(string(host.BlobPrefixKey(blob.Submitter, blob.ClientID, blob.ID)))
	defer unlock()

	if _, found, err := k.getMetadata(blob); err != nil {
		return types.Refund{}, err
	} else if !found {
		return types.Refund{}, errorsmod.Wrapf(types.ErrBlobNotFound, "client %s blob %d from %s", blob.ClientID, blob.ID, blob.Submitter)
	}

	refund, err := k.deleteBlob(blob)
	if err != nil {
		return types.Refund{}, err
	}

	k.logger.Info("orphaned blob removed", "client-id", blob.ClientID, "submitter", blob.Submitter, "blob-id", blob.ID, "bytes", refund.Bytes)

	metrics.IncrCounterWithLabels(
		[]string{"ibc", types.ModuleName, "cleanup"},
		1,
		[]metrics.Label{
			{Name: coremetrics.LabelClientID, Value: blob.ClientID},
			{Name: coremetrics.LabelSubmitter, Value: blob.Submitter},
		},
	)

	return refund, nil
}

// HasBlob returns true if any chunk of the blob is stored.
func (k Keeper) HasBlob(blob types.BlobID) (bool, error) {
	return k.store.Has(host.BlobMetadataKey(blob.Submitter, blob.ClientID, blob.ID))
}

func (k Keeper) getMetadata(blob types.BlobID) (types.BlobMetadata, bool, error) {
	bz, err := k.store.Get(host.BlobMetadataKey(blob.Submitter, blob.ClientID, blob.ID))
	if err != nil {
		return types.BlobMetadata{}, false, err
	}
	if bz == nil {
		return types.BlobMetadata{}, false, nil
	}

	var metadata types.BlobMetadata
	if err := clienttypes.Unmarshal(bz, &metadata); err != nil {
		return types.BlobMetadata{}, false, errorsmod.Wrapf(types.ErrInvalidChunkMetadata, "blob %d: %v", blob.ID, err)
	}
	return metadata, true, nil
}

// deleteBlob removes the metadata and every chunk of a blob. The caller must hold the blob lock.
func (k Keeper) deleteBlob(blob types.BlobID) (types.Refund, error) {
	iterator, err := dbm.IteratePrefix(k.store, host.BlobPrefixKey(blob.Submitter, blob.ClientID, blob.ID))
	if err != nil {
		return types.Refund{}, err
	}

	var (
		keys      [][]byte
		reclaimed uint64
	)
	metaKey := host.BlobMetadataKey(blob.Submitter, blob.ClientID, blob.ID)
	for ; iterator.Valid(); iterator.Next() {
		key := append([]byte(nil), iterator.Key()...)
		if !bytes.Equal(key, metaKey) {
			reclaimed += uint64(len(iterator.Value()))
		}
		keys = append(keys, key)
	}
	if err := iterator.Error(); err != nil {
		iterator.Close()
		return types.Refund{}, err
	}
	iterator.Close()

	batch := k.store.NewBatch()
	defer batch.Close()

	for _, key := range keys {
		if err := batch.Delete(key); err != nil {
			return types.Refund{}, err
		}
	}
	if err := batch.Write(); err != nil {
		return types.Refund{}, err
	}

	return types.Refund{Submitter: blob.Submitter, Bytes: reclaimed}, nil
}
