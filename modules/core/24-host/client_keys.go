package host

import (
	"encoding/binary"
	"fmt"
)

// KeyClientStorePrefix defines the store key prefix for IBC clients
var KeyClientStorePrefix = []byte("clients")

// KeyChunkStorePrefix defines the store key prefix for uploaded chunks
var KeyChunkStorePrefix = []byte("chunks")

const (
	KeyClientState          = "clientState"
	KeyConsensusStatePrefix = "consensusStates"
	KeyNextClientSequence   = "nextClientSequence"
	KeyValidatorSetPrefix   = "validatorSets"
	KeyBlobMetadata         = "meta"
)

// ChunkStorePrefixKey returns the prefix under which every uploaded chunk is stored.
func ChunkStorePrefixKey() []byte {
	return []byte(fmt.Sprintf("%s/", KeyChunkStorePrefix))
}

// PrefixedClientStorePath returns a key path which can be used for prefixed
// key store iteration. The prefix may be a clientType, clientID, or any
// valid key prefix which may be concatenated with the client store constant.
func PrefixedClientStorePath(prefix []byte) string {
	return fmt.Sprintf("%s/%s/", KeyClientStorePrefix, prefix)
}

// PrefixedClientStoreKey returns a key which can be used for prefixed
// key store iteration.
func PrefixedClientStoreKey(prefix []byte) []byte {
	return []byte(PrefixedClientStorePath(prefix))
}

// ClientStateKey returns a store key under which a particular client state is stored
// in a client prefixed store
func ClientStateKey() []byte {
	return []byte(KeyClientState)
}

// NextClientSequenceKey returns the store key for the next client sequence.
func NextClientSequenceKey() []byte {
	return []byte(KeyNextClientSequence)
}

// ConsensusStatePrefixKey returns the prefix under which all consensus states of a client
// are stored in a client prefixed store.
func ConsensusStatePrefixKey() []byte {
	return []byte(KeyConsensusStatePrefix + "/")
}

// ConsensusStatePrefixEndKey returns the exclusive upper bound of the consensus state prefix.
func ConsensusStatePrefixEndKey() []byte {
	prefix := ConsensusStatePrefixKey()
	prefix[len(prefix)-1]++
	return prefix
}

// ConsensusStateKey returns the store key for the consensus state at a particular
// height stored in a client prefixed store. Heights are big endian encoded so
// that lexicographic iteration matches height order.
func ConsensusStateKey(height uint64) []byte {
	return append(ConsensusStatePrefixKey(), uint64ToBigEndian(height)...)
}

// ParseConsensusStateKey returns the height encoded in a consensus state key.
func ParseConsensusStateKey(key []byte) (uint64, error) {
	prefix := ConsensusStatePrefixKey()
	if len(key) != len(prefix)+8 || string(key[:len(prefix)]) != string(prefix) {
		return 0, fmt.Errorf("invalid consensus state key: %X", key)
	}
	return binary.BigEndian.Uint64(key[len(prefix):]), nil
}

// ValidatorSetKey returns the store key under which a cached validator set record is stored
// in a client module store.
func ValidatorSetKey(recordKey []byte) []byte {
	return append([]byte(KeyValidatorSetPrefix+"/"), recordKey...)
}

// BlobPrefixKey returns the prefix of every chunk record of a blob in the format:
// "{submitter}/{clientID}/{blobID}/".
func BlobPrefixKey(submitter, clientID string, blobID uint64) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s/", submitter, clientID, string(uint64ToBigEndian(blobID))))
}

// BlobMetadataKey returns the key of the blob metadata record.
func BlobMetadataKey(submitter, clientID string, blobID uint64) []byte {
	return append(BlobPrefixKey(submitter, clientID, blobID), KeyBlobMetadata...)
}

// ChunkKey returns the key of a single chunk of a blob.
func ChunkKey(submitter, clientID string, blobID uint64, index uint8) []byte {
	return append(BlobPrefixKey(submitter, clientID, blobID), 'c', index)
}

func uint64ToBigEndian(i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return b
}
