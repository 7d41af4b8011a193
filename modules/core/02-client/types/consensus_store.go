package types

import (
	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
)

// ConsensusStore is the height-ordered table of encoded consensus states of a
// single client. Entries are keyed by big endian height so iteration visits
// them in ascending height order.
type ConsensusStore struct {
	store dbm.DB
}

// NewConsensusStore wraps a client prefixed store.
func NewConsensusStore(clientStore dbm.DB) ConsensusStore {
	return ConsensusStore{store: clientStore}
}

// Get returns the encoded consensus state at height.
func (cs ConsensusStore) Get(height uint64) ([]byte, bool, error) {
	bz, err := cs.store.Get(host.ConsensusStateKey(height))
	if err != nil {
		return nil, false, err
	}
	if len(bz) == 0 {
		return nil, false, nil
	}
	return bz, true, nil
}

// Set writes the encoded consensus state at height.
func (cs ConsensusStore) Set(height uint64, bz []byte) error {
	return cs.store.Set(host.ConsensusStateKey(height), bz)
}

// Delete removes the consensus state at height.
func (cs ConsensusStore) Delete(height uint64) error {
	return cs.store.Delete(host.ConsensusStateKey(height))
}

// Previous returns the consensus state with the greatest height strictly lower than height.
func (cs ConsensusStore) Previous(height uint64) (uint64, []byte, bool, error) {
	iterator, err := cs.store.ReverseIterator(host.ConsensusStatePrefixKey(), host.ConsensusStateKey(height))
	if err != nil {
		return 0, nil, false, err
	}
	defer iterator.Close()

	return firstEntry(iterator)
}

// Next returns the consensus state with the lowest height strictly greater than height.
func (cs ConsensusStore) Next(height uint64) (uint64, []byte, bool, error) {
	if height == ^uint64(0) {
		return 0, nil, false, nil
	}

	iterator, err := cs.store.Iterator(host.ConsensusStateKey(height+1), host.ConsensusStatePrefixEndKey())
	if err != nil {
		return 0, nil, false, err
	}
	defer iterator.Close()

	return firstEntry(iterator)
}

// IterateAscending calls cb for every stored consensus state in ascending height
// order until cb returns true.
func (cs ConsensusStore) IterateAscending(cb func(height uint64, bz []byte) (stop bool)) error {
	iterator, err := dbm.IteratePrefix(cs.store, host.ConsensusStatePrefixKey())
	if err != nil {
		return err
	}
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		height, err := host.ParseConsensusStateKey(iterator.Key())
		if err != nil {
			return errorsmod.Wrap(ErrInvalidConsensus, err.Error())
		}
		if cb(height, iterator.Value()) {
			break
		}
	}

	return iterator.Error()
}

func firstEntry(iterator dbm.Iterator) (uint64, []byte, bool, error) {
	if !iterator.Valid() {
		return 0, nil, false, iterator.Error()
	}

	height, err := host.ParseConsensusStateKey(iterator.Key())
	if err != nil {
		return 0, nil, false, errorsmod.Wrap(ErrInvalidConsensus, err.Error())
	}

	return height, append([]byte(nil), iterator.Value()...), true, nil
}
