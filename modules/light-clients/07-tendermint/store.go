package tendermint

import (
	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
)

// setClientState stores the client state
func setClientState(clientStore dbm.DB, clientState *ClientState) error {
	key := host.ClientStateKey()
	val := clienttypes.MustMarshal(clientState)
	return clientStore.Set(key, val)
}

// setConsensusState stores the consensus state at the given height.
func setConsensusState(clientStore dbm.DB, consensusState *ConsensusState, height uint64) error {
	return clienttypes.NewConsensusStore(clientStore).Set(height, clienttypes.MustMarshal(consensusState))
}

// getClientState retrieves the client state from the client prefixed store.
// If the ClientState does not exist in the store, ErrClientNotFound is returned.
func getClientState(clientStore dbm.DB) (*ClientState, error) {
	bz, err := clientStore.Get(host.ClientStateKey())
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, clienttypes.ErrClientNotFound
	}

	clientState := new(ClientState)
	if err := clienttypes.Unmarshal(bz, clientState); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidClient, "failed to decode client state: %v", err)
	}
	return clientState, nil
}

// getConsensusState retrieves the consensus state from the client prefixed store.
// If the ConsensusState does not exist in the store for the given height,
// ErrConsensusStateNotFound is returned.
func getConsensusState(clientStore dbm.DB, height uint64) (*ConsensusState, error) {
	bz, found, err := clienttypes.NewConsensusStore(clientStore).Get(height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errorsmod.Wrapf(clienttypes.ErrConsensusStateNotFound, "height %d", height)
	}

	consensusState := new(ConsensusState)
	if err := clienttypes.Unmarshal(bz, consensusState); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidConsensus, "failed to decode consensus state at height %d: %v", height, err)
	}
	return consensusState, nil
}
