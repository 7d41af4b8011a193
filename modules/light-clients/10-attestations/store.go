package attestations

import (
	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
)

// getClientState retrieves the client state from the client prefixed store.
func getClientState(store dbm.DB) (*ClientState, error) {
	bz, err := store.Get(host.ClientStateKey())
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, clienttypes.ErrClientNotFound
	}

	var clientState ClientState
	if err := clienttypes.Unmarshal(bz, &clientState); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidClient, "failed to decode client state: %v", err)
	}
	return &clientState, nil
}

// setClientState stores the client state
func setClientState(store dbm.DB, clientState *ClientState) error {
	return store.Set(host.ClientStateKey(), clienttypes.MustMarshal(clientState))
}

// getConsensusState retrieves the consensus state at height. It returns
// ErrConsensusStateNotFound if no state is stored at height.
func getConsensusState(store dbm.DB, height uint64) (*ConsensusState, error) {
	bz, found, err := clienttypes.NewConsensusStore(store).Get(height)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errorsmod.Wrapf(clienttypes.ErrConsensusStateNotFound, "height %d", height)
	}

	var consensusState ConsensusState
	if err := clienttypes.Unmarshal(bz, &consensusState); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidConsensus, "failed to decode consensus state at height %d: %v", height, err)
	}
	return &consensusState, nil
}
