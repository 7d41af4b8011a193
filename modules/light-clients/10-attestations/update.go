package attestations

import (
	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// verifyClientMessage checks the signatures of an AttestationProof over a
// StateAttestation and returns the attestation.
func (cs ClientState) verifyClientMessage(clientMsg []byte) (StateAttestation, error) {
	if cs.IsFrozen() {
		return StateAttestation{}, errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", cs.FrozenHeight)
	}

	attestationProof, err := UnmarshalAttestationProof(clientMsg)
	if err != nil {
		return StateAttestation{}, errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	stateAttestation, err := DecodeStateAttestation(attestationProof.AttestationData)
	if err != nil {
		return StateAttestation{}, errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}
	if stateAttestation.Height == 0 {
		return StateAttestation{}, errorsmod.Wrap(clienttypes.ErrInvalidHeader, "attested height cannot be zero")
	}

	consensusState := ConsensusState{Timestamp: stateAttestation.Timestamp}
	if err := consensusState.ValidateBasic(); err != nil {
		return StateAttestation{}, errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	if _, err := cs.verifySignatures(attestationProof.AttestationData, attestationProof.Signatures); err != nil {
		return StateAttestation{}, err
	}

	return stateAttestation, nil
}

// updateState stores the attested consensus state. An identical state already
// stored at the height is a no-op. A conflicting state or a timestamp which is
// not strictly between its stored neighbours freezes the client, and the frozen
// client state is persisted before the misbehaviour error is returned.
func (cs *ClientState) updateState(clientStore dbm.DB, attestation StateAttestation) (exported.UpdateResult, error) {
	height := attestation.Height
	consensusState := ConsensusState{Timestamp: attestation.Timestamp}
	consensusBz := clienttypes.MustMarshal(consensusState)
	store := clienttypes.NewConsensusStore(clientStore)

	if height < cs.Retention.EarliestHeight {
		return exported.UpdateResult{}, errorsmod.Wrapf(clienttypes.ErrInvalidHeight, "height %d is below the pruning watermark %d", height, cs.Retention.EarliestHeight)
	}

	noOp, err := clienttypes.CheckConsensusInsertion(store, height, consensusBz, consensusState.Timestamp, consensusTimestamp)
	switch {
	case clienttypes.IsMisbehaviour(err):
		cs.FrozenHeight = height
		if setErr := setClientState(clientStore, cs); setErr != nil {
			return exported.UpdateResult{}, setErr
		}
		return exported.UpdateResult{}, err
	case err != nil:
		return exported.UpdateResult{}, err
	case noOp:
		return exported.UpdateResult{Height: height, NoOp: true}, nil
	}

	if err := store.Set(height, consensusBz); err != nil {
		return exported.UpdateResult{}, err
	}
	if err := cs.Retention.RecordInsert(store); err != nil {
		return exported.UpdateResult{}, err
	}
	if height > cs.LatestHeight {
		cs.LatestHeight = height
	}
	if err := setClientState(clientStore, cs); err != nil {
		return exported.UpdateResult{}, err
	}

	return exported.UpdateResult{Height: height}, nil
}
