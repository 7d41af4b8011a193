package tendermint

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

// verifyMisbehaviour determines whether or not two conflicting
// headers at the same height would have convinced the light client.
//
// NOTE: consensusState1 is the trusted consensus state that corresponds to the TrustedHeight
// of misbehaviour.Header1
// Similarly, consensusState2 is the trusted consensus state that corresponds
// to misbehaviour.Header2
func (cs ClientState) verifyMisbehaviour(clientStore dbm.DB, misbehaviour *Misbehaviour, now time.Time) error {
	if err := misbehaviour.ValidateBasic(); err != nil {
		return err
	}

	if misbehaviour.Header1.SignedHeader.ChainID != cs.ChainID {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "misbehaviour chain-id %s does not match client chain-id %s", misbehaviour.Header1.SignedHeader.ChainID, cs.ChainID)
	}

	if !isMisbehaviour(misbehaviour) {
		return errorsmod.Wrap(clienttypes.ErrInvalidMisbehaviour, "headers are not conflicting: same block at the same height, or monotonically increasing time")
	}

	// Regardless of the type of misbehaviour, ensure that both headers are valid and would have been accepted by light-client

	// Retrieve trusted consensus states for each Header in misbehaviour
	tmConsensusState1, err := getConsensusState(clientStore, misbehaviour.Header1.TrustedHeight)
	if err != nil {
		return errorsmod.Wrapf(err, "could not get trusted consensus state from clientStore for Header1 at TrustedHeight: %d", misbehaviour.Header1.TrustedHeight)
	}

	tmConsensusState2, err := getConsensusState(clientStore, misbehaviour.Header2.TrustedHeight)
	if err != nil {
		return errorsmod.Wrapf(err, "could not get trusted consensus state from clientStore for Header2 at TrustedHeight: %d", misbehaviour.Header2.TrustedHeight)
	}

	// Check the validity of the two conflicting headers against their respective
	// trusted consensus states
	if err := checkTrustedHeader(misbehaviour.Header1, tmConsensusState1); err != nil {
		return errorsmod.Wrap(err, "verifying Header1 in Misbehaviour failed")
	}
	if err := cs.checkMisbehaviourHeader(misbehaviour.Header1, tmConsensusState1, now); err != nil {
		return errorsmod.Wrap(err, "verifying Header1 in Misbehaviour failed")
	}
	if err := checkTrustedHeader(misbehaviour.Header2, tmConsensusState2); err != nil {
		return errorsmod.Wrap(err, "verifying Header2 in Misbehaviour failed")
	}
	if err := cs.checkMisbehaviourHeader(misbehaviour.Header2, tmConsensusState2, now); err != nil {
		return errorsmod.Wrap(err, "verifying Header2 in Misbehaviour failed")
	}

	return nil
}

// isMisbehaviour returns true for two headers at the same height committing to
// different blocks, or for headers whose times do not increase with height.
func isMisbehaviour(misbehaviour *Misbehaviour) bool {
	if misbehaviour.Header1.GetHeight() == misbehaviour.Header2.GetHeight() {
		blockID1, blockID2 := blockID(misbehaviour.Header1), blockID(misbehaviour.Header2)

		// if heights are equal check that this is valid misbehaviour of a fork
		// ie. BFT time violation
		return !blockID1.Equals(blockID2)
	}

	// Header1 is at greater height than Header2, therefore Header1 time must be less than or equal to
	// Header2 time in order to be valid misbehaviour (violation of monotonic time).
	return !misbehaviour.Header1.GetTime().After(misbehaviour.Header2.GetTime())
}

// checkMisbehaviourHeader checks that a Header in Misbehaviour is valid misbehaviour given
// a trusted ConsensusState
func (cs ClientState) checkMisbehaviourHeader(header *Header, consState *ConsensusState, now time.Time) error {
	// assert that the age of the trusted consensus state is not older than the trusting period
	if now.Sub(consState.Timestamp) >= cs.TrustingPeriod {
		return errorsmod.Wrapf(
			ErrTrustingPeriodExpired,
			"current timestamp minus the latest consensus state timestamp is greater than or equal to the trusting period (%d >= %d)",
			now.Sub(consState.Timestamp), cs.TrustingPeriod,
		)
	}

	commit := header.SignedHeader.Commit

	// - ValidatorSet must have TrustLevel similarity with trusted FromValidatorSet
	// - ValidatorSets on both headers are valid given the last trusted ValidatorSet
	if err := header.TrustedValidators.VerifyCommitLightTrusting(cs.ChainID, commit, cs.TrustLevel.ToTendermint()); err != nil {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "validator set in header has too much change from trusted validator set: %v", err)
	}

	if err := header.ValidatorSet.VerifyCommitLight(cs.ChainID, commit.BlockID, commit.Height, commit); err != nil {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "validator set in header did not commit to header: %v", err)
	}

	return nil
}
