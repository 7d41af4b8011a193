package tendermint

import (
	"bytes"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/tendermint/tendermint/light"
	tmtypes "github.com/tendermint/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// verifyHeader returns an error if:
// - the client or header provided are not parseable to tendermint types
// - the header is invalid
// - header height is less than or equal to the trusted header height
// - header valset commit verification fails
// - header timestamp is past the trusting period in relation to the consensus state
// - header timestamp is less than or equal to the consensus state timestamp
//
// A header whose commit is valid but whose time does not move past the trusted
// consensus state is misbehaviour and the returned error satisfies
// clienttypes.IsMisbehaviour.
func (cs ClientState) verifyHeader(clientStore dbm.DB, header *Header, now time.Time) error {
	if err := header.ValidateBasic(); err != nil {
		return errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	trustedConsState, err := getConsensusState(clientStore, header.TrustedHeight)
	if err != nil {
		return errorsmod.Wrapf(err, "could not get trusted consensus state from clientStore for Header at TrustedHeight: %d", header.TrustedHeight)
	}

	if err := checkTrustedHeader(header, trustedConsState); err != nil {
		return err
	}

	if header.SignedHeader.ChainID != cs.ChainID {
		return errorsmod.Wrapf(ErrHeaderVerificationFailed, "header chain-id %s does not match client chain-id %s", header.SignedHeader.ChainID, cs.ChainID)
	}

	if !header.GetTime().After(trustedConsState.Timestamp) {
		// the header could only have been produced by a faulty validator set
		if err := cs.checkMisbehaviourHeader(header, trustedConsState, now); err != nil {
			return errorsmod.Wrap(ErrHeaderVerificationFailed, err.Error())
		}
		return errorsmod.Wrapf(clienttypes.ErrNonIncreasingTime, "header time %s at height %d is not after trusted time %s at height %d",
			header.GetTime(), header.GetHeight(), trustedConsState.Timestamp, header.TrustedHeight)
	}

	// Construct a trusted header using the fields in consensus state
	// Only Height, Time, and NextValidatorsHash are necessary for verification
	trustedHeader := tmtypes.Header{
		ChainID:            cs.ChainID,
		Height:             int64(header.TrustedHeight),
		Time:               trustedConsState.Timestamp,
		NextValidatorsHash: trustedConsState.NextValidatorsHash,
	}
	signedHeader := tmtypes.SignedHeader{
		Header: &trustedHeader,
	}

	// Verify next header with the passed-in trustedVals
	// - asserts trusting period not passed
	// - assert header timestamp is not past the trusting period
	// - assert header timestamp is past latest stored consensus state timestamp
	// - assert that a TrustLevel proportion of TrustedValidators signed new Commit
	err = light.Verify(
		&signedHeader,
		header.TrustedValidators, header.SignedHeader, header.ValidatorSet,
		cs.TrustingPeriod, now, cs.MaxClockDrift, cs.TrustLevel.ToTendermint(),
	)
	if err != nil {
		return errorsmod.Wrap(ErrHeaderVerificationFailed, err.Error())
	}

	return nil
}

// checkTrustedHeader checks that consensus state matches trusted fields of Header
func checkTrustedHeader(header *Header, consState *ConsensusState) error {
	// assert that trustedVals is NextValidators of last trusted header
	// to do this, we check that trustedVals.Hash() == consState.NextValidatorsHash
	tvalHash := header.TrustedValidators.Hash()
	if !bytes.Equal(consState.NextValidatorsHash, tvalHash) {
		return errorsmod.Wrapf(
			ErrInvalidValidatorSet,
			"trusted validators %s, does not hash to latest trusted validators. Expected: %X, got: %X",
			header.TrustedValidators, consState.NextValidatorsHash, tvalHash,
		)
	}
	return nil
}

// updateState stores the consensus state derived from a verified header. An
// identical state already stored at the header height is a no-op. A conflicting
// state, or a timestamp which is not strictly between its stored neighbours,
// freezes the client.
func (cs *ClientState) updateState(clientStore dbm.DB, header *Header) (exported.UpdateResult, error) {
	height := header.GetHeight()
	consensusState := header.ConsensusState()
	consensusBz := clienttypes.MustMarshal(consensusState)
	store := clienttypes.NewConsensusStore(clientStore)

	if height < cs.Retention.EarliestHeight {
		return exported.UpdateResult{}, errorsmod.Wrapf(clienttypes.ErrInvalidHeight, "height %d is below the pruning watermark %d", height, cs.Retention.EarliestHeight)
	}

	noOp, err := clienttypes.CheckConsensusInsertion(store, height, consensusBz, consensusState.GetTimestamp(), consensusTimestamp)
	switch {
	case clienttypes.IsMisbehaviour(err):
		return exported.UpdateResult{}, cs.freeze(clientStore, height, err)
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

// freeze sets the frozen height, persists the client state and returns cause.
func (cs *ClientState) freeze(clientStore dbm.DB, height uint64, cause error) error {
	cs.FrozenHeight = height
	if err := setClientState(clientStore, cs); err != nil {
		return err
	}
	return cause
}
