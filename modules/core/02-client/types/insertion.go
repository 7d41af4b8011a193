package types

import (
	"bytes"
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// TimestampFn decodes an encoded consensus state and returns its timestamp in nanoseconds.
type TimestampFn func(bz []byte) (uint64, error)

// CheckConsensusInsertion decides whether a verified consensus state may be
// written at height. It returns noOp when a byte-identical state is already
// stored. A different state at the same height, or a timestamp that does not
// strictly increase with respect to the nearest stored states on either side,
// is misbehaviour: the returned error satisfies IsMisbehaviour and the caller
// must freeze the client instead of writing.
//
// The caller must hold the client lock for the duration of the check and the
// following write.
func CheckConsensusInsertion(store ConsensusStore, height uint64, bz []byte, timestamp uint64, timestampOf TimestampFn) (noOp bool, err error) {
	existing, found, err := store.Get(height)
	if err != nil {
		return false, err
	}
	if found {
		if bytes.Equal(existing, bz) {
			return true, nil
		}
		return false, errorsmod.Wrapf(ErrConflictingState, "height %d", height)
	}

	prevHeight, prevBz, found, err := store.Previous(height)
	if err != nil {
		return false, err
	}
	if found {
		prevTimestamp, err := timestampOf(prevBz)
		if err != nil {
			return false, err
		}
		if timestamp <= prevTimestamp {
			return false, errorsmod.Wrapf(ErrNonIncreasingTime, "timestamp %d at height %d is not after timestamp %d at height %d", timestamp, height, prevTimestamp, prevHeight)
		}
	}

	nextHeight, nextBz, found, err := store.Next(height)
	if err != nil {
		return false, err
	}
	if found {
		nextTimestamp, err := timestampOf(nextBz)
		if err != nil {
			return false, err
		}
		if timestamp >= nextTimestamp {
			return false, errorsmod.Wrapf(ErrNonIncreasingTime, "timestamp %d at height %d is not before timestamp %d at height %d", timestamp, height, nextTimestamp, nextHeight)
		}
	}

	return false, nil
}

// IsMisbehaviour returns true if err reports a consensus state inconsistency that
// freezes the client.
func IsMisbehaviour(err error) bool {
	return errors.Is(err, ErrConflictingState) || errors.Is(err, ErrNonIncreasingTime)
}
