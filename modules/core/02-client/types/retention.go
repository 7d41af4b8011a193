package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Retention tracks how many consensus states a client holds and the watermark
// below which they may be pruned. EarliestHeight never decreases.
type Retention struct {
	ConsensusStateCount uint64 `json:"consensus_state_count"`
	MaxConsensusStates  uint64 `json:"max_consensus_states"`
	EarliestHeight      uint64 `json:"earliest_height"`
}

// NewRetention returns the retention bookkeeping of a newly created client.
func NewRetention(maxConsensusStates uint64) Retention {
	return Retention{MaxConsensusStates: maxConsensusStates}
}

// Validate checks the retention parameters.
func (r Retention) Validate() error {
	if r.MaxConsensusStates == 0 {
		return errorsmod.Wrap(ErrInvalidRetentionParams, "max consensus states must be greater than zero")
	}
	return nil
}

// RecordInsert accounts for a newly stored consensus state. When the count exceeds
// MaxConsensusStates the watermark is advanced to the lowest height that is kept.
// Deletion itself happens in Prune.
func (r *Retention) RecordInsert(store ConsensusStore) error {
	r.ConsensusStateCount++
	if r.ConsensusStateCount <= r.MaxConsensusStates {
		return nil
	}

	var retained []uint64
	err := store.IterateAscending(func(height uint64, _ []byte) bool {
		// heights below the watermark are already awaiting pruning
		if height >= r.EarliestHeight {
			retained = append(retained, height)
		}
		return false
	})
	if err != nil {
		return err
	}

	if uint64(len(retained)) <= r.MaxConsensusStates {
		return nil
	}

	watermark := retained[uint64(len(retained))-r.MaxConsensusStates]
	if watermark > r.EarliestHeight {
		r.EarliestHeight = watermark
	}
	return nil
}

// Prune deletes every consensus state below EarliestHeight and returns the number deleted.
func (r *Retention) Prune(store ConsensusStore) (int, error) {
	var heights []uint64
	err := store.IterateAscending(func(height uint64, _ []byte) bool {
		if height >= r.EarliestHeight {
			return true
		}
		heights = append(heights, height)
		return false
	})
	if err != nil {
		return 0, err
	}

	for _, height := range heights {
		if err := store.Delete(height); err != nil {
			return 0, err
		}
	}

	if uint64(len(heights)) > r.ConsensusStateCount {
		return 0, errorsmod.Wrapf(ErrInvalidClientMetadata, "pruned %d consensus states but only %d were recorded", len(heights), r.ConsensusStateCount)
	}
	r.ConsensusStateCount -= uint64(len(heights))

	return len(heights), nil
}
