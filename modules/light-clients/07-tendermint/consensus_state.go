package tendermint

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

// ConsensusState defines the consensus state from Tendermint.
type ConsensusState struct {
	// timestamp that corresponds to the block height in which the ConsensusState
	// was stored.
	Timestamp time.Time `json:"timestamp"`
	// commitment root (i.e app hash)
	Root               []byte `json:"root"`
	NextValidatorsHash []byte `json:"next_validators_hash"`
}

// NewConsensusState creates a new ConsensusState instance.
func NewConsensusState(timestamp time.Time, root []byte, nextValsHash []byte) *ConsensusState {
	return &ConsensusState{
		Timestamp:          timestamp,
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// GetTimestamp returns block time in nanoseconds of the header that created consensus state
func (cs ConsensusState) GetTimestamp() uint64 {
	return uint64(cs.Timestamp.UnixNano())
}

// ValidateBasic defines a basic validation for the tendermint consensus state.
func (cs ConsensusState) ValidateBasic() error {
	if len(cs.Root) == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "root cannot be empty")
	}
	if len(cs.NextValidatorsHash) == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "next validators hash cannot be empty")
	}
	if err := tmtypes.ValidateHash(cs.NextValidatorsHash); err != nil {
		return errorsmod.Wrap(err, "next validators hash is invalid")
	}
	if cs.Timestamp.Unix() <= 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "timestamp must be a positive Unix time")
	}
	return nil
}

// consensusTimestamp decodes an encoded consensus state and returns its timestamp.
func consensusTimestamp(bz []byte) (uint64, error) {
	var consensusState ConsensusState
	if err := clienttypes.Unmarshal(bz, &consensusState); err != nil {
		return 0, errorsmod.Wrap(clienttypes.ErrInvalidConsensus, err.Error())
	}
	return consensusState.GetTimestamp(), nil
}
