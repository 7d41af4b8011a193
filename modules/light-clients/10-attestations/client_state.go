package attestations

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// ModuleName is the name of the attestations light client.
const ModuleName = exported.Attestations

// ClientState tracks a remote chain through the signatures of a fixed set of
// attestors, of which at least MinRequiredSigs must sign every attestation.
type ClientState struct {
	AttestorAddresses []string              `json:"attestor_addresses"`
	MinRequiredSigs   uint32                `json:"min_required_sigs"`
	LatestHeight      uint64                `json:"latest_height"`
	FrozenHeight      uint64                `json:"frozen_height"`
	Retention         clienttypes.Retention `json:"retention"`
}

// ConsensusState is the attested timestamp of the remote chain at a height.
type ConsensusState struct {
	// Timestamp in nanoseconds.
	Timestamp uint64 `json:"timestamp"`
}

// NewClientState creates a new ClientState instance.
func NewClientState(attestorAddresses []string, minRequiredSigs uint32, latestHeight, maxConsensusStates uint64) *ClientState {
	return &ClientState{
		AttestorAddresses: attestorAddresses,
		MinRequiredSigs:   minRequiredSigs,
		LatestHeight:      latestHeight,
		Retention:         clienttypes.NewRetention(maxConsensusStates),
	}
}

// ClientType is Attestations.
func (ClientState) ClientType() string {
	return exported.Attestations
}

// IsFrozen returns true if misbehaviour was detected for the client.
func (cs ClientState) IsFrozen() bool {
	return cs.FrozenHeight != 0
}

// Validate performs basic validation of the client state fields. An empty
// attestor set is rejected whatever the threshold.
func (cs ClientState) Validate() error {
	if len(cs.AttestorAddresses) == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidClient, "attestor addresses cannot be empty")
	}
	if cs.MinRequiredSigs == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidClient, "min required sigs cannot be 0")
	}
	if cs.MinRequiredSigs > uint32(len(cs.AttestorAddresses)) {
		return errorsmod.Wrapf(clienttypes.ErrInvalidClient, "min required sigs %d cannot exceed number of attestors %d", cs.MinRequiredSigs, len(cs.AttestorAddresses))
	}

	seen := make(map[string]struct{}, len(cs.AttestorAddresses))
	for _, addr := range cs.AttestorAddresses {
		if !common.IsHexAddress(addr) {
			return errorsmod.Wrapf(ErrInvalidAttestorAddress, "invalid attestor address format: %q", addr)
		}
		normalized := strings.ToLower(common.HexToAddress(addr).Hex())
		if _, ok := seen[normalized]; ok {
			return errorsmod.Wrapf(ErrInvalidAttestorAddress, "duplicate attestor address %s", addr)
		}
		seen[normalized] = struct{}{}
	}

	if cs.LatestHeight == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidClient, "latest height must be greater than 0")
	}

	return cs.Retention.Validate()
}

// status returns Frozen if misbehaviour was detected, Active otherwise.
// Attestation clients do not expire.
func (cs ClientState) status() exported.Status {
	if cs.IsFrozen() {
		return exported.Frozen
	}
	return exported.Active
}

// ValidateBasic defines basic validation for the attestations consensus state.
func (cs ConsensusState) ValidateBasic() error {
	if cs.Timestamp == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "timestamp cannot be 0")
	}
	return nil
}

func consensusTimestamp(bz []byte) (uint64, error) {
	var consensusState ConsensusState
	if err := clienttypes.Unmarshal(bz, &consensusState); err != nil {
		return 0, errorsmod.Wrap(clienttypes.ErrInvalidConsensus, err.Error())
	}
	return consensusState.Timestamp, nil
}
