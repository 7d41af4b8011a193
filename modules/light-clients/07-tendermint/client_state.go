package tendermint

import (
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	ics23 "github.com/confio/ics23/go"
	"github.com/tendermint/tendermint/light"
	tmtypes "github.com/tendermint/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightcore/modules/core/23-commitment/types"
	ibcerrors "github.com/cosmos/ibc-lightcore/modules/core/errors"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// ModuleName is the name of the 07-tendermint light client and its error codespace.
const ModuleName = exported.Tendermint

// ClientState from Tendermint tracks the current validator set, latest height,
// and a possible frozen height.
type ClientState struct {
	ChainID    string   `json:"chain_id"`
	TrustLevel Fraction `json:"trust_level"`
	// duration of the period since the LatestTimestamp during which the
	// submitted headers are valid for upgrade
	TrustingPeriod time.Duration `json:"trusting_period"`
	// duration of the staking unbonding period
	UnbondingPeriod time.Duration `json:"unbonding_period"`
	// defines how much new (untrusted) header's Time can drift into the future.
	MaxClockDrift time.Duration `json:"max_clock_drift"`
	LatestHeight  uint64        `json:"latest_height"`
	// zero when the client is not frozen
	FrozenHeight uint64 `json:"frozen_height"`
	// names of the ics23 proof specs, ordered leaf to root
	ProofSpecs []string              `json:"proof_specs"`
	Retention  clienttypes.Retention `json:"retention"`
}

// NewClientState creates a new ClientState instance
func NewClientState(
	chainID string, trustLevel Fraction,
	trustingPeriod, ubdPeriod, maxClockDrift time.Duration,
	latestHeight uint64, specs []string, maxConsensusStates uint64,
) *ClientState {
	return &ClientState{
		ChainID:         chainID,
		TrustLevel:      trustLevel,
		TrustingPeriod:  trustingPeriod,
		UnbondingPeriod: ubdPeriod,
		MaxClockDrift:   maxClockDrift,
		LatestHeight:    latestHeight,
		ProofSpecs:      specs,
		Retention:       clienttypes.NewRetention(maxConsensusStates),
	}
}

// ClientType is tendermint.
func (ClientState) ClientType() string {
	return exported.Tendermint
}

// IsFrozen returns true if the frozen height has been set.
func (cs ClientState) IsFrozen() bool {
	return cs.FrozenHeight != 0
}

// status returns the status of the tendermint client.
// The client may be:
// - Active: FrozenHeight is zero and client is not expired
// - Frozen: Frozen Height is not zero
// - Expired: the latest consensus state timestamp + trusting period <= current time
//
// A frozen client will become expired, so the Frozen status
// has higher precedence.
func (cs ClientState) status(clientStore dbm.DB, now time.Time) exported.Status {
	if cs.IsFrozen() {
		return exported.Frozen
	}

	// if the client state does not have an associated consensus state for its latest height
	// then it must be expired
	consState, err := getConsensusState(clientStore, cs.LatestHeight)
	if err != nil {
		return exported.Expired
	}

	if cs.IsExpired(consState.Timestamp, now) {
		return exported.Expired
	}

	return exported.Active
}

// IsExpired returns whether or not the client has passed the trusting period since the last
// update (in which case no headers are considered valid).
func (cs ClientState) IsExpired(latestTimestamp, now time.Time) bool {
	expirationTime := latestTimestamp.Add(cs.TrustingPeriod)
	return !expirationTime.After(now)
}

// Validate performs a basic validation of the client state fields.
func (cs ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return errorsmod.Wrap(ErrInvalidChainID, "chain id cannot be empty string")
	}
	if len(cs.ChainID) > tmtypes.MaxChainIDLen {
		return errorsmod.Wrapf(ErrInvalidChainID, "chainID is too long; got: %d, max: %d", len(cs.ChainID), tmtypes.MaxChainIDLen)
	}
	if err := light.ValidateTrustLevel(cs.TrustLevel.ToTendermint()); err != nil {
		return errorsmod.Wrap(ErrInvalidTrustLevel, err.Error())
	}
	if cs.TrustingPeriod <= 0 {
		return errorsmod.Wrap(ErrInvalidTrustingPeriod, "trusting period must be greater than zero")
	}
	if cs.UnbondingPeriod <= 0 {
		return errorsmod.Wrap(ErrInvalidUnbondingPeriod, "unbonding period must be greater than zero")
	}
	if cs.MaxClockDrift <= 0 {
		return errorsmod.Wrap(ErrInvalidMaxClockDrift, "max clock drift must be greater than zero")
	}
	if cs.LatestHeight == 0 {
		return errorsmod.Wrap(ErrInvalidHeaderHeight, "tendermint client's latest height cannot be zero")
	}
	if cs.TrustingPeriod >= cs.UnbondingPeriod {
		return errorsmod.Wrapf(
			ErrInvalidTrustingPeriod,
			"trusting period (%s) should be < unbonding period (%s)", cs.TrustingPeriod, cs.UnbondingPeriod,
		)
	}

	if len(cs.ProofSpecs) == 0 {
		return errorsmod.Wrap(ErrInvalidProofSpecs, "proof specs cannot be empty for tm client")
	}
	if _, err := cs.proofSpecs(); err != nil {
		return errorsmod.Wrap(ErrInvalidProofSpecs, err.Error())
	}

	return cs.Retention.Validate()
}

// proofSpecs resolves the configured proof spec names.
func (cs ClientState) proofSpecs() ([]*ics23.ProofSpec, error) {
	specs := make([]*ics23.ProofSpec, len(cs.ProofSpecs))
	for i, name := range cs.ProofSpecs {
		spec, err := commitmenttypes.GetProofSpec(name)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "proof spec at index %d", i)
		}
		specs[i] = spec
	}
	return specs, nil
}

// verifyMembership verifies a chain of ics23 proofs of the existence of value at
// path against the root of the consensus state stored at height.
func (cs ClientState) verifyMembership(
	clientStore dbm.DB,
	height uint64,
	path exported.Path,
	value []byte,
	proof []byte,
) error {
	if cs.IsFrozen() {
		return errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", cs.FrozenHeight)
	}

	if cs.LatestHeight < height {
		return errorsmod.Wrapf(
			ibcerrors.ErrInvalidHeight,
			"client state height < proof height (%d < %d), please ensure the client has been updated", cs.LatestHeight, height,
		)
	}

	merklePath, ok := path.(commitmenttypes.MerklePath)
	if !ok {
		return errorsmod.Wrapf(ibcerrors.ErrInvalidType, "expected %T, got %T", commitmenttypes.MerklePath{}, path)
	}

	merkleProof, err := commitmenttypes.UnmarshalMerkleProof(proof)
	if err != nil {
		return err
	}

	consensusState, err := getConsensusState(clientStore, height)
	if err != nil {
		return errorsmod.Wrap(err, "please ensure the proof was constructed against a height that exists on the client")
	}

	specs, err := cs.proofSpecs()
	if err != nil {
		return errorsmod.Wrap(ErrInvalidProofSpecs, err.Error())
	}

	return merkleProof.VerifyMembership(specs, consensusState.Root, merklePath, value)
}
