package tendermint

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

var (
	_ exported.LightClientModule   = (*LightClientModule)(nil)
	_ exported.MisbehaviourHandler = (*LightClientModule)(nil)
	_ exported.ValidatorSetStore   = (*LightClientModule)(nil)
)

// LightClientModule implements the core IBC api.LightClientModule interface.
type LightClientModule struct {
	storeProvider exported.ClientStoreProvider
}

// NewLightClientModule creates and returns a new 07-tendermint LightClientModule.
func NewLightClientModule() *LightClientModule {
	return &LightClientModule{}
}

// RegisterStoreProvider is called by core IBC when a LightClientModule is added to the router.
func (l *LightClientModule) RegisterStoreProvider(storeProvider exported.ClientStoreProvider) {
	l.storeProvider = storeProvider
}

// Initialize unmarshals the provided client and consensus states and performs basic validation. The
// client and consensus state are stored at the latest height of the client state.
func (l *LightClientModule) Initialize(clientID string, clientStateBz, consensusStateBz []byte) error {
	var clientState ClientState
	if err := clienttypes.Unmarshal(clientStateBz, &clientState); err != nil {
		return errorsmod.Wrapf(clienttypes.ErrInvalidClient, "failed to unmarshal client state bytes into client state: %v", err)
	}

	if err := clientState.Validate(); err != nil {
		return err
	}
	if clientState.IsFrozen() {
		return errorsmod.Wrap(clienttypes.ErrInvalidClient, "cannot create a frozen client")
	}

	var consensusState ConsensusState
	if err := clienttypes.Unmarshal(consensusStateBz, &consensusState); err != nil {
		return errorsmod.Wrapf(clienttypes.ErrInvalidConsensus, "failed to unmarshal consensus state bytes into consensus state: %v", err)
	}

	if err := consensusState.ValidateBasic(); err != nil {
		return err
	}

	clientStore := l.storeProvider.ClientStore(clientID)

	if err := setConsensusState(clientStore, &consensusState, clientState.LatestHeight); err != nil {
		return err
	}

	clientState.Retention.ConsensusStateCount = 1
	clientState.Retention.EarliestHeight = 0

	return setClientState(clientStore, &clientState)
}

// UpdateState verifies the header against a trusted consensus state and stores
// the consensus state it carries.
func (l *LightClientModule) UpdateState(now time.Time, clientID string, clientMsg []byte) (exported.UpdateResult, error) {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return exported.UpdateResult{}, errorsmod.Wrap(err, clientID)
	}

	if clientState.IsFrozen() {
		return exported.UpdateResult{}, errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", clientState.FrozenHeight)
	}

	header, err := unmarshalHeader(l.storeProvider.ClientModuleStore(exported.Tendermint), clientMsg)
	if err != nil {
		return exported.UpdateResult{}, err
	}

	if err := clientState.verifyHeader(clientStore, header, now); err != nil {
		if clienttypes.IsMisbehaviour(err) {
			return exported.UpdateResult{}, clientState.freeze(clientStore, header.GetHeight(), err)
		}
		return exported.UpdateResult{}, err
	}

	return clientState.updateState(clientStore, header)
}

// SubmitMisbehaviour verifies that the two headers of the misbehaviour would
// both have been accepted by the client and freezes it.
func (l *LightClientModule) SubmitMisbehaviour(now time.Time, clientID string, misbehaviourBz []byte) error {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return errorsmod.Wrap(err, clientID)
	}

	if clientState.IsFrozen() {
		return errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", clientState.FrozenHeight)
	}

	misbehaviour, err := unmarshalMisbehaviour(l.storeProvider.ClientModuleStore(exported.Tendermint), misbehaviourBz)
	if err != nil {
		return err
	}

	if err := clientState.verifyMisbehaviour(clientStore, misbehaviour, now); err != nil {
		return err
	}

	clientState.FrozenHeight = misbehaviour.Header1.GetHeight()
	return setClientState(clientStore, clientState)
}

// VerifyMembership obtains the client state associated with the client identifier and calls into the clientState.verifyMembership method.
func (l *LightClientModule) VerifyMembership(_ time.Time, clientID string, height uint64, path exported.Path, value, proof []byte) error {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return errorsmod.Wrap(err, clientID)
	}

	return clientState.verifyMembership(clientStore, height, path, value, proof)
}

// Status returns the status of the tendermint client.
// The client may be:
// - Active: FrozenHeight is zero and client is not expired
// - Frozen: Frozen Height is not zero
// - Expired: the latest consensus state timestamp + trusting period <= current time
// - Unknown: if the client state associated with the provided client identifier is not found
//
// A frozen client will become expired, so the Frozen status
// has higher precedence.
func (l *LightClientModule) Status(now time.Time, clientID string) exported.Status {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return exported.Unknown
	}

	return clientState.status(clientStore, now)
}

// LatestHeight returns the latest height for the client state for the given client identifier.
// If no client is present for the provided client identifier a zero value height is returned.
func (l *LightClientModule) LatestHeight(clientID string) uint64 {
	clientState, err := getClientState(l.storeProvider.ClientStore(clientID))
	if err != nil {
		return 0
	}

	return clientState.LatestHeight
}

// TimestampAtHeight obtains the client state associated with the client identifier and returns the timestamp in nanoseconds of the consensus state at the given height.
func (l *LightClientModule) TimestampAtHeight(clientID string, height uint64) (uint64, error) {
	consensusState, err := getConsensusState(l.storeProvider.ClientStore(clientID), height)
	if err != nil {
		return 0, err
	}

	return consensusState.GetTimestamp(), nil
}

// PruneConsensusStates deletes the consensus states below the retention watermark of the client.
func (l *LightClientModule) PruneConsensusStates(clientID string) (int, error) {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return 0, errorsmod.Wrap(err, clientID)
	}

	pruned, err := clientState.Retention.Prune(clienttypes.NewConsensusStore(clientStore))
	if err != nil || pruned == 0 {
		return pruned, err
	}

	return pruned, setClientState(clientStore, clientState)
}

// StoreValidatorSet caches a protobuf encoded validator set which headers may
// reference by key instead of carrying it inline.
func (l *LightClientModule) StoreValidatorSet(submitter string, validatorSet []byte) ([]byte, []byte, error) {
	key, record, err := storeValidatorSet(l.storeProvider.ClientModuleStore(exported.Tendermint), submitter, validatorSet)
	if err != nil {
		return nil, nil, err
	}

	return key, record.AggregateHash, nil
}

// PruneValidatorSet removes a cached validator set.
func (l *LightClientModule) PruneValidatorSet(key []byte) error {
	return deleteValidatorSet(l.storeProvider.ClientModuleStore(exported.Tendermint), key)
}
