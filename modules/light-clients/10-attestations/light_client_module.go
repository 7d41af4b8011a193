package attestations

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

var (
	_ exported.LightClientModule   = (*LightClientModule)(nil)
	_ exported.AttestationVerifier = (*LightClientModule)(nil)
)

// LightClientModule implements the core IBC api.LightClientModule interface.
// Calls for a single client must be serialized by the caller.
type LightClientModule struct {
	storeProvider exported.ClientStoreProvider
}

// NewLightClientModule creates and returns a new 10-attestations LightClientModule.
func NewLightClientModule() *LightClientModule {
	return &LightClientModule{}
}

// RegisterStoreProvider is called by core IBC when a LightClientModule is added to the router.
// It allows the LightClientModule to set a ClientStoreProvider which supplies isolated prefix client stores
// to IBC light client instances.
func (l *LightClientModule) RegisterStoreProvider(storeProvider exported.ClientStoreProvider) {
	l.storeProvider = storeProvider
}

// Initialize unmarshals the provided client and consensus states and performs basic validation.
// The consensus state is stored at the latest height of the client state.
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
	store := clienttypes.NewConsensusStore(clientStore)

	if err := store.Set(clientState.LatestHeight, clienttypes.MustMarshal(consensusState)); err != nil {
		return err
	}

	clientState.Retention.ConsensusStateCount = 1
	clientState.Retention.EarliestHeight = 0

	return setClientState(clientStore, &clientState)
}

// UpdateState verifies an AttestationProof over a StateAttestation and stores
// the attested consensus state.
func (l *LightClientModule) UpdateState(_ time.Time, clientID string, clientMsg []byte) (exported.UpdateResult, error) {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return exported.UpdateResult{}, errorsmod.Wrap(err, clientID)
	}

	attestation, err := clientState.verifyClientMessage(clientMsg)
	if err != nil {
		return exported.UpdateResult{}, err
	}

	return clientState.updateState(clientStore, attestation)
}

// VerifyAttestation verifies the signatures over attestationData and returns the attested height.
func (l *LightClientModule) VerifyAttestation(clientID string, attestationData []byte, signatures [][]byte) (uint64, error) {
	clientState, err := getClientState(l.storeProvider.ClientStore(clientID))
	if err != nil {
		return 0, errorsmod.Wrap(err, clientID)
	}

	return clientState.verifyAttestation(attestationData, signatures)
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

// Status returns the status of the attestations client.
// The client may be:
// - Active: if the client is not frozen.
// - Frozen: if misbehaviour was detected.
// - Unknown: if the client state associated with the provided client identifier is not found.
func (l *LightClientModule) Status(_ time.Time, clientID string) exported.Status {
	clientState, err := getClientState(l.storeProvider.ClientStore(clientID))
	if err != nil {
		return exported.Unknown
	}

	return clientState.status()
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

// TimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (l *LightClientModule) TimestampAtHeight(clientID string, height uint64) (uint64, error) {
	consensusState, err := getConsensusState(l.storeProvider.ClientStore(clientID), height)
	if err != nil {
		return 0, err
	}

	return consensusState.Timestamp, nil
}

// PruneConsensusStates deletes the consensus states below the retention watermark of the client.
func (l *LightClientModule) PruneConsensusStates(clientID string) (int, error) {
	clientStore := l.storeProvider.ClientStore(clientID)
	clientState, err := getClientState(clientStore)
	if err != nil {
		return 0, errorsmod.Wrap(err, clientID)
	}

	pruned, err := clientState.Retention.Prune(clienttypes.NewConsensusStore(clientStore))
	if err != nil {
		return 0, err
	}
	if pruned == 0 {
		return 0, nil
	}

	return pruned, setClientState(clientStore, clientState)
}
