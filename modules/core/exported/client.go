package exported

import (
	"time"

	dbm "github.com/tendermint/tm-db"
)

// Status represents the status of a client
type Status string

const (
	// ModuleName is the name of the IBC client core module.
	ModuleName = "ibc"

	// Tendermint is used to indicate that the client uses the Tendermint Consensus Algorithm.
	Tendermint string = "07-tendermint"

	// Attestations is used to indicate that the client is verified by a quorum of attestor signatures.
	Attestations string = "10-attestations"

	// Active is a status type of a client. An active client is allowed to be used.
	Active Status = "Active"

	// Frozen is a status type of a client. A frozen client is not allowed to be used.
	Frozen Status = "Frozen"

	// Expired is a status type of a client. An expired client is not allowed to be used.
	Expired Status = "Expired"

	// Unknown indicates there was an error in determining the status of a client.
	Unknown Status = "Unknown"
)

// UpdateResult is the outcome of a successful client update. NoOp is set when the
// submitted update resolved to a consensus state that was already stored.
type UpdateResult struct {
	Height uint64
	NoOp   bool
}

// Path is the commitment path a membership proof is verified against.
type Path interface {
	Empty() bool
	Segments() [][]byte
}

// ClientStoreProvider provides isolated stores for light client instances and types.
type ClientStoreProvider interface {
	// ClientStore returns the prefixed store for a single client identifier.
	ClientStore(clientID string) dbm.DB
	// ClientModuleStore returns the prefixed store shared by all clients of a client type.
	ClientModuleStore(clientType string) dbm.DB
}

// LightClientModule is the capability surface shared by every verification scheme.
// The 02-client keeper resolves a module from the client type prefix of a client
// identifier and routes every call for that client to it.
//
// Implementations must persist the frozen state before returning a misbehaviour
// error from UpdateState.
type LightClientModule interface {
	// RegisterStoreProvider is called by the router when the module is added.
	RegisterStoreProvider(storeProvider ClientStoreProvider)

	// Initialize validates and stores the initial client and consensus states.
	Initialize(clientID string, clientStateBz, consensusStateBz []byte) error

	// UpdateState verifies the client message and commits the consensus state it carries.
	UpdateState(now time.Time, clientID string, clientMsg []byte) (UpdateResult, error)

	// VerifyMembership verifies that value is committed under path at height.
	VerifyMembership(now time.Time, clientID string, height uint64, path Path, value, proof []byte) error

	// Status returns the status of the client at the given time.
	Status(now time.Time, clientID string) Status

	// LatestHeight returns the latest height of the client, zero if not found.
	LatestHeight(clientID string) uint64

	// TimestampAtHeight returns the timestamp in nanoseconds of the consensus state at height.
	TimestampAtHeight(clientID string, height uint64) (uint64, error)

	// PruneConsensusStates deletes consensus states below the client's retention watermark.
	PruneConsensusStates(clientID string) (int, error)
}

// AttestationVerifier is implemented by light client modules which accept signed attestations.
type AttestationVerifier interface {
	VerifyAttestation(clientID string, attestationData []byte, signatures [][]byte) (uint64, error)
}

// MisbehaviourHandler is implemented by light client modules which accept explicit
// misbehaviour evidence.
type MisbehaviourHandler interface {
	SubmitMisbehaviour(now time.Time, clientID string, misbehaviour []byte) error
}

// ValidatorSetStore is implemented by light client modules which accept cached
// validator set references in their headers.
type ValidatorSetStore interface {
	// StoreValidatorSet caches the encoded validator set for submitter and returns
	// the cache key and the aggregate hash of the set.
	StoreValidatorSet(submitter string, validatorSet []byte) (key, aggregateHash []byte, err error)
	// PruneValidatorSet removes the validator set cached under key.
	PruneValidatorSet(key []byte) error
}
