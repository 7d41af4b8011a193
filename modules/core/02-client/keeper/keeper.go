package keeper

import (
	"encoding/binary"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightcore/internal/keylock"
	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
	chunkkeeper "github.com/cosmos/ibc-lightcore/modules/core/chunks/keeper"
	chunktypes "github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// Keeper represents a type that grants read and write permissions to any client
// state information
type Keeper struct {
	db          dbm.DB
	router      *types.Router
	chunkKeeper chunkkeeper.Keeper
	params      types.Params
	locks       *keylock.Map
	clock       func() time.Time
	logger      log.Logger
}

type options struct {
	clock       func() time.Time
	params      types.Params
	chunkParams chunktypes.Params
}

// Option configures a Keeper.
type Option func(*options)

// WithClock sets the source of the current time used to check trusting periods
// and clock drift. It defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithParams sets the client types which may be created.
func WithParams(params types.Params) Option {
	return func(o *options) {
		o.params = params
	}
}

// WithChunkParams sets the limits of uploaded chunks.
func WithChunkParams(params chunktypes.Params) Option {
	return func(o *options) {
		o.chunkParams = params
	}
}

// NewKeeper creates a new client Keeper instance. Light client modules are
// registered afterwards with AddRoute.
func NewKeeper(db dbm.DB, logger log.Logger, opts ...Option) Keeper {
	o := options{
		clock:       time.Now,
		params:      types.DefaultParams(),
		chunkParams: chunktypes.DefaultParams(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.params.Validate(); err != nil {
		panic(err)
	}

	return Keeper{
		db:          db,
		router:      types.NewRouter(db),
		chunkKeeper: chunkkeeper.NewKeeper(db, o.chunkParams, logger),
		params:      o.params,
		locks:       keylock.New(),
		clock:       o.clock,
		logger:      logger.With("module", "x/"+exported.ModuleName+"/"+types.SubModuleName),
	}
}

// Logger returns a module-specific logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// AddRoute adds a new route to the underlying router.
func (k Keeper) AddRoute(clientType string, module exported.LightClientModule) {
	k.router.AddRoute(clientType, module)
}

// GetRouter returns the light client module router.
func (k Keeper) GetRouter() *types.Router {
	return k.router
}

// GetParams returns the client types which may be created.
func (k Keeper) GetParams() types.Params {
	return k.params
}

// ChunkParams returns the limits of uploaded chunks.
func (k Keeper) ChunkParams() chunktypes.Params {
	return k.chunkKeeper.Params()
}

// GenerateClientIdentifier returns the next client identifier.
func (k Keeper) GenerateClientIdentifier(clientType string) (string, error) {
	unlock := k.locks.Lock(host.KeyNextClientSequence)
	defer unlock()

	nextClientSeq, err := k.GetNextClientSequence()
	if err != nil {
		return "", err
	}

	clientID := types.FormatClientIdentifier(clientType, nextClientSeq)

	nextClientSeq++
	if err := k.SetNextClientSequence(nextClientSeq); err != nil {
		return "", err
	}
	return clientID, nil
}

// GetNextClientSequence gets the next client sequence from the store.
func (k Keeper) GetNextClientSequence() (uint64, error) {
	bz, err := k.db.Get(host.NextClientSequenceKey())
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, errorsmod.Wrapf(types.ErrInvalidClientMetadata, "next client sequence has %d bytes", len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

// SetNextClientSequence sets the next client sequence to the store.
func (k Keeper) SetNextClientSequence(sequence uint64) error {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, sequence)
	return k.db.Set(host.NextClientSequenceKey(), bz)
}

// GetClientStatus returns the status for a client state given a client identifier. If the client type is not in the allowed
// clients param field, Unknown is returned, otherwise the client state status is returned.
func (k Keeper) GetClientStatus(clientID string) exported.Status {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return exported.Unknown
	}

	if !k.params.IsAllowedClient(clientType) {
		return exported.Unknown
	}

	return lightClientModule.Status(k.clock(), clientID)
}

// GetClientLatestHeight returns the latest height of a client state for a given client identifier. If the client type is not in the allowed
// clients param field, a zero value height is returned, otherwise the client state latest height is returned.
func (k Keeper) GetClientLatestHeight(clientID string) uint64 {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return 0
	}

	if !k.params.IsAllowedClient(clientType) {
		return 0
	}

	return lightClientModule.LatestHeight(clientID)
}

// GetTimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (k Keeper) GetTimestampAtHeight(clientID string, height uint64) (uint64, error) {
	lightClientModule, _, err := k.route(clientID)
	if err != nil {
		return 0, err
	}

	return lightClientModule.TimestampAtHeight(clientID, height)
}

// route returns the light client module and client type of a client identifier.
func (k Keeper) route(clientID string) (exported.LightClientModule, string, error) {
	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil {
		return nil, "", errorsmod.Wrapf(types.ErrClientNotFound, "clientID (%s)", clientID)
	}

	lightClientModule, found := k.router.GetModule(clientType)
	if !found {
		return nil, "", errorsmod.Wrap(types.ErrRouteNotFound, clientID)
	}

	return lightClientModule, clientType, nil
}

// checkActive returns an error unless the client can be used for action. A
// frozen client fails with ErrClientFrozen.
func (k Keeper) checkActive(clientID, action string) error {
	switch status := k.GetClientStatus(clientID); status {
	case exported.Active:
		return nil
	case exported.Frozen:
		return errorsmod.Wrapf(types.ErrClientFrozen, "cannot %s client (%s)", action, clientID)
	case exported.Unknown:
		return errorsmod.Wrapf(types.ErrClientNotFound, "cannot %s client (%s)", action, clientID)
	default:
		return errorsmod.Wrapf(types.ErrClientNotActive, "cannot %s client (%s) with status %s", action, clientID, status)
	}
}
