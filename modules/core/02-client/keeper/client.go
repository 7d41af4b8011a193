package keeper

import (
	metrics "github.com/armon/go-metrics"

	errorsmod "cosmossdk.io/errors"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	chunktypes "github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
	coremetrics "github.com/cosmos/ibc-lightcore/modules/core/metrics"
)

const (
	updateTypeMsg    = "msg"
	updateTypeChunks = "chunks"
)

// CreateClient generates a new client identifier and isolated prefix store for the provided client state.
// The client state is responsible for setting any client-specific data in the store via the Initialize method.
// This includes the client state, initial consensus state and any associated metadata.
//
// The identifier is consumed even if initialization fails.
func (k Keeper) CreateClient(clientType string, clientState []byte, consensusState []byte) (string, error) {
	if !k.params.IsAllowedClient(clientType) {
		return "", errorsmod.Wrapf(
			types.ErrInvalidClientType,
			"client state type %s is not registered in the allowlist", clientType,
		)
	}

	lightClientModule, found := k.router.GetModule(clientType)
	if !found {
		return "", errorsmod.Wrap(types.ErrRouteNotFound, clientType)
	}

	clientID, err := k.GenerateClientIdentifier(clientType)
	if err != nil {
		return "", err
	}

	unlock := k.locks.Lock(clientID)
	defer unlock()

	if err := lightClientModule.Initialize(clientID, clientState, consensusState); err != nil {
		return "", err
	}

	if status := k.GetClientStatus(clientID); status != exported.Active {
		return "", errorsmod.Wrapf(types.ErrClientNotActive, "cannot create client (%s) with status %s", clientID, status)
	}

	k.Logger().Info("client created at height", "client-id", clientID, "height", lightClientModule.LatestHeight(clientID))

	defer metrics.IncrCounterWithLabels(
		[]string{"ibc", "client", "create"},
		1,
		[]metrics.Label{{Name: coremetrics.LabelClientType, Value: clientType}},
	)

	return clientID, nil
}

// UpdateClient verifies the client message and stores the consensus state it carries.
// A byte-identical consensus state already stored at the message height results in a
// no-op. Misbehaviour detected while updating freezes the client and is returned as
// an error.
func (k Keeper) UpdateClient(clientID string, clientMsg []byte) (exported.UpdateResult, error) {
	return k.updateClient(clientID, clientMsg, updateTypeMsg)
}

// UpdateClientWithChunks assembles a client message uploaded with SubmitChunk and
// updates the client with it. The chunks are deleted once the message is assembled,
// whether or not the update succeeds.
func (k Keeper) UpdateClientWithChunks(submitter, clientID string, blobID uint64, total uint8, commitment []byte) (exported.UpdateResult, error) {
	if err := k.checkActive(clientID, "update"); err != nil {
		return exported.UpdateResult{}, err
	}

	blob := chunktypes.BlobID{Submitter: submitter, ClientID: clientID, ID: blobID}
	clientMsg, refund, err := k.chunkKeeper.Assemble(blob, commitment, total)
	if err != nil {
		return exported.UpdateResult{}, err
	}

	k.Logger().Debug("client message assembled", "client-id", clientID, "submitter", refund.Submitter, "blob-id", blobID, "reclaimed-bytes", refund.Bytes)

	return k.updateClient(clientID, clientMsg, updateTypeChunks)
}

func (k Keeper) updateClient(clientID string, clientMsg []byte, updateType string) (exported.UpdateResult, error) {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return exported.UpdateResult{}, err
	}

	// check-then-write of the consensus state must not interleave with other
	// writers of the same client
	unlock := k.locks.Lock(clientID)
	defer unlock()

	if err := k.checkActive(clientID, "update"); err != nil {
		return exported.UpdateResult{}, err
	}

	result, err := lightClientModule.UpdateState(k.clock(), clientID, clientMsg)
	if types.IsMisbehaviour(err) {
		k.Logger().Info("client frozen due to misbehaviour", "client-id", clientID, "reason", err.Error())

		defer metrics.IncrCounterWithLabels(
			[]string{"ibc", "client", "misbehaviour"},
			1,
			[]metrics.Label{
				{Name: coremetrics.LabelClientType, Value: clientType},
				{Name: coremetrics.LabelClientID, Value: clientID},
				{Name: coremetrics.LabelMsgType, Value: "update"},
			},
		)

		return exported.UpdateResult{}, err
	}
	if err != nil {
		return exported.UpdateResult{}, err
	}

	labels := []metrics.Label{
		{Name: coremetrics.LabelClientType, Value: clientType},
		{Name: coremetrics.LabelClientID, Value: clientID},
		{Name: coremetrics.LabelUpdateType, Value: updateType},
	}

	if result.NoOp {
		k.Logger().Debug("consensus state already stored", "client-id", clientID, "height", result.Height)
		defer metrics.IncrCounterWithLabels([]string{"ibc", "client", "update", "noop"}, 1, labels)
		return result, nil
	}

	k.Logger().Info("client state updated", "client-id", clientID, "height", result.Height)
	defer metrics.IncrCounterWithLabels([]string{"ibc", "client", "update"}, 1, labels)

	return result, nil
}

// SubmitMisbehaviour verifies explicit misbehaviour evidence and freezes the client.
// Only light client modules implementing exported.MisbehaviourHandler accept evidence.
func (k Keeper) SubmitMisbehaviour(clientID string, misbehaviour []byte) error {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return err
	}

	handler, ok := lightClientModule.(exported.MisbehaviourHandler)
	if !ok {
		return errorsmod.Wrapf(types.ErrInvalidClientType, "client type %s does not accept misbehaviour", clientType)
	}

	unlock := k.locks.Lock(clientID)
	defer unlock()

	if err := k.checkActive(clientID, "freeze"); err != nil {
		return err
	}

	if err := handler.SubmitMisbehaviour(k.clock(), clientID, misbehaviour); err != nil {
		return err
	}

	k.Logger().Info("client frozen due to misbehaviour", "client-id", clientID)

	defer metrics.IncrCounterWithLabels(
		[]string{"ibc", "client", "misbehaviour"},
		1,
		[]metrics.Label{
			{Name: coremetrics.LabelClientType, Value: clientType},
			{Name: coremetrics.LabelClientID, Value: clientID},
			{Name: coremetrics.LabelMsgType, Value: "submit"},
		},
	)

	return nil
}

// PruneConsensusStates deletes the consensus states of a client below its retention
// watermark and returns the number deleted.
func (k Keeper) PruneConsensusStates(clientID string) (int, error) {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return 0, err
	}

	unlock := k.locks.Lock(clientID)
	defer unlock()

	pruned, err := lightClientModule.PruneConsensusStates(clientID)
	if err != nil || pruned == 0 {
		return pruned, err
	}

	k.Logger().Info("consensus states pruned", "client-id", clientID, "count", pruned)

	defer metrics.IncrCounterWithLabels(
		[]string{"ibc", "client", "prune"},
		float32(pruned),
		[]metrics.Label{
			{Name: coremetrics.LabelClientType, Value: clientType},
			{Name: coremetrics.LabelClientID, Value: clientID},
		},
	)

	return pruned, nil
}
