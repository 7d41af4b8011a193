package keeper

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// VerifyAttestation checks a quorum of attestor signatures over attestationData and
// returns the attested height. Only light client modules implementing
// exported.AttestationVerifier accept attestations.
func (k Keeper) VerifyAttestation(clientID string, attestationData []byte, signatures [][]byte) (uint64, error) {
	lightClientModule, clientType, err := k.route(clientID)
	if err != nil {
		return 0, err
	}

	verifier, ok := lightClientModule.(exported.AttestationVerifier)
	if !ok {
		return 0, errorsmod.Wrapf(types.ErrInvalidClientType, "client type %s does not verify attestations", clientType)
	}

	if err := k.checkActive(clientID, "verify attestation for"); err != nil {
		return 0, err
	}

	return verifier.VerifyAttestation(clientID, attestationData, signatures)
}

// VerifyMembership verifies that value is committed under path in the counterparty
// state at height. The client must be active.
func (k Keeper) VerifyMembership(clientID string, height uint64, path exported.Path, value, proof []byte) error {
	lightClientModule, _, err := k.route(clientID)
	if err != nil {
		return err
	}

	if err := k.checkActive(clientID, "verify membership with"); err != nil {
		return err
	}

	if err := lightClientModule.VerifyMembership(k.clock(), clientID, height, path, value, proof); err != nil {
		return errorsmod.Wrapf(err, "failed membership verification for client (%s)", clientID)
	}
	return nil
}

// StoreValidatorSet caches an encoded validator set for a client type whose headers
// may reference validator sets by key. It returns the cache key and the aggregate
// hash of the set.
func (k Keeper) StoreValidatorSet(clientType, submitter string, validatorSet []byte) ([]byte, []byte, error) {
	store, err := k.validatorSetStore(clientType)
	if err != nil {
		return nil, nil, err
	}

	key, aggregateHash, err := store.StoreValidatorSet(submitter, validatorSet)
	if err != nil {
		return nil, nil, err
	}

	k.Logger().Debug("validator set cached", "client-type", clientType, "submitter", submitter, "key", key)

	return key, aggregateHash, nil
}

// PruneValidatorSet removes a cached validator set.
func (k Keeper) PruneValidatorSet(clientType string, key []byte) error {
	store, err := k.validatorSetStore(clientType)
	if err != nil {
		return err
	}

	return store.PruneValidatorSet(key)
}

func (k Keeper) validatorSetStore(clientType string) (exported.ValidatorSetStore, error) {
	lightClientModule, found := k.router.GetModule(clientType)
	if !found {
		return nil, errorsmod.Wrap(types.ErrRouteNotFound, clientType)
	}

	store, ok := lightClientModule.(exported.ValidatorSetStore)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrInvalidClientType, "client type %s does not cache validator sets", clientType)
	}
	return store, nil
}
