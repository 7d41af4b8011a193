package types

import (
	errorsmod "cosmossdk.io/errors"
)

// IBC client sentinel errors
var (
	ErrClientExists              = errorsmod.Register(SubModuleName, 2, "light client already exists")
	ErrInvalidClient             = errorsmod.Register(SubModuleName, 3, "light client is invalid")
	ErrClientNotFound            = errorsmod.Register(SubModuleName, 4, "light client not found")
	ErrClientFrozen              = errorsmod.Register(SubModuleName, 5, "light client is frozen due to misbehaviour")
	ErrInvalidClientMetadata     = errorsmod.Register(SubModuleName, 6, "invalid client metadata")
	ErrConsensusStateNotFound    = errorsmod.Register(SubModuleName, 7, "consensus state not found")
	ErrInvalidConsensus          = errorsmod.Register(SubModuleName, 8, "invalid consensus state")
	ErrClientTypeNotFound        = errorsmod.Register(SubModuleName, 9, "client type not found")
	ErrInvalidClientType         = errorsmod.Register(SubModuleName, 10, "invalid client type")
	ErrInvalidHeader             = errorsmod.Register(SubModuleName, 11, "invalid client header")
	ErrInvalidMisbehaviour       = errorsmod.Register(SubModuleName, 12, "invalid light client misbehaviour")
	ErrFailedMembershipVerify    = errorsmod.Register(SubModuleName, 13, "membership verification failed")
	ErrInvalidHeight             = errorsmod.Register(SubModuleName, 14, "invalid height")
	ErrInvalidClientIdentifier   = errorsmod.Register(SubModuleName, 15, "invalid client identifier")
	ErrClientNotActive           = errorsmod.Register(SubModuleName, 16, "client state is not active")
	ErrRouteNotFound             = errorsmod.Register(SubModuleName, 17, "light client module route not found")
	ErrInvalidRetentionParams    = errorsmod.Register(SubModuleName, 18, "invalid consensus state retention parameters")
	ErrConflictingState          = errorsmod.Register(SubModuleName, 19, "misbehaviour: conflicting consensus state at height")
	ErrNonIncreasingTime         = errorsmod.Register(SubModuleName, 20, "misbehaviour: consensus state timestamp is not increasing")
)
