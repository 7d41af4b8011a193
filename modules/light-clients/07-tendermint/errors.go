package tendermint

import (
	errorsmod "cosmossdk.io/errors"
)

// IBC tendermint client sentinel errors
var (
	ErrInvalidChainID           = errorsmod.Register(ModuleName, 2, "invalid chain-id")
	ErrInvalidTrustingPeriod    = errorsmod.Register(ModuleName, 3, "invalid trusting period")
	ErrInvalidUnbondingPeriod   = errorsmod.Register(ModuleName, 4, "invalid unbonding period")
	ErrInvalidHeaderHeight      = errorsmod.Register(ModuleName, 5, "invalid header height")
	ErrInvalidHeader            = errorsmod.Register(ModuleName, 6, "invalid header")
	ErrInvalidMaxClockDrift     = errorsmod.Register(ModuleName, 7, "invalid max clock drift")
	ErrTrustingPeriodExpired    = errorsmod.Register(ModuleName, 8, "time since latest trusted state has passed the trusting period")
	ErrInvalidProofSpecs        = errorsmod.Register(ModuleName, 9, "invalid proof specs")
	ErrInvalidValidatorSet      = errorsmod.Register(ModuleName, 10, "invalid validator set")
	ErrInvalidTrustLevel        = errorsmod.Register(ModuleName, 11, "invalid trust level")
	ErrHeaderVerificationFailed = errorsmod.Register(ModuleName, 12, "header verification failed")
	ErrValidatorSetNotFound     = errorsmod.Register(ModuleName, 13, "validator set not found in cache")
	ErrInvalidSubmitter         = errorsmod.Register(ModuleName, 14, "invalid submitter")
)
