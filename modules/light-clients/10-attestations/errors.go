package attestations

import (
	errorsmod "cosmossdk.io/errors"
)

// IBC attestations client sentinel errors
var (
	ErrInvalidAttestorAddress  = errorsmod.Register(ModuleName, 2, "invalid attestor address")
	ErrInvalidAttestationData  = errorsmod.Register(ModuleName, 3, "invalid attestation data")
	ErrInvalidAttestationProof = errorsmod.Register(ModuleName, 4, "invalid attestation proof")
	ErrEmptySignatures         = errorsmod.Register(ModuleName, 5, "signatures cannot be empty")
	ErrInvalidSignature        = errorsmod.Register(ModuleName, 6, "invalid signature")
	ErrDuplicateSigner         = errorsmod.Register(ModuleName, 7, "duplicate signer")
	ErrUnknownSigner           = errorsmod.Register(ModuleName, 8, "signer is not an attestor")
	ErrThresholdNotMet         = errorsmod.Register(ModuleName, 9, "signature threshold not met")
	ErrInvalidPathLength       = errorsmod.Register(ModuleName, 10, "invalid path length")
	ErrEmptyValue              = errorsmod.Register(ModuleName, 11, "value cannot be empty")
	ErrHeightMismatch          = errorsmod.Register(ModuleName, 12, "height mismatch")
	ErrEmptyAttestation        = errorsmod.Register(ModuleName, 13, "attestation contains no packet commitments")
	ErrNotMember               = errorsmod.Register(ModuleName, 14, "path is not attested")
	ErrCommitmentMismatch      = errorsmod.Register(ModuleName, 15, "attested commitment does not match value")
	ErrInvalidValueLength      = errorsmod.Register(ModuleName, 16, "value must be a 32 byte commitment")
)
