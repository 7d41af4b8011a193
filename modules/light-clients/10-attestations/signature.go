package attestations

import (
	"crypto/sha256"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/crypto"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

const (
	// SignatureLength is the expected length of an ECDSA signature (r||s||v)
	SignatureLength = 65
)

// verifySignatures recovers the signer of every signature over sha256(attestationData)
// and returns the number of distinct attestors that signed. Every signer must be an
// attestor: a single unknown signer rejects the whole set even if the known ones
// meet the threshold. Signatures beyond the threshold are accepted.
func (cs ClientState) verifySignatures(attestationData []byte, signatures [][]byte) (int, error) {
	if len(signatures) == 0 {
		return 0, ErrEmptySignatures
	}

	attestorSet := make(map[string]bool, len(cs.AttestorAddresses))
	for _, addr := range cs.AttestorAddresses {
		attestorSet[strings.ToLower(addr)] = true
	}

	hash := sha256.Sum256(attestationData)
	seenSigners := make(map[string]bool, len(signatures))

	for i, sig := range signatures {
		if len(sig) != SignatureLength {
			return 0, errorsmod.Wrapf(ErrInvalidSignature, "signature %d has invalid length: expected %d, got %d", i, SignatureLength, len(sig))
		}

		recoveredPubKey, err := crypto.SigToPub(hash[:], sig)
		if err != nil {
			return 0, errorsmod.Wrapf(ErrInvalidSignature, "failed to recover public key from signature %d: %v", i, err)
		}

		signer := strings.ToLower(crypto.PubkeyToAddress(*recoveredPubKey).Hex())

		if seenSigners[signer] {
			return 0, errorsmod.Wrapf(ErrDuplicateSigner, "signature %d: %s", i, signer)
		}
		seenSigners[signer] = true

		if !attestorSet[signer] {
			return 0, errorsmod.Wrapf(ErrUnknownSigner, "signature %d: %s", i, signer)
		}
	}

	if len(seenSigners) < int(cs.MinRequiredSigs) {
		return 0, errorsmod.Wrapf(ErrThresholdNotMet, "required %d, got %d", cs.MinRequiredSigs, len(seenSigners))
	}

	return len(seenSigners), nil
}

// verifyAttestation checks the signatures over attestationData and returns the
// height the attestation claims.
func (cs ClientState) verifyAttestation(attestationData []byte, signatures [][]byte) (uint64, error) {
	if cs.IsFrozen() {
		return 0, errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", cs.FrozenHeight)
	}

	if _, err := cs.verifySignatures(attestationData, signatures); err != nil {
		return 0, err
	}

	return attestedHeight(attestationData)
}
