package attestations

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/rlp"
)

// AttestationProof carries ABI encoded attestation data together with the
// attestor signatures over sha256(AttestationData). It is the client message
// of update calls and the proof of membership calls.
type AttestationProof struct {
	AttestationData []byte
	Signatures      [][]byte
}

// Marshal returns the RLP encoding of the proof.
func (p AttestationProof) Marshal() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// UnmarshalAttestationProof decodes an RLP encoded AttestationProof and checks
// it is well formed.
func UnmarshalAttestationProof(bz []byte) (*AttestationProof, error) {
	if len(bz) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidAttestationProof, "proof cannot be empty")
	}

	var proof AttestationProof
	if err := rlp.DecodeBytes(bz, &proof); err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidAttestationProof, "failed to decode proof: %v", err)
	}

	if err := proof.ValidateBasic(); err != nil {
		return nil, err
	}

	return &proof, nil
}

// ValidateBasic checks the proof carries attestation data and well formed signatures.
func (p AttestationProof) ValidateBasic() error {
	if len(p.AttestationData) == 0 {
		return errorsmod.Wrap(ErrInvalidAttestationData, "attestation data cannot be empty")
	}
	if len(p.Signatures) == 0 {
		return ErrEmptySignatures
	}
	for i, sig := range p.Signatures {
		if len(sig) != SignatureLength {
			return errorsmod.Wrapf(ErrInvalidSignature, "signature %d has invalid length: expected %d, got %d", i, SignatureLength, len(sig))
		}
	}
	return nil
}
