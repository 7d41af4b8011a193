package attestations

import (
	"bytes"
	"crypto/sha256"

	errorsmod "cosmossdk.io/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// verifyMembership verifies that value is the commitment attested under path at
// height. The proof is an AttestationProof over an ABI encoded PacketAttestation.
// Only single segment paths are supported, the attested path hash is
// sha256(segment).
func (cs ClientState) verifyMembership(clientStore dbm.DB, height uint64, path exported.Path, value, proof []byte) error {
	if path == nil || len(path.Segments()) != 1 {
		return errorsmod.Wrap(ErrInvalidPathLength, "expected exactly one path segment")
	}

	if len(value) == 0 {
		return ErrEmptyValue
	}
	if len(value) != len(PacketCommitment{}.Commitment) {
		return errorsmod.Wrapf(ErrInvalidValueLength, "expected %d bytes, got %d", len(PacketCommitment{}.Commitment), len(value))
	}

	if cs.IsFrozen() {
		return errorsmod.Wrapf(clienttypes.ErrClientFrozen, "frozen at height %d", cs.FrozenHeight)
	}

	if _, err := getConsensusState(clientStore, height); err != nil {
		return err
	}

	attestationProof, err := UnmarshalAttestationProof(proof)
	if err != nil {
		return err
	}

	packetAttestation, err := DecodePacketAttestation(attestationProof.AttestationData)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidAttestationProof, err.Error())
	}

	// the consensus state was looked up at height, so this also ties the proof to the stored entry
	if packetAttestation.Height != height {
		return errorsmod.Wrapf(ErrHeightMismatch, "proof height %d, requested height %d", packetAttestation.Height, height)
	}

	if _, err := cs.verifySignatures(attestationProof.AttestationData, attestationProof.Signatures); err != nil {
		return err
	}

	if len(packetAttestation.Packets) == 0 {
		return ErrEmptyAttestation
	}

	pathHash := sha256.Sum256(path.Segments()[0])
	for _, packet := range packetAttestation.Packets {
		if packet.PathHash != pathHash {
			continue
		}

		if !bytes.Equal(packet.Commitment[:], value) {
			return errorsmod.Wrapf(ErrCommitmentMismatch, "attested %X, got %X", packet.Commitment, value)
		}
		return nil
	}

	return errorsmod.Wrapf(ErrNotMember, "path hash %X", pathHash)
}
