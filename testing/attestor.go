package ibctesting

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	attestations "github.com/cosmos/ibc-lightcore/modules/light-clients/10-attestations"
)

// Attestor is a signing key authorized by an attestations client.
type Attestor struct {
	PrivKey *ecdsa.PrivateKey
	Address string
}

// GenerateAttestors creates n attestors with fresh secp256k1 keys.
func GenerateAttestors(n int) ([]Attestor, error) {
	attestors := make([]Attestor, n)
	for i := range attestors {
		privKey, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		attestors[i] = Attestor{
			PrivKey: privKey,
			Address: crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		}
	}
	return attestors, nil
}

// AttestorAddresses returns the hex addresses of the attestors.
func AttestorAddresses(attestors []Attestor) []string {
	addrs := make([]string, len(attestors))
	for i, attestor := range attestors {
		addrs[i] = attestor.Address
	}
	return addrs
}

// SignAttestation signs sha256(attestationData) with every attestor in order.
func SignAttestation(attestationData []byte, attestors ...Attestor) ([][]byte, error) {
	hash := sha256.Sum256(attestationData)

	signatures := make([][]byte, 0, len(attestors))
	for _, attestor := range attestors {
		sig, err := crypto.Sign(hash[:], attestor.PrivKey)
		if err != nil {
			return nil, err
		}
		signatures = append(signatures, sig)
	}
	return signatures, nil
}

// AttestationsClientState returns an encoded attestations client state authorizing attestors.
func AttestationsClientState(cfg *AttestationsConfig, attestors []Attestor, latestHeight uint64) []byte {
	return clienttypes.MustMarshal(attestations.NewClientState(AttestorAddresses(attestors), cfg.MinRequiredSigs, latestHeight, cfg.MaxConsensusStates))
}

// AttestationsConsensusState returns an encoded attestations consensus state at timestamp.
func AttestationsConsensusState(timestamp time.Time) []byte {
	return clienttypes.MustMarshal(attestations.ConsensusState{Timestamp: uint64(timestamp.UnixNano())})
}

// StateAttestationProof returns an encoded AttestationProof of the state at height
// and timestamp, signed by signers. The timestamp is truncated to seconds.
func StateAttestationProof(height uint64, timestamp time.Time, signers ...Attestor) ([]byte, error) {
	data, err := attestations.StateAttestation{Height: height, Timestamp: uint64(timestamp.Unix()) * uint64(time.Second)}.Encode()
	if err != nil {
		return nil, err
	}

	signatures, err := SignAttestation(data, signers...)
	if err != nil {
		return nil, err
	}

	return attestations.AttestationProof{AttestationData: data, Signatures: signatures}.Marshal()
}
