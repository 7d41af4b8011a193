package attestations

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const nanosPerSecond = 1_000_000_000

var (
	uint64Type, _ = abi.NewType("uint64", "", nil)

	packetTupleArrayType, _ = abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "path", Type: "bytes32"},
		{Name: "commitment", Type: "bytes32"},
	})

	heightArgs = abi.Arguments{
		{Name: "height", Type: uint64Type},
	}

	stateAttestationArgs = abi.Arguments{
		{Name: "height", Type: uint64Type},
		{Name: "timestamp", Type: uint64Type},
	}

	packetAttestationArgs = abi.Arguments{
		{Name: "height", Type: uint64Type},
		{Name: "packets", Type: packetTupleArrayType},
	}
)

// StateAttestation is signed by attestors to advance the client. On the wire the
// timestamp is carried in seconds.
type StateAttestation struct {
	Height uint64
	// Timestamp in nanoseconds, truncated to whole seconds by the encoding.
	Timestamp uint64
}

// PacketAttestation lists the packet commitments attested at a height.
type PacketAttestation struct {
	Height  uint64
	Packets []PacketCommitment
}

// PacketCommitment is an attested fact: the hash of a commitment path and the
// commitment stored under it.
type PacketCommitment struct {
	PathHash   [32]byte
	Commitment [32]byte
}

// abiPacket mirrors the tuple field names of the ABI encoding.
type abiPacket struct {
	Path       [32]byte
	Commitment [32]byte
}

// Encode returns the ABI encoding of the state attestation.
func (sa StateAttestation) Encode() ([]byte, error) {
	return stateAttestationArgs.Pack(sa.Height, sa.Timestamp/nanosPerSecond)
}

// Encode returns the ABI encoding of the packet attestation.
func (pa PacketAttestation) Encode() ([]byte, error) {
	packets := make([]abiPacket, len(pa.Packets))
	for i, p := range pa.Packets {
		packets[i] = abiPacket{Path: p.PathHash, Commitment: p.Commitment}
	}
	return packetAttestationArgs.Pack(pa.Height, packets)
}

// DecodeStateAttestation decodes an ABI encoded StateAttestation.
func DecodeStateAttestation(data []byte) (StateAttestation, error) {
	values, err := stateAttestationArgs.Unpack(data)
	if err != nil {
		return StateAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "failed to ABI decode state attestation: %v", err)
	}

	height, ok := values[0].(uint64)
	if !ok {
		return StateAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "invalid height type %T", values[0])
	}
	seconds, ok := values[1].(uint64)
	if !ok {
		return StateAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "invalid timestamp type %T", values[1])
	}
	if seconds > ^uint64(0)/nanosPerSecond {
		return StateAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "timestamp %d overflows nanoseconds", seconds)
	}

	return StateAttestation{Height: height, Timestamp: seconds * nanosPerSecond}, nil
}

// DecodePacketAttestation decodes an ABI encoded PacketAttestation.
func DecodePacketAttestation(data []byte) (PacketAttestation, error) {
	values, err := packetAttestationArgs.Unpack(data)
	if err != nil {
		return PacketAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "failed to ABI decode packet attestation: %v", err)
	}

	height, ok := values[0].(uint64)
	if !ok {
		return PacketAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "invalid height type %T", values[0])
	}

	decoded, ok := values[1].([]struct {
		Path       [32]byte `json:"path"`
		Commitment [32]byte `json:"commitment"`
	})
	if !ok {
		return PacketAttestation{}, errorsmod.Wrapf(ErrInvalidAttestationData, "invalid packets type %T", values[1])
	}

	packets := make([]PacketCommitment, len(decoded))
	for i, p := range decoded {
		packets[i] = PacketCommitment{PathHash: p.Path, Commitment: p.Commitment}
	}

	return PacketAttestation{Height: height, Packets: packets}, nil
}

// attestedHeight returns the height every attestation encoding starts with.
func attestedHeight(data []byte) (uint64, error) {
	if len(data) < 32 {
		return 0, errorsmod.Wrapf(ErrInvalidAttestationData, "attestation data must be at least 32 bytes, got %d", len(data))
	}

	values, err := heightArgs.Unpack(data[:32])
	if err != nil {
		return 0, errorsmod.Wrapf(ErrInvalidAttestationData, "failed to ABI decode attested height: %v", err)
	}

	height, ok := values[0].(uint64)
	if !ok {
		return 0, errorsmod.Wrapf(ErrInvalidAttestationData, "invalid height type %T", values[0])
	}
	return height, nil
}
