package types

import (
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// SubModuleName defines the IBC client name
const SubModuleName string = "client"

// FormatClientIdentifier returns the client identifier with the sequence appended.
// This is an SDK specific format not enforced by IBC protocol.
func FormatClientIdentifier(clientType string, sequence uint64) string {
	return fmt.Sprintf("%s-%d", clientType, sequence)
}

// ParseClientIdentifier parses the client type and sequence from the client identifier.
func ParseClientIdentifier(clientID string) (string, uint64, error) {
	if strings.ContainsRune(clientID, '/') {
		return "", 0, errorsmod.Wrapf(ErrInvalidClientIdentifier, "identifier %s cannot contain separator '/'", clientID)
	}

	split := strings.Split(clientID, "-")
	if len(split) < 2 {
		return "", 0, errorsmod.Wrapf(ErrInvalidClientIdentifier, "identifier %s does not contain a client type and sequence", clientID)
	}

	clientType := strings.Join(split[:len(split)-1], "-")
	if strings.TrimSpace(clientType) == "" {
		return "", 0, errorsmod.Wrap(ErrInvalidClientIdentifier, "client identifier must be in format: `{client-type}-{N}` and client type cannot be blank")
	}

	sequence, err := strconv.ParseUint(split[len(split)-1], 10, 64)
	if err != nil {
		return "", 0, errorsmod.Wrapf(ErrInvalidClientIdentifier, "failed to parse client identifier sequence: %v", err)
	}

	return clientType, sequence, nil
}
