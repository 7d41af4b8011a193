package types

import (
	errorsmod "cosmossdk.io/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
)

// MustMarshal encodes a client or consensus state record. The encoding is
// deterministic, so two records are equal iff their encodings are equal.
// It panics on error.
func MustMarshal(v interface{}) []byte {
	bz, err := tmjson.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}

// Unmarshal decodes a record previously encoded with MustMarshal.
func Unmarshal(bz []byte, v interface{}) error {
	if len(bz) == 0 {
		return errorsmod.Wrap(ErrInvalidClientMetadata, "cannot decode empty bytes")
	}
	return tmjson.Unmarshal(bz, v)
}
