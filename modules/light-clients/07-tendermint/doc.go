/*
Package tendermint implements a concrete ClientState, ConsensusState,
Header, Misbehaviour and types for the Tendermint consensus light client.
Headers are verified with the tendermint light client verification functions.
Validator sets may be cached with StoreValidatorSet and referenced from headers
by key.
This implementation is based off the ICS 07 specification
(https://github.com/cosmos/ibc/tree/main/spec/client/ics-007-tendermint-client)
*/
package tendermint
