package cmd

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/keeper"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

const (
	FlagSubmitter  = "submitter"
	FlagClientType = "client-type"

	defaultSubmitter = appName
)

type clientResponse struct {
	ClientID string `json:"client_id" yaml:"client_id"`
}

type updateResponse struct {
	ClientID string `json:"client_id" yaml:"client_id"`
	Height   uint64 `json:"height" yaml:"height"`
	NoOp     bool   `json:"no_op" yaml:"no_op"`
}

type refundResponse struct {
	Submitter string `json:"submitter" yaml:"submitter"`
	Bytes     uint64 `json:"bytes" yaml:"bytes"`
}

type pruneResponse struct {
	ClientID string `json:"client_id" yaml:"client_id"`
	Pruned   int    `json:"pruned" yaml:"pruned"`
}

type validatorSetResponse struct {
	Key           string `json:"key" yaml:"key"`
	AggregateHash string `json:"aggregate_hash" yaml:"aggregate_hash"`
}

func addSubmitterFlag(cmd *cobra.Command) {
	cmd.Flags().String(FlagSubmitter, defaultSubmitter, "account the chunks are stored for")
}

func newCreateClientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-client [client-type] [path/to/client_state.json] [path/to/consensus_state.json]",
		Short: "create a new light client",
		Long: `create a new light client of the given type from a trusted client state and
consensus state. Both states may be given as a path to a JSON file or as inline JSON.`,
		Example: appName + " create-client 07-tendermint client_state.json consensus_state.json",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientState := readStateInput(args[1])
			consensusState := readStateInput(args[2])

			return a.withKeeper(func(k keeper.Keeper) error {
				clientID, err := k.CreateClient(args[0], clientState, consensusState)
				if err != nil {
					return err
				}
				return printOutput(cmd, clientResponse{ClientID: clientID})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newUpdateClientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-client [client-id] [path/to/client_message]",
		Short: "update a light client with a header or attestation",
		Long: `update a light client with a client message, given as a path to a file or as
hex encoded bytes. Submitting a message whose consensus state is already stored
reports a no-op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientMsg, err := readBinaryInput(args[1])
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				result, err := k.UpdateClient(args[0], clientMsg)
				if err != nil {
					return err
				}
				return printOutput(cmd, updateResponse{ClientID: args[0], Height: result.Height, NoOp: result.NoOp})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newSubmitChunkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit-chunk [client-id] [blob-id] [index] [total] [path/to/chunk]",
		Short: "store one chunk of a client message too large for a single submission",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobID, err := parseUint64("blob id", args[1])
			if err != nil {
				return err
			}
			index, err := parseUint8("chunk index", args[2])
			if err != nil {
				return err
			}
			total, err := parseUint8("total chunks", args[3])
			if err != nil {
				return err
			}
			chunk, err := readBinaryInput(args[4])
			if err != nil {
				return err
			}
			submitter, err := cmd.Flags().GetString(FlagSubmitter)
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				return k.SubmitChunk(submitter, args[0], blobID, index, total, chunk)
			})
		},
	}
	addSubmitterFlag(cmd)
	return cmd
}

func newUpdateClientWithChunksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-client-chunks [client-id] [blob-id] [total] [commitment]",
		Short: "update a light client with a client message assembled from submitted chunks",
		Long: `update a light client with the client message assembled from the chunks of a
blob. The commitment is the hex encoded sha256 hash of the complete message.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobID, err := parseUint64("blob id", args[1])
			if err != nil {
				return err
			}
			total, err := parseUint8("total chunks", args[2])
			if err != nil {
				return err
			}
			commitment, err := decodeHex(args[3])
			if err != nil {
				return err
			}
			submitter, err := cmd.Flags().GetString(FlagSubmitter)
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				result, err := k.UpdateClientWithChunks(submitter, args[0], blobID, total, commitment)
				if err != nil {
					return err
				}
				return printOutput(cmd, updateResponse{ClientID: args[0], Height: result.Height, NoOp: result.NoOp})
			})
		},
	}
	addSubmitterFlag(cmd)
	addOutputFlag(cmd)
	return cmd
}

func newCleanupChunksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup-chunks [client-id] [blob-id]",
		Short: "remove the chunks of a blob which will not be assembled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobID, err := parseUint64("blob id", args[1])
			if err != nil {
				return err
			}
			submitter, err := cmd.Flags().GetString(FlagSubmitter)
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				refund, err := k.CleanupChunks(submitter, args[0], blobID)
				if err != nil {
					return err
				}
				return printOutput(cmd, refundResponse{Submitter: refund.Submitter, Bytes: refund.Bytes})
			})
		},
	}
	addSubmitterFlag(cmd)
	addOutputFlag(cmd)
	return cmd
}

func newSubmitMisbehaviourCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit-misbehaviour [client-id] [path/to/misbehaviour]",
		Short: "freeze a light client with evidence of misbehaviour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			misbehaviour, err := readBinaryInput(args[1])
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				return k.SubmitMisbehaviour(args[0], misbehaviour)
			})
		},
	}
}

func newPruneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [client-id]",
		Short: "delete the consensus states of a light client below its retention watermark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withKeeper(func(k keeper.Keeper) error {
				pruned, err := k.PruneConsensusStates(args[0])
				if err != nil {
					return err
				}
				return printOutput(cmd, pruneResponse{ClientID: args[0], Pruned: pruned})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newStoreValidatorSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store-validator-set [path/to/validator_set]",
		Short: "cache a validator set which headers may reference by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validatorSet, err := readBinaryInput(args[0])
			if err != nil {
				return err
			}
			clientType, err := cmd.Flags().GetString(FlagClientType)
			if err != nil {
				return err
			}
			submitter, err := cmd.Flags().GetString(FlagSubmitter)
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				key, aggregateHash, err := k.StoreValidatorSet(clientType, submitter, validatorSet)
				if err != nil {
					return err
				}
				return printOutput(cmd, validatorSetResponse{Key: hexutil.Encode(key), AggregateHash: hexutil.Encode(aggregateHash)})
			})
		},
	}
	cmd.Flags().String(FlagClientType, exported.Tendermint, "client type caching the validator set")
	addSubmitterFlag(cmd)
	addOutputFlag(cmd)
	return cmd
}

func newPruneValidatorSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune-validator-set [key]",
		Short: "remove a cached validator set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			clientType, err := cmd.Flags().GetString(FlagClientType)
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				return k.PruneValidatorSet(clientType, key)
			})
		},
	}
	cmd.Flags().String(FlagClientType, exported.Tendermint, "client type caching the validator set")
	return cmd
}
