package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/keeper"
	commitmenttypes "github.com/cosmos/ibc-lightcore/modules/core/23-commitment/types"
)

type statusResponse struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	Status       string `json:"status" yaml:"status"`
	LatestHeight uint64 `json:"latest_height" yaml:"latest_height"`
}

type timestampResponse struct {
	ClientID  string `json:"client_id" yaml:"client_id"`
	Height    uint64 `json:"height" yaml:"height"`
	Timestamp uint64 `json:"timestamp" yaml:"timestamp"`
}

type attestationResponse struct {
	Height uint64 `json:"height" yaml:"height"`
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [client-id]",
		Short: "query the status and latest height of a light client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withKeeper(func(k keeper.Keeper) error {
				return printOutput(cmd, statusResponse{
					ClientID:     args[0],
					Status:       string(k.GetClientStatus(args[0])),
					LatestHeight: k.GetClientLatestHeight(args[0]),
				})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newTimestampCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timestamp [client-id] [height]",
		Short: "query the timestamp of the consensus state stored at a height",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := parseUint64("height", args[1])
			if err != nil {
				return err
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				timestamp, err := k.GetTimestampAtHeight(args[0], height)
				if err != nil {
					return err
				}
				return printOutput(cmd, timestampResponse{ClientID: args[0], Height: height, Timestamp: timestamp})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newVerifyAttestationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-attestation [client-id] [attestation-data] [signature]...",
		Short: "verify attestor signatures over attestation data",
		Long: `verify that a quorum of the client attestors signed the attestation data and
print the attested height. The data and every signature are hex encoded or given
as paths to files.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readBinaryInput(args[1])
			if err != nil {
				return err
			}

			signatures := make([][]byte, 0, len(args)-2)
			for _, arg := range args[2:] {
				sig, err := readBinaryInput(arg)
				if err != nil {
					return err
				}
				signatures = append(signatures, sig)
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				height, err := k.VerifyAttestation(args[0], data, signatures)
				if err != nil {
					return err
				}
				return printOutput(cmd, attestationResponse{Height: height})
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newVerifyMembershipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-membership [client-id] [height] [value] [path/to/proof] [path-segment]...",
		Short: "verify that a value is committed under a path on the counterparty",
		Long: `verify that value is committed under the merkle path formed by the path
segments in the counterparty state at height. The value and proof are hex encoded
or given as paths to files.`,
		Args: cobra.MinimumNArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := parseUint64("height", args[1])
			if err != nil {
				return err
			}
			value, err := readBinaryInput(args[2])
			if err != nil {
				return err
			}
			proof, err := readBinaryInput(args[3])
			if err != nil {
				return err
			}

			segments := make([][]byte, len(args)-4)
			for i, segment := range args[4:] {
				segments[i] = []byte(segment)
			}

			return a.withKeeper(func(k keeper.Keeper) error {
				if err := k.VerifyMembership(args[0], height, commitmenttypes.NewMerklePath(segments...), value, proof); err != nil {
					return err
				}
				_, err := cmd.OutOrStdout().Write([]byte("verified\n"))
				return err
			})
		},
	}
}
