package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"gopkg.in/yaml.v2"
)

const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// readBinaryInput returns the contents of the file at arg, or arg decoded as hex
// when no such file exists.
func readBinaryInput(arg string) ([]byte, error) {
	if bz, err := os.ReadFile(arg); err == nil {
		return bz, nil
	}

	bz, err := decodeHex(arg)
	if err != nil {
		return nil, errors.Errorf("neither a path to a readable file nor hex encoded bytes: %q", arg)
	}
	return bz, nil
}

// readStateInput returns the contents of the file at arg, or arg itself so
// that states can be passed as inline JSON.
func readStateInput(arg string) []byte {
	if bz, err := os.ReadFile(arg); err == nil {
		return bz
	}
	return []byte(arg)
}

// decodeHex decodes hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func parseUint64(name, arg string) (uint64, error) {
	n, err := cast.ToUint64E(arg)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return n, nil
}

func parseUint8(name, arg string) (uint8, error) {
	n, err := cast.ToUint8E(arg)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return n, nil
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(FlagOutput, "o", OutputFormatText, "output format (text|json)")
}

// printOutput writes v as YAML, or as JSON when requested with --output json.
func printOutput(cmd *cobra.Command, v interface{}) error {
	format, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return err
	}

	var bz []byte
	switch format {
	case OutputFormatText:
		bz, err = yaml.Marshal(v)
	case OutputFormatJSON:
		bz, err = tmjson.MarshalIndent(v, "", "  ")
		bz = append(bz, '\n')
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), string(bz))
	return err
}
