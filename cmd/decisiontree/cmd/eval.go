package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	evalSource    treeSource
	evalValueOnly bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [records.json]",
	Short: "Evaluate JSON records against a tree",
	Long: `Reads a stream of JSON records (one top-level value each, e.g. NDJSON)
from the given file or stdin and prints one JSON result per record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalSource.register(evalCmd)
	evalCmd.Flags().BoolVar(&evalValueOnly, "value-only", false, "print only the resulting value")
}

type evalResult struct {
	Matched  bool `json:"matched"`
	Fallback bool `json:"fallback"`
	Value    any  `json:"value"`
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	t, err := evalSource.load(ctx)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open records: %w", err)
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	enc := json.NewEncoder(cmd.OutOrStdout())

	var count, matched int
	for {
		var record any
		if err := dec.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("record %d: %w", count+1, err)
		}
		count++

		res := t.Match(record)
		if res.Matched {
			matched++
		}

		var out any = evalResult{Matched: res.Matched, Fallback: res.Fallback, Value: res.Value}
		if evalValueOnly {
			out = res.Value
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("record %d: %w", count, err)
		}
	}

	logger.Debug("evaluation finished", "records", count, "matched", matched)
	return nil
}
