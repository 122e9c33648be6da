package cmd

import (
	"fmt"

	"github.com/solatis/decisiontree/internal/tree"
	"github.com/spf13/cobra"
)

var (
	leavesSource treeSource
	leavesAll    bool
)

var leavesCmd = &cobra.Command{
	Use:   "leaves",
	Short: "List the leaves of a tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := leavesSource.load(cmd.Context())
		if err != nil {
			return err
		}
		if leavesAll {
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), tree.RenderLeaves(t.Leaves()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(leavesCmd)
	leavesSource.register(leavesCmd)
	leavesCmd.Flags().BoolVar(&leavesAll, "all", false, "show every node, not only leaves")
}
