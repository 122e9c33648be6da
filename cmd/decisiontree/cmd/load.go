package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/solatis/decisiontree/internal/core/api"
	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/tree"
	"github.com/spf13/cobra"
)

// treeSource is the --file / --tree flag pair shared by eval and leaves.
type treeSource struct {
	file string
	name string
}

func (s *treeSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "tree definition JSON file")
	cmd.Flags().StringVarP(&s.name, "tree", "t", "", "name of a stored tree")
	cmd.MarkFlagsMutuallyExclusive("file", "tree")
	cmd.MarkFlagsOneRequired("file", "tree")
}

// load returns the tree from a file, or from the database by name.
func (s *treeSource) load(ctx context.Context) (*tree.Tree, error) {
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read tree: %w", err)
		}
		t, err := tree.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.file, err)
		}
		return t, nil
	}

	database, queries, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	svc, err := api.NewService(db.NewTreeStore(queries), logger)
	if err != nil {
		return nil, err
	}
	_, t, err := svc.GetTree(ctx, s.name)
	return t, err
}
