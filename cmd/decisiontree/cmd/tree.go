package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/solatis/decisiontree/internal/core/api"
	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/types"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Manage stored trees",
}

var treePutCmd = &cobra.Command{
	Use:   "put NAME FILE",
	Short: "Store a tree definition under NAME, replacing any previous one",
	Args:  cobra.ExactArgs(2),
	RunE: withService(func(cmd *cobra.Command, svc *api.Service, args []string) error {
		var def types.TreeDefinition
		if err := readJSON(cmd, args[1], &def); err != nil {
			return err
		}
		rec, err := svc.PutTree(cmd.Context(), args[0], def)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", rec.ID, rec.Name)
		return nil
	}),
}

var treeGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a stored tree definition as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, svc *api.Service, args []string) error {
		_, t, err := svc.GetTree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd, t.Definition())
	}),
}

var treeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored trees",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, svc *api.Service, args []string) error {
		recs, err := svc.ListTrees(cmd.Context())
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.AppendHeader(table.Row{"Name", "Tree ID", "Created", "Updated"})
		for _, r := range recs {
			tw.AppendRow(table.Row{r.Name, r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339)})
		}
		tw.SetStyle(table.StyleLight)
		fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
		return nil
	}),
}

var treeDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored tree",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, svc *api.Service, args []string) error {
		return svc.DeleteTree(cmd.Context(), args[0])
	}),
}

var treeAppendCmd = &cobra.Command{
	Use:   "append NAME NODE_FILE",
	Short: "Append a node definition under the root of a stored tree",
	Args:  cobra.ExactArgs(2),
	RunE: withService(func(cmd *cobra.Command, svc *api.Service, args []string) error {
		var node types.NodeDefinition
		if err := readJSON(cmd, args[1], &node); err != nil {
			return err
		}
		def, err := svc.AppendChild(cmd.Context(), args[0], node)
		if err != nil {
			return err
		}
		return writeJSON(cmd, def)
	}),
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treePutCmd, treeGetCmd, treeListCmd, treeDeleteCmd, treeAppendCmd)
}

// withService opens the database for the duration of one command.
func withService(fn func(cmd *cobra.Command, svc *api.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, queries, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.RequireMigrations(ctx, database); err != nil {
			return err
		}

		svc, err := api.NewService(db.NewTreeStore(queries), logger)
		if err != nil {
			return err
		}
		return fn(cmd, svc, args)
	}
}

// readJSON decodes a file, or stdin when path is "-".
func readJSON(cmd *cobra.Command, path string, dest any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
