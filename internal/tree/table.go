package tree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxConditionWidth = 60

// String renders every node in pre-order, children indented under their
// branch, as a table.
func (t *Tree) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nDECISION TREE\n")
	tw.AppendHeader(table.Row{"\nNode", "\nCondition", "\nValue"})

	tw.AppendRow(table.Row{"root", t.root.condition.String(), fallbackCell(t.fallback)})
	t.Walk(func(n Node) bool {
		indent := strings.Repeat("  ", n.Depth())
		switch n := n.(type) {
		case *Leaf:
			tw.AppendRow(table.Row{indent + "leaf", n.condition.String(), formatCell(n.value)})
		case *Branch:
			tw.AppendRow(table.Row{indent + "branch", n.condition.String(), ""})
		}
		return true
	})

	configureStyle(tw)
	return tw.Render()
}

// RenderLeaves lists leaves with their depth, condition and value.
func RenderLeaves(leaves []*Leaf) string {
	tw := table.NewWriter()
	tw.SetTitle("\nLEAVES\n")
	tw.AppendHeader(table.Row{"\n#", "\nDepth", "\nCondition", "\nValue"})
	for i, l := range leaves {
		tw.AppendRow(table.Row{i + 1, l.Depth(), l.condition.String(), formatCell(l.value)})
	}
	configureStyle(tw)
	return tw.Render()
}

func configureStyle(tw table.Writer) {
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "\nCondition", WidthMax: maxConditionWidth},
	})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Options.SeparateRows = true
	tw.SetStyle(style)
}

func fallbackCell(v any) string {
	if v == nil {
		return ""
	}
	return "fallback: " + formatCell(v)
}

func formatCell(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
