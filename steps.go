package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/table"
)

func newStepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <file>",
		Short: "Print the box/glue/penalty sequence of every row group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.layoutFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.output == "json" {
				return writeJSON(out, resultsJSON(results))
			}
			for i, res := range results {
				writeTitle(out, res.Table.Name, i)
				tw := newTableWriter(out, "#", "GROUP", "PART", "ELEMENT", "OFFSET", "TAGS")
				for _, row := range stepRows(res) {
					tw.Append(row)
				}
				tw.Render()
			}
			return nil
		},
	}
}

// stepRows 展开所有行组的元素；OFFSET 为元素之前已累计的盒子与粘连长度，
// 对罚值即断点所在位置。
func stepRows(res *table.Result) [][]string {
	var rows [][]string
	offset, n := 0, 0
	for gi, rg := range res.RowGroups {
		for _, el := range rg.Elements {
			n++
			rows = append(rows, []string{
				strconv.Itoa(n),
				strconv.Itoa(gi + 1),
				rg.Part.String(),
				layout.Describe(el),
				layout.FormatMPT(offset),
				strings.Join(table.Tags(el.Position()), ","),
			})
			if el.Kind() != layout.KindPenalty {
				offset += el.Width()
			}
		}
	}
	return rows
}
