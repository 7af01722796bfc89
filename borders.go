package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/table"
)

// borderJSON 是一个非空网格单元的解析结果；"-" 表示该侧不绘制边框。
type borderJSON struct {
	Part   string `json:"part"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Cell   string `json:"cell"`
	Before string `json:"before"`
	After  string `json:"after"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type bordersJSON struct {
	Table string       `json:"table"`
	Model string       `json:"model"`
	Units []borderJSON `json:"units"`
}

func newBordersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borders <file>",
		Short: "Print the resolved border of every grid unit side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.layoutFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			all := make([]bordersJSON, 0, len(results))
			for _, res := range results {
				all = append(all, collectBorders(res))
			}
			if a.output == "json" {
				return writeJSON(out, all)
			}
			for i, b := range all {
				writeTitle(out, b.Table, i)
				tw := newTableWriter(out, "PART", "ROW", "COL", "CELL", "BEFORE", "AFTER", "START", "END")
				for _, u := range b.Units {
					tw.Append([]string{
						u.Part, strconv.Itoa(u.Row), strconv.Itoa(u.Column), u.Cell,
						u.Before, u.After, u.Start, u.End,
					})
				}
				tw.Render()
			}
			return nil
		},
	}
}

func collectBorders(res *table.Result) bordersJSON {
	out := bordersJSON{Table: res.Table.Name, Model: res.Table.BorderCollapse.String()}
	for _, part := range res.Grid.Parts() {
		for _, row := range part.Rows {
			for col, gu := range row.GridUnits() {
				if gu == nil || gu.IsEmpty() {
					continue
				}
				out.Units = append(out.Units, borderJSON{
					Part:   part.String(),
					Row:    row.Index() + 1,
					Column: col + 1,
					Cell:   gu.Primary().Label(),
					Before: sideString(gu, fo.Before),
					After:  sideString(gu, fo.After),
					Start:  sideString(gu, fo.Start),
					End:    sideString(gu, fo.End),
				})
			}
		}
	}
	return out
}

func sideString(gu *table.GridUnit, side fo.Side) string {
	if gu.EffectiveBorders() == nil {
		return "-"
	}
	return gu.BorderInfo(side).String()
}
