package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/table"
)

// unitJSON 描述网格中的一个位置。Cell 为空表示该位置没有单元格。
type unitJSON struct {
	Cell         string `json:"cell,omitempty"`
	Primary      bool   `json:"primary,omitempty"`
	ColSpanIndex int    `json:"colSpanIndex,omitempty"`
	RowSpanIndex int    `json:"rowSpanIndex,omitempty"`
}

type gridRowJSON struct {
	Part   string           `json:"part"`
	Row    int              `json:"row"`
	Height layout.MinOptMax `json:"height"`
	Units  []unitJSON       `json:"units"`
}

type gridJSON struct {
	Table   string        `json:"table"`
	Columns int           `json:"columns"`
	Rows    []gridRowJSON `json:"rows"`
}

func newGridCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grid <file>",
		Short: "Print the grid occupancy with primary cell references",
		Long: `grid prints one line per row. A position shows the label of the cell
occupying it: the label itself for the cell's primary unit, "^label" for a
unit continuing a row span, "<label" for a unit continuing a column span and
"-" for an empty position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.layoutFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			all := make([]gridJSON, 0, len(results))
			for _, res := range results {
				all = append(all, collectGrid(res))
			}
			if a.output == "json" {
				return writeJSON(out, all)
			}
			for i, g := range all {
				writeTitle(out, g.Table, i)
				header := []string{"PART", "ROW", "HEIGHT"}
				for c := 1; c <= g.Columns; c++ {
					header = append(header, strconv.Itoa(c))
				}
				tw := newTableWriter(out, header...)
				for _, r := range g.Rows {
					line := []string{r.Part, strconv.Itoa(r.Row), layout.FormatMPT(r.Height.Opt)}
					for _, u := range r.Units {
						line = append(line, occupancy(u))
					}
					tw.Append(line)
				}
				tw.Render()
			}
			return nil
		},
	}
}

func collectGrid(res *table.Result) gridJSON {
	out := gridJSON{Table: res.Table.Name, Columns: res.Grid.NumColumns()}
	for _, part := range res.Grid.Parts() {
		for _, row := range part.Rows {
			r := gridRowJSON{Part: part.String(), Row: row.Index() + 1, Height: row.Height()}
			for _, gu := range row.GridUnits() {
				if gu == nil || gu.IsEmpty() {
					r.Units = append(r.Units, unitJSON{})
					continue
				}
				r.Units = append(r.Units, unitJSON{
					Cell:         gu.Primary().Label(),
					Primary:      gu.IsPrimary(),
					ColSpanIndex: gu.ColSpanIndex(),
					RowSpanIndex: gu.RowSpanIndex(),
				})
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func occupancy(u unitJSON) string {
	switch {
	case u.Cell == "":
		return "-"
	case u.Primary:
		return u.Cell
	case u.RowSpanIndex > 0:
		return "^" + u.Cell
	default:
		return "<" + u.Cell
	}
}
