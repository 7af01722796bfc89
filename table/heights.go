package table

import (
	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// ComputeRowHeights sets the computed height of every row of a row group.
// A row is as tall as its explicit height and as every cell ending on it
// requires: content (or the cell's explicit height), padding and before/after
// borders, minus the rows the cell already spans above.
func ComputeRowHeights(rowGroup []*EffRow) {
	heights := make([]layout.MinOptMax, len(rowGroup))
	for rgi, row := range rowGroup {
		explicit := layout.Unbounded()
		if row.row != nil {
			explicit = row.row.Height
		}
		heights[rgi] = explicit
		for _, gu := range row.units {
			if gu.IsEmpty() || gu.colSpanIndex != 0 || !gu.IsLastGridUnitRowSpan() {
				continue
			}
			p := gu.primary
			cellBPD := p.cell.Height
			effective := 0
			if cellBPD.Min > 0 {
				effective = cellBPD.Min
			}
			if cellBPD.Opt > 0 {
				effective = cellBPD.Opt
			}
			if gu.rowSpanIndex == 0 {
				effective = max(effective, explicit.Opt)
			}
			effective = max(effective, p.ContentLength())

			h := effective + p.BeforeAfterBorderWidth() +
				p.cell.BPB.PaddingWidth(fo.Before) + p.cell.BPB.PaddingWidth(fo.After)
			for prev := rgi - 1; prev >= rgi-gu.rowSpanIndex && prev >= 0; prev-- {
				h -= heights[prev].Opt
			}
			if h > heights[rgi].Min {
				heights[rgi] = heights[rgi].ExtendMinimum(h)
			}
		}
		row.SetHeight(heights[rgi])
		row.SetExplicitHeight(explicit)
	}
}

// TotalHeight sums the optimum heights of a row group.
func TotalHeight(rowGroup []*EffRow) int {
	total := 0
	for _, row := range rowGroup {
		total += row.height.Opt
	}
	return total
}
