package table

import (
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// RowGroup 是一个行组及其步进结果。
type RowGroup struct {
	Part     *Part
	Rows     []*EffRow
	Elements []layout.Element
}

// Result 是一个表格的布局结果：网格模型与按文档顺序排列的行组序列。
type Result struct {
	Table        *fo.Table
	Grid         *Grid
	HeaderHeight int
	FooterHeight int
	RowGroups    []*RowGroup
}

// Layout builds the grid of t, resolves its borders, computes row heights
// and steps every row group of the header, the bodies and the footer.
func Layout(t *fo.Table, opts Options) (*Result, error) {
	log := opts.entry()
	grid, err := BuildGrid(t, log)
	if err != nil {
		return nil, err
	}
	res := &Result{Table: t, Grid: grid}

	for _, part := range grid.Parts() {
		for _, rg := range part.RowGroups() {
			ComputeRowHeights(rg)
		}
	}
	if h := grid.Header(); h != nil {
		res.HeaderHeight = TotalHeight(h.Rows)
	}
	if f := grid.Footer(); f != nil {
		res.FooterHeight = TotalHeight(f.Rows)
	}

	stepper := NewStepper(t, opts)
	stepper.SetHeaderFooterHeights(res.HeaderHeight, res.FooterHeight)
	for _, part := range grid.Parts() {
		var prev *RowGroup
		for _, rows := range part.RowGroups() {
			rg := &RowGroup{
				Part:     part,
				Rows:     rows,
				Elements: stepper.CombinedElementsForRowGroup(rows, part.Kind()),
			}
			if prev != nil {
				keep := t.KeepTogether.Compare(part.Body.KeepTogether)
				joinRowGroups(prev, rg, keep)
			}
			res.RowGroups = append(res.RowGroups, rg)
			prev = rg
		}
	}
	for i := 1; i < len(res.RowGroups); i++ {
		prev, next := res.RowGroups[i-1], res.RowGroups[i]
		if prev.Part != next.Part && prev.Part.Kind() == fo.PartBody && next.Part.Kind() == fo.PartBody {
			joinRowGroups(prev, next, t.KeepTogether)
		}
	}

	log.WithFields(logrus.Fields{
		"columns":    grid.NumColumns(),
		"row_groups": len(res.RowGroups),
		"cells":      len(grid.Primaries()),
	}).Debug("table layout finished")
	return res, nil
}

// joinRowGroups settles the break between two consecutive row groups on the
// trailing penalty of prev.
func joinRowGroups(prev, next *RowGroup, keep layout.Keep) {
	pen := lastPenalty(prev.Elements)
	if pen == nil || len(prev.Rows) == 0 || len(next.Rows) == 0 {
		return
	}
	last := prev.Rows[len(prev.Rows)-1]
	first := next.Rows[0]
	keep = keep.Compare(last.KeepWithNext()).Compare(first.KeepWithPrevious())
	if !pen.IsForcedBreak() {
		pen.P = min(max(pen.P, keep.Penalty()), layout.Infinite)
		if pen.BreakClass == layout.BreakAuto {
			pen.BreakClass = keep.Context()
		}
	}
	if bc := layout.CompareBreakClasses(last.BreakAfter(), first.BreakBefore()); bc != layout.BreakAuto {
		pen.P = -layout.Infinite
		pen.BreakClass = layout.CompareBreakClasses(pen.BreakClass, bc)
	}
}

func lastPenalty(elems []layout.Element) *layout.Penalty {
	for i := len(elems) - 1; i >= 0; i-- {
		if p, ok := elems[i].(*layout.Penalty); ok {
			return p
		}
	}
	return nil
}

// Elements returns the concatenated element sequence of all row groups.
func (r *Result) Elements() []layout.Element {
	var out []layout.Element
	for _, rg := range r.RowGroups {
		out = append(out, rg.Elements...)
	}
	return out
}

// ResultJSON 是 Result 的调试输出形式，长度单位为毫点。
type ResultJSON struct {
	Table        string         `json:"table"`
	Columns      int            `json:"columns"`
	BorderModel  string         `json:"borderModel"`
	HeaderHeight int            `json:"headerHeight"`
	FooterHeight int            `json:"footerHeight"`
	RowGroups    []RowGroupJSON `json:"rowGroups"`
}

type RowGroupJSON struct {
	Part     string               `json:"part"`
	Rows     []RowJSON            `json:"rows"`
	Elements []layout.ElementJSON `json:"elements"`
}

type RowJSON struct {
	Index          int              `json:"index"`
	Height         layout.MinOptMax `json:"height"`
	ExplicitHeight layout.MinOptMax `json:"explicitHeight"`
}

// JSON converts the result for debug output.
func (r *Result) JSON() ResultJSON {
	out := ResultJSON{
		Table:        r.Table.Name,
		Columns:      r.Grid.NumColumns(),
		BorderModel:  r.Table.BorderCollapse.String(),
		HeaderHeight: r.HeaderHeight,
		FooterHeight: r.FooterHeight,
	}
	for _, rg := range r.RowGroups {
		g := RowGroupJSON{Part: rg.Part.String(), Elements: layout.ElementsToJSON(rg.Elements, Tags)}
		for _, row := range rg.Rows {
			g.Rows = append(g.Rows, RowJSON{Index: row.Index() + 1, Height: row.Height(), ExplicitHeight: row.ExplicitHeight()})
		}
		out.RowGroups = append(out.RowGroups, g)
	}
	return out
}
