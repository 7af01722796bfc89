package table

import (
	"fmt"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// EffRow 是某一物理行上全部网格单元的视图，并记录计算高度与显式高度。
type EffRow struct {
	index          int
	part           fo.PartKind
	row            *fo.TableRow
	units          []*GridUnit
	height         layout.MinOptMax
	explicitHeight layout.MinOptMax
}

func newEffRow(index int, part fo.PartKind, row *fo.TableRow, units []*GridUnit) *EffRow {
	explicit := layout.Unbounded()
	if row != nil {
		explicit = row.Height
	}
	return &EffRow{
		index:          index,
		part:           part,
		row:            row,
		units:          units,
		height:         explicit,
		explicitHeight: explicit,
	}
}

// Index is the row's position within its table part.
func (r *EffRow) Index() int { return r.index }

// Part reports whether the row belongs to the header, footer or a body.
func (r *EffRow) Part() fo.PartKind { return r.part }

func (r *EffRow) TableRow() *fo.TableRow { return r.row }

func (r *EffRow) GridUnits() []*GridUnit { return r.units }

// GridUnit returns the unit in column col; it panics when out of range.
func (r *EffRow) GridUnit(col int) *GridUnit { return r.units[col] }

// SafelyGetGridUnit returns nil instead of panicking for columns the row
// does not cover.
func (r *EffRow) SafelyGetGridUnit(col int) *GridUnit {
	if col < 0 || col >= len(r.units) {
		return nil
	}
	return r.units[col]
}

// Flag reads a part-boundary flag from the first unit of the row. Only
// FirstInPart and LastInPart may be queried.
func (r *EffRow) Flag(which Flag) bool {
	switch which {
	case FirstInPart, LastInPart:
		if len(r.units) == 0 {
			return false
		}
		return r.units[0].Flag(which)
	default:
		panic(fmt.Sprintf("EffRow.Flag: unsupported flag %s", which))
	}
}

// Height is the computed block-progression extent of the row.
func (r *EffRow) Height() layout.MinOptMax { return r.height }

func (r *EffRow) SetHeight(h layout.MinOptMax) { r.height = h }

// ExplicitHeight is the height authored on the row (auto: 0/0/max).
func (r *EffRow) ExplicitHeight() layout.MinOptMax { return r.explicitHeight }

func (r *EffRow) SetExplicitHeight(h layout.MinOptMax) { r.explicitHeight = h }

func (r *EffRow) KeepTogether() layout.Keep {
	if r.row == nil {
		return layout.KeepAuto
	}
	return r.row.KeepTogether
}

// KeepWithNext combines the row's keep-with-next with that of the cells
// ending on this row.
func (r *EffRow) KeepWithNext() layout.Keep {
	keep := layout.KeepAuto
	if r.row != nil {
		keep = r.row.KeepWithNext
	}
	for _, gu := range r.units {
		if gu.Flag(KeepWithNextPending) && gu.colSpanIndex == 0 {
			keep = keep.Compare(gu.primary.KeepWithNext())
		}
	}
	return keep
}

// KeepWithPrevious combines the row's keep-with-previous with that of the
// cells starting on this row.
func (r *EffRow) KeepWithPrevious() layout.Keep {
	keep := layout.KeepAuto
	if r.row != nil {
		keep = r.row.KeepWithPrevious
	}
	for _, gu := range r.units {
		if gu.Flag(KeepWithPreviousPending) && gu.colSpanIndex == 0 {
			keep = keep.Compare(gu.primary.KeepWithPrevious())
		}
	}
	return keep
}

func (r *EffRow) BreakBefore() layout.BreakClass {
	if r.row == nil {
		return layout.BreakAuto
	}
	return r.row.BreakBefore
}

func (r *EffRow) BreakAfter() layout.BreakClass {
	if r.row == nil {
		return layout.BreakAuto
	}
	return r.row.BreakAfter
}

func (r *EffRow) String() string {
	return fmt.Sprintf("%s row %d (%s)", r.part, r.index+1, r.height)
}
