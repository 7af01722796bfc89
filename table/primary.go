package table

import (
	"fmt"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// PrimaryGridUnit 是单元格左上角的网格单元，独占单元格的内容与布局状态。
// 同一单元格的其他 GridUnit 只持有指向它的引用。
type PrimaryGridUnit struct {
	GridUnit

	elements      []layout.Element
	contentLength int
	startRow      int
	rows          [][]*GridUnit
	colSpan       int
	rowSpan       int
	label         string
}

func newPrimaryGridUnit(cell *fo.TableCell, column *fo.TableColumn, row *fo.TableRow, startCol, startRow int) *PrimaryGridUnit {
	p := &PrimaryGridUnit{
		elements:      cell.Content,
		contentLength: -1,
		startRow:      startRow,
		colSpan:       cell.NumberColumnsSpanned(),
		rowSpan:       cell.NumberRowsSpanned(),
	}
	p.GridUnit = GridUnit{
		primary:  p,
		cell:     cell,
		column:   column,
		row:      row,
		startCol: startCol,
	}
	return p
}

// Elements returns the cell's breakable content sequence.
func (p *PrimaryGridUnit) Elements() []layout.Element { return p.elements }

// SetElements replaces the content sequence, e.g. with the output of a
// cell content layout manager, and drops the cached length.
func (p *PrimaryGridUnit) SetElements(elems []layout.Element) {
	p.elements = elems
	p.contentLength = -1
}

// ContentLength returns the cached sum of box and glue widths.
func (p *PrimaryGridUnit) ContentLength() int {
	if p.contentLength < 0 {
		p.contentLength = layout.ContentLength(p.elements)
	}
	return p.contentLength
}

// StartRow is the part-relative index of the row the cell starts on.
func (p *PrimaryGridUnit) StartRow() int { return p.startRow }

// Rows returns the units occupied by the cell, one slice per spanned row.
func (p *PrimaryGridUnit) Rows() [][]*GridUnit { return p.rows }

func (p *PrimaryGridUnit) addRow(units []*GridUnit) { p.rows = append(p.rows, units) }

// ColSpan and RowSpan report the span as laid out; RowSpan may be smaller
// than the declared value when the span was clipped at the end of a part.
func (p *PrimaryGridUnit) ColSpan() int { return p.colSpan }
func (p *PrimaryGridUnit) RowSpan() int { return p.rowSpan }

// HasSpanning reports whether the cell covers more than one slot.
func (p *PrimaryGridUnit) HasSpanning() bool { return p.colSpan > 1 || p.rowSpan > 1 }

// Label identifies the cell in logs and CLI output, e.g. body#1[2,3].
func (p *PrimaryGridUnit) Label() string { return p.label }

func (p *PrimaryGridUnit) KeepWithNext() layout.Keep     { return p.cell.KeepWithNext }
func (p *PrimaryGridUnit) KeepWithPrevious() layout.Keep { return p.cell.KeepWithPrevious }

func (p *PrimaryGridUnit) separate() bool {
	t := p.Table()
	return t != nil && t.IsSeparateBorderModel()
}

func (p *PrimaryGridUnit) halfSeparation() int {
	if t := p.Table(); t != nil {
		return t.BorderSeparation / 2
	}
	return 0
}

// BeforeBorderWidth returns the before border counted in the cell's
// height. In the collapse model this is half the widest resolved border
// over the cell's first row; in the separate model it is the cell's own
// border plus half the border separation. discard drops conditional
// borders, as at a break.
func (p *PrimaryGridUnit) BeforeBorderWidth(discard bool) int {
	if p.separate() {
		return p.cell.BPB.BorderWidth(fo.Before, discard) + p.halfSeparation()
	}
	if len(p.rows) == 0 {
		return 0
	}
	return halfMaxBorderWidth(p.rows[0], fo.Before, discard)
}

// AfterBorderWidth is the after-side counterpart of BeforeBorderWidth.
func (p *PrimaryGridUnit) AfterBorderWidth(discard bool) int {
	if p.separate() {
		return p.cell.BPB.BorderWidth(fo.After, discard) + p.halfSeparation()
	}
	if len(p.rows) == 0 {
		return 0
	}
	return halfMaxBorderWidth(p.rows[len(p.rows)-1], fo.After, discard)
}

// BeforeAfterBorderWidth sums both full (retained) widths.
func (p *PrimaryGridUnit) BeforeAfterBorderWidth() int {
	return p.BeforeBorderWidth(false) + p.AfterBorderWidth(false)
}

// StartEndBorderWidths returns the start and end border widths of the cell,
// taken from its first and last column.
func (p *PrimaryGridUnit) StartEndBorderWidths() [2]int {
	var out [2]int
	if p.separate() {
		out[0] = p.cell.BPB.BorderWidth(fo.Start, false)
		out[1] = p.cell.BPB.BorderWidth(fo.End, false)
		return out
	}
	for _, row := range p.rows {
		if len(row) == 0 {
			continue
		}
		out[0] = max(out[0], row[0].BorderInfo(fo.Start).RetainedWidth())
		out[1] = max(out[1], row[len(row)-1].BorderInfo(fo.End).RetainedWidth())
	}
	return out
}

func halfMaxBorderWidth(units []*GridUnit, side fo.Side, discard bool) int {
	w := 0
	for _, gu := range units {
		info := gu.BorderInfo(side)
		if info == nil || (discard && info.Discard) {
			continue
		}
		w = max(w, info.RetainedWidth())
	}
	return w / 2
}

func (p *PrimaryGridUnit) String() string {
	return fmt.Sprintf("cell %s (%dx%d)", p.label, p.rowSpan, p.colSpan)
}
