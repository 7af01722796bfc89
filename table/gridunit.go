package table

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/fo"
)

// Flag 是网格单元的位置标志位。
type Flag uint16

const (
	InFirstColumn Flag = 1 << iota
	InLastColumn
	FirstInTable
	FirstInPart
	LastInPart
	LastInTable
	KeepWithNextPending
	KeepWithPreviousPending
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{InFirstColumn, "in-first-column"},
	{InLastColumn, "in-last-column"},
	{FirstInTable, "first-in-table"},
	{FirstInPart, "first-in-part"},
	{LastInPart, "last-in-part"},
	{LastInTable, "last-in-table"},
	{KeepWithNextPending, "keep-with-next-pending"},
	{KeepWithPreviousPending, "keep-with-previous-pending"},
}

func (f Flag) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// ResolveFlags 调整边框冲突解析的行为。
type ResolveFlags int

// VerticalStartEndOfTable 允许表格自身的 before/after 边框参与解析。
const VerticalStartEndOfTable ResolveFlags = 1

// GridUnit 是表格网格中的一个 (行, 列) 位置。cell 为 nil 表示空位。
type GridUnit struct {
	primary      *PrimaryGridUnit
	cell         *fo.TableCell
	column       *fo.TableColumn
	row          *fo.TableRow
	startCol     int
	colSpanIndex int
	rowSpanIndex int
	flags        Flag

	effBorders *fo.BorderPaddingBackground
}

func newGridUnit(primary *PrimaryGridUnit, column *fo.TableColumn, startCol, colSpanIndex, rowSpanIndex int) *GridUnit {
	gu := &GridUnit{
		primary:      primary,
		column:       column,
		startCol:     startCol,
		colSpanIndex: colSpanIndex,
		rowSpanIndex: rowSpanIndex,
	}
	if primary != nil {
		gu.cell = primary.cell
	}
	return gu
}

func newEmptyGridUnit(column *fo.TableColumn, row *fo.TableRow, startCol int) *GridUnit {
	return &GridUnit{column: column, row: row, startCol: startCol}
}

// Primary returns the primary unit of the occupying cell, or nil for an
// empty slot. A primary unit returns itself.
func (gu *GridUnit) Primary() *PrimaryGridUnit { return gu.primary }

// IsPrimary reports whether gu is the origin of its cell.
func (gu *GridUnit) IsPrimary() bool {
	return gu.primary != nil && &gu.primary.GridUnit == gu
}

func (gu *GridUnit) IsEmpty() bool { return gu.cell == nil }

func (gu *GridUnit) Cell() *fo.TableCell     { return gu.cell }
func (gu *GridUnit) Column() *fo.TableColumn { return gu.column }
func (gu *GridUnit) Row() *fo.TableRow       { return gu.row }
func (gu *GridUnit) StartCol() int           { return gu.startCol }
func (gu *GridUnit) ColSpanIndex() int       { return gu.colSpanIndex }
func (gu *GridUnit) RowSpanIndex() int       { return gu.rowSpanIndex }

// Body returns the table part the unit belongs to.
func (gu *GridUnit) Body() *fo.TableBody {
	if gu.row != nil {
		return gu.row.Body()
	}
	if gu.cell != nil {
		return gu.cell.Body()
	}
	return nil
}

func (gu *GridUnit) Table() *fo.Table {
	if b := gu.Body(); b != nil {
		return b.Table()
	}
	return nil
}

// IsLastGridUnitColSpan reports whether gu is the rightmost unit of its cell.
func (gu *GridUnit) IsLastGridUnitColSpan() bool {
	if gu.primary == nil {
		return true
	}
	return gu.colSpanIndex == gu.primary.colSpan-1
}

// IsLastGridUnitRowSpan reports whether gu lies on the last row its cell
// occupies. Spans clipped at the end of a part count as ending there.
func (gu *GridUnit) IsLastGridUnitRowSpan() bool {
	if gu.primary == nil {
		return true
	}
	return gu.rowSpanIndex == gu.primary.rowSpan-1
}

// CreateNextRowSpanningGridUnit returns the unit the cell occupies in the
// next row, or nil once the last row of the span has been produced.
func (gu *GridUnit) CreateNextRowSpanningGridUnit() *GridUnit {
	if gu.IsEmpty() || gu.IsLastGridUnitRowSpan() {
		return nil
	}
	return newGridUnit(gu.primary, gu.column, gu.startCol, gu.colSpanIndex, gu.rowSpanIndex+1)
}

func (gu *GridUnit) Flag(f Flag) bool { return gu.flags&f != 0 }

func (gu *GridUnit) SetFlag(f Flag, value bool) {
	if value {
		gu.flags |= f
	} else {
		gu.flags &^= f
	}
}

// Flags returns the full flag set.
func (gu *GridUnit) Flags() Flag { return gu.flags }

// OriginalBorderInfoForCell returns the border authored on the cell for
// side, before any resolution. Empty units have none.
func (gu *GridUnit) OriginalBorderInfoForCell(side fo.Side) *fo.BorderInfo {
	if gu.cell == nil {
		return nil
	}
	return gu.cell.BPB.BorderInfo(side)
}

// EffectiveBorders returns the resolved borders and padding, nil until
// resolution ran.
func (gu *GridUnit) EffectiveBorders() *fo.BorderPaddingBackground { return gu.effBorders }

// BorderInfo returns the resolved border for side; unresolved sides and
// "no border" outcomes both report nil.
func (gu *GridUnit) BorderInfo(side fo.Side) *fo.BorderInfo {
	return gu.effBorders.BorderInfo(side)
}

// AssignBorderForSeparateBorderModel takes the cell's own borders and
// padding unchanged.
func (gu *GridUnit) AssignBorderForSeparateBorderModel() {
	if gu.cell == nil {
		return
	}
	bpb := gu.cell.BPB
	gu.effBorders = &bpb
}

// ResolveBorder resolves side against other (nil at a table edge) and stores
// the winner together with the cell's padding. Repeated calls overwrite the
// previous result.
func (gu *GridUnit) ResolveBorder(other *GridUnit, side fo.Side, flags ResolveFlags) Resolution {
	if gu.cell == nil {
		return Resolution{}
	}
	res := DetermineWinner(gu, other, side, flags)
	if gu.effBorders == nil {
		gu.effBorders = &fo.BorderPaddingBackground{}
	}
	winner := res.Winner
	if !winner.Visible() {
		winner = nil
	}
	gu.effBorders.SetBorderInfo(winner, side)
	gu.effBorders.CopyPadding(&gu.cell.BPB)
	return res
}

func (gu *GridUnit) String() string {
	if gu.IsEmpty() {
		return fmt.Sprintf("empty(col %d)", gu.startCol+1)
	}
	kind := "span"
	if gu.IsPrimary() {
		kind = "primary"
	}
	return fmt.Sprintf("%s(%s r%d c%d)", kind, gu.primary.Label(), gu.rowSpanIndex, gu.colSpanIndex)
}
