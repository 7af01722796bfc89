package table

import (
	"fmt"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// ActiveCell 跟踪一个单元格在行组中的推进。步长均为相对行组起点的累计偏移。
type ActiveCell interface {
	// Primary returns the cell being stepped.
	Primary() *PrimaryGridUnit
	// FirstStep is the smallest step at which the cell contributes content.
	FirstStep() int
	// NextStep returns the next candidate step, or -1 when the cell has
	// nothing left to contribute.
	NextStep() int
	// RemainingLength is the length still to be placed, borders included.
	RemainingLength() int
	// CreateCellPart materializes the content chunk for the current step.
	CreateCellPart() *CellPart
	// SignalRowFirstStep lets the cell extend its current step up to the
	// first step of the row, since no break happens before it anyway.
	SignalRowFirstStep(firstStep int)
	// SignalNextStep commits the cell to step and returns the break class of
	// a forced break it contains, or BreakAuto.
	SignalNextStep(step int) layout.BreakClass
	// KeepWithNextSignal reports the keep-with-next that applies once the
	// cell's last part has been created.
	KeepWithNextSignal() layout.Keep
	// PenaltyValue is the cost of the break the cell stopped at.
	PenaltyValue() int
	EndsOnRow(rowIndex int) bool
	Finishes(step int) bool
	// LastStep is the step at which the cell ends, full after border included.
	LastStep() int
	EndRow(rowIndex int)
	NextRowStarts()
}

// CellFactory 为从 rowIndex 行开始的单元格创建 ActiveCell。
// previousRowsLength 是行组中该行之前各行的高度之和。
type CellFactory func(pgu *PrimaryGridUnit, row *EffRow, rowIndex, previousRowsLength int) ActiveCell

// CellPart 是单元格在两个断点之间的一段内容。Start 到 End 为闭区间的
// 元素下标；End < Start 表示空段。
type CellPart struct {
	Primary *PrimaryGridUnit
	Start   int
	End     int
	// Length 是本段内容长度，不含断点处可丢弃的前导 glue。
	Length                  int
	CondBeforeContentLength int
	BreakPenaltyLength      int
	BPBeforeNormal          int
	BPBeforeFirst           int
	BPAfterNormal           int
	BPAfterTrailing         int
	Last                    bool
}

func (p *CellPart) IsFirstPart() bool { return p.Start == 0 }

func (p *CellPart) IsLastPart() bool { return p.Last }

// IsEmpty reports whether the part carries no element.
func (p *CellPart) IsEmpty() bool { return p.End < p.Start }

func (p *CellPart) String() string {
	if p.IsEmpty() {
		return fmt.Sprintf("%s:-", p.Primary.Label())
	}
	return fmt.Sprintf("%s:%d-%d", p.Primary.Label(), p.Start, p.End)
}

type cellStep struct {
	start         int // 本步第一个元素下标
	end           int // 本步最后一个元素下标，-1 表示尚无内容
	contentLength int // 含之前各行的累计长度
	condBefore    int // 断点后可丢弃的前导 glue
	penaltyLength int
	penaltyValue  int
	breakClass    layout.BreakClass
	totalLength   int
}

// contentCell 是基于单元格内容序列的默认 ActiveCell。
type contentCell struct {
	pgu    *PrimaryGridUnit
	elems  []layout.Element
	cursor int

	endRowIndex int
	spanIndex   int

	paddingBefore   int
	paddingAfter    int
	bpBeforeNormal  int
	bpBeforeLeading int
	bpAfterNormal   int
	bpAfterTrailing int

	totalLength     int
	includedLength  int
	remainingLength int

	previous  cellStep
	next      cellStep
	afterNext cellStep

	keepWithNext layout.Keep
	lastCellPart bool
}

// NewContentCell is the default CellFactory. It steps through the
// primary's element sequence, padded to the explicit cell and row heights.
func NewContentCell(pgu *PrimaryGridUnit, row *EffRow, rowIndex, previousRowsLength int) ActiveCell {
	bpb := &pgu.cell.BPB
	c := &contentCell{
		pgu:           pgu,
		paddingBefore: bpb.PaddingWidth(fo.Before),
		paddingAfter:  bpb.PaddingWidth(fo.After),
		endRowIndex:   rowIndex + pgu.rowSpan - 1,
		keepWithNext:  layout.KeepAuto,
	}
	c.bpBeforeNormal = c.paddingBefore + pgu.BeforeBorderWidth(false)
	c.bpBeforeLeading = c.paddingBefore + pgu.BeforeBorderWidth(true)
	c.bpAfterNormal = c.paddingAfter + pgu.AfterBorderWidth(false)
	c.bpAfterTrailing = c.paddingAfter + pgu.AfterBorderWidth(true)

	c.elems = padToExplicitHeight(pgu.Elements(), pgu.cell.Height, row.ExplicitHeight(), pgu.ContentLength())
	c.includedLength = -1
	c.totalLength = previousRowsLength + layout.ContentLength(c.elems)
	c.remainingLength = c.totalLength - previousRowsLength

	c.afterNext = cellStep{end: -1, contentLength: previousRowsLength}
	c.previous = c.afterNext
	c.gotoNextLegalBreak()
	c.next = c.afterNext
	if c.afterNext.end < len(c.elems)-1 {
		c.gotoNextLegalBreak()
	}
	return c
}

// padToExplicitHeight makes the cell reach its minimum height on whatever
// page it is cut, and its optimum height overall.
func padToExplicitHeight(elems []layout.Element, cellBPD, rowBPD layout.MinOptMax, contentLength int) []layout.Element {
	minBPD := max(cellBPD.Min, rowBPD.Min)
	optBPD := max(minBPD, cellBPD.Opt, rowBPD.Opt)
	if minBPD <= 0 && contentLength >= optBPD {
		return elems
	}
	out := make([]layout.Element, 0, len(elems)+2)
	cumulated := 0
	prevIsBox := false
	for _, el := range elems {
		if cumulated >= minBPD {
			out = append(out, el)
			continue
		}
		switch e := el.(type) {
		case *layout.Box:
			prevIsBox = true
			cumulated += e.W
			out = append(out, e)
		case *layout.Glue:
			if prevIsBox {
				out = append(out, &layout.Penalty{W: minBPD - cumulated, P: 0})
			}
			prevIsBox = false
			cumulated += e.W
			out = append(out, e)
		case *layout.Penalty:
			prevIsBox = false
			if e.P < layout.Infinite && cumulated+e.W < minBPD {
				filler := *e
				filler.W = minBPD - cumulated
				out = append(out, &filler)
			} else {
				out = append(out, e)
			}
		default:
			out = append(out, el)
		}
	}
	if contentLength < optBPD {
		out = append(out, &layout.Box{W: optBPD - contentLength, Auxiliary: true})
	}
	return out
}

func (c *contentCell) gotoNextLegalBreak() {
	s := &c.afterNext
	s.penaltyLength, s.penaltyValue, s.condBefore = 0, 0, 0
	s.breakClass = layout.BreakAuto
	s.start = c.cursor
	breakFound, prevIsBox, boxFound := false, false, false
	for !breakFound && c.cursor < len(c.elems) {
		switch e := c.elems[c.cursor].(type) {
		case *layout.Penalty:
			prevIsBox = false
			c.cursor++
			if e.P < layout.Infinite {
				breakFound = true
				s.penaltyLength = e.W
				s.penaltyValue = e.P
				if e.IsForcedBreak() {
					s.breakClass = e.BreakClass
					if s.breakClass == layout.BreakAuto {
						s.breakClass = layout.BreakPage
					}
				}
			}
		case *layout.Glue:
			if prevIsBox {
				// 断点在 glue 之前，glue 归入下一步
				breakFound = true
				break
			}
			c.cursor++
			s.contentLength += e.W
			if !boxFound {
				s.condBefore += e.W
			}
		default:
			c.cursor++
			prevIsBox, boxFound = true, true
			s.contentLength += e.Width()
		}
	}
	s.end = c.cursor - 1
	s.totalLength = c.bpBeforeNormal + s.contentLength + s.penaltyLength + c.bpAfterTrailing
}

func (c *contentCell) lastIndex() int { return len(c.elems) - 1 }

func (c *contentCell) includedInLastStep() bool { return c.includedLength == c.next.contentLength }

func (c *contentCell) Primary() *PrimaryGridUnit { return c.pgu }

func (c *contentCell) FirstStep() int { return c.next.totalLength }

func (c *contentCell) NextStep() int {
	if c.includedInLastStep() {
		c.previous = c.next
		if c.next.end >= c.lastIndex() {
			c.next.start = len(c.elems)
			return -1
		}
		c.next = c.afterNext
		if c.afterNext.end < c.lastIndex() {
			c.gotoNextLegalBreak()
		}
	}
	return c.next.totalLength
}

func (c *contentCell) RemainingLength() int {
	if c.includedInLastStep() && c.next.end == c.lastIndex() {
		return 0
	}
	return c.bpBeforeLeading + c.remainingLength + c.bpAfterNormal
}

func (c *contentCell) computeRemainingLength() {
	c.remainingLength = c.totalLength - c.next.contentLength
	// 断点之后、下一个 box 之前的 glue 在断开时被丢弃
	for i := c.next.end + 1; i < len(c.elems); i++ {
		el := c.elems[i]
		if el.Kind() == layout.KindBox {
			break
		}
		if el.Kind() == layout.KindGlue {
			c.remainingLength -= el.Width()
		}
	}
}

func (c *contentCell) SignalRowFirstStep(firstStep int) {
	if c.next.end >= c.lastIndex() {
		return
	}
	for c.afterNext.totalLength <= firstStep && c.next.breakClass == layout.BreakAuto {
		// 合并后的步仍从原起点开始
		start, condBefore := c.next.start, c.next.condBefore
		c.next = c.afterNext
		c.next.start, c.next.condBefore = start, condBefore
		if c.afterNext.end >= c.lastIndex() {
			break
		}
		c.gotoNextLegalBreak()
	}
}

func (c *contentCell) SignalNextStep(step int) layout.BreakClass {
	if c.next.totalLength <= step {
		c.includedLength = c.next.contentLength
		c.computeRemainingLength()
		return c.next.breakClass
	}
	return layout.BreakAuto
}

func (c *contentCell) KeepWithNextSignal() layout.Keep { return c.keepWithNext }

func (c *contentCell) PenaltyValue() int {
	if c.includedInLastStep() {
		return c.next.penaltyValue
	}
	return c.previous.penaltyValue
}

func (c *contentCell) EndsOnRow(rowIndex int) bool { return rowIndex == c.endRowIndex }

func (c *contentCell) Finishes(step int) bool {
	return c.next.totalLength <= step && c.next.end == c.lastIndex()
}

func (c *contentCell) LastStep() int {
	return c.bpBeforeNormal + c.totalLength + c.bpAfterNormal
}

func (c *contentCell) EndRow(rowIndex int) {
	if c.EndsOnRow(rowIndex) {
		c.next.totalLength += c.bpAfterNormal - c.bpAfterTrailing
		c.bpAfterTrailing = c.bpAfterNormal
		c.lastCellPart = true
	}
}

func (c *contentCell) NextRowStarts() {
	c.spanIndex++
	trailing := c.paddingAfter + c.pgu.AfterBorderWidth(true)
	delta := trailing - c.bpAfterTrailing
	c.afterNext.totalLength += delta
	c.next.totalLength += delta
	c.bpAfterTrailing = trailing
}

func (c *contentCell) CreateCellPart() *CellPart {
	if c.next.end+1 == len(c.elems) {
		c.keepWithNext = c.pgu.KeepWithNext()
	}
	bpBeforeFirst := c.bpBeforeLeading
	if c.next.start == 0 {
		bpBeforeFirst = c.bpBeforeNormal
	}
	part := &CellPart{
		Primary:         c.pgu,
		BPBeforeNormal:  c.bpBeforeNormal,
		BPBeforeFirst:   bpBeforeFirst,
		BPAfterNormal:   c.bpAfterNormal,
		BPAfterTrailing: c.bpAfterTrailing,
		Last:            c.lastCellPart,
	}
	if !c.includedInLastStep() || c.next.start == len(c.elems) {
		part.Start = c.next.start
		part.End = c.previous.end
		part.BreakPenaltyLength = c.previous.penaltyLength
		return part
	}
	part.Start = c.next.start
	part.End = c.next.end
	part.CondBeforeContentLength = c.next.condBefore
	part.Length = c.next.contentLength - c.next.condBefore - c.previous.contentLength
	part.BreakPenaltyLength = c.next.penaltyLength
	return part
}

func (c *contentCell) String() string {
	return fmt.Sprintf("active %s (rows ..%d, next %s)", c.pgu.Label(), c.endRowIndex, layout.FormatMPT(c.next.totalLength))
}
