package table

import (
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
)

// Stepper 将一个行组转换为 box/glue/penalty 序列：各活动单元格同步推进，
// 每一步给出一个候选断点。
type Stepper struct {
	table   *fo.Table
	log     *logrus.Entry
	newCell CellFactory

	headerNetHeight int
	footerNetHeight int
	omitHeader      bool
	omitFooter      bool

	rowGroup           []*EffRow
	totalHeight        int
	activeRowIndex     int
	previousRowsLength int
	activeCells        []ActiveCell
	nextActiveCells    []ActiveCell
	delayingNextRow    bool
	rowFirstStep       int
	rowFinished        bool
	// rowHeightSmallerThanFirstStep 表示当前行的实际高度小于其首步，
	// 在此断开不可能，下一个 penalty 取无穷大。
	rowHeightSmallerThanFirstStep bool
	nextBreakClass                layout.BreakClass
}

// NewStepper creates a stepper for the row groups of t.
func NewStepper(t *fo.Table, opts Options) *Stepper {
	return &Stepper{
		table:      t,
		log:        opts.entry(),
		newCell:    opts.cellFactory(),
		omitHeader: t.OmitHeaderAtBreak || opts.OmitHeaderAtBreak,
		omitFooter: t.OmitFooterAtBreak || opts.OmitFooterAtBreak,
	}
}

// SetHeaderFooterHeights sets the heights repeated at each break inside a
// body: the penalty width includes them unless omitted at break.
func (s *Stepper) SetHeaderFooterHeights(header, footer int) {
	s.headerNetHeight = header
	s.footerNetHeight = footer
}

func (s *Stepper) setup(rowGroup []*EffRow) {
	s.rowGroup = rowGroup
	s.totalHeight = TotalHeight(rowGroup)
	s.activeRowIndex = 0
	s.previousRowsLength = 0
	s.activeCells = nil
	s.nextActiveCells = nil
	s.delayingNextRow = false
	s.rowFirstStep = 0
	s.rowFinished = false
	s.rowHeightSmallerThanFirstStep = false
	s.nextBreakClass = layout.BreakAuto
}

// CombinedElementsForRowGroup steps through one row group of the given part
// and returns its element sequence. Row heights must have been computed.
func (s *Stepper) CombinedElementsForRowGroup(rowGroup []*EffRow, part fo.PartKind) []layout.Element {
	if len(rowGroup) == 0 {
		return nil
	}
	s.setup(rowGroup)
	s.activeCells = s.activateCells(nil, 0)

	keepTogether := s.table.KeepTogether
	if row := rowGroup[0].row; row != nil && row.Body() != nil {
		keepTogether = keepTogether.Compare(row.Body().KeepTogether)
	}

	var out []layout.Element
	var lastPos *ContentPosition
	var lastPenalty *layout.Penalty
	cumulated, prevStep := 0, -1
	step := s.firstStep()
	for step >= 0 {
		if step <= prevStep {
			// 新行的首步落在已输出的偏移上
			s.mergeStep(lastPos, lastPenalty)
			step = s.nextStep()
			continue
		}
		prevStep = step
		maxRemaining := s.maxRemainingHeight()
		penaltyOrGlueLen := step + maxRemaining - s.totalHeight
		boxLen := step - cumulated - max(0, penaltyOrGlueLen)
		cumulated += boxLen + max(0, -penaltyOrGlueLen)

		parts := make([]*CellPart, 0, len(s.activeCells))
		for _, ac := range s.activeCells {
			parts = append(parts, ac.CreateCellPart())
		}
		pos := &ContentPosition{CellParts: parts, Row: s.rowGroup[s.activeRowIndex]}
		if s.delayingNextRow {
			pos.NewPageRow = s.rowGroup[s.activeRowIndex+1]
		}
		if len(out) == 0 {
			pos.SetFlag(FirstInRowGroup, true)
		}
		lastPos = pos
		out = append(out, &layout.Box{W: boxLen, Pos: pos})

		penaltyLen := max(0, penaltyOrGlueLen)
		breakPos := &BreakPosition{Row: pos.Row}
		if part == fo.PartBody {
			if !s.omitHeader {
				penaltyLen += s.headerNetHeight
				breakPos.HeaderHeight = s.headerNetHeight
			}
			if !s.omitFooter {
				penaltyLen += s.footerNetHeight
				breakPos.FooterHeight = s.footerNetHeight
			}
		}

		keep := keepTogether
		if s.rowFinished && s.activeRowIndex == len(s.rowGroup)-1 {
			// 行组末尾的断点由调用方在连接行组时决定
			keep = layout.KeepAuto
		}
		stepPenalty := 0
		for _, ac := range s.activeCells {
			keep = keep.Compare(ac.KeepWithNextSignal())
			stepPenalty = max(stepPenalty, ac.PenaltyValue())
		}
		active := s.rowGroup[s.activeRowIndex]
		if !s.rowFinished {
			keep = keep.Compare(active.KeepTogether())
		} else if s.activeRowIndex < len(s.rowGroup)-1 {
			following := s.rowGroup[s.activeRowIndex+1]
			keep = keep.Compare(active.KeepWithNext())
			keep = keep.Compare(following.KeepWithPrevious())
			s.nextBreakClass = layout.CompareBreakClasses(s.nextBreakClass, active.BreakAfter())
			s.nextBreakClass = layout.CompareBreakClasses(s.nextBreakClass, following.BreakBefore())
		}
		p := keep.Penalty()
		if s.rowHeightSmallerThanFirstStep {
			s.rowHeightSmallerThanFirstStep = false
			p = layout.Infinite
		}
		p = min(max(p, stepPenalty), layout.Infinite)
		breakClass := keep.Context()
		if s.nextBreakClass != layout.BreakAuto {
			s.log.WithField("class", s.nextBreakClass).Trace("forced break encountered")
			p = -layout.Infinite
			breakClass = s.nextBreakClass
		}
		lastPenalty = &layout.Penalty{W: penaltyLen, P: p, BreakClass: breakClass, Pos: breakPos}
		out = append(out, lastPenalty)
		if penaltyOrGlueLen < 0 {
			out = append(out, &layout.Glue{W: -penaltyOrGlueLen})
		}

		s.log.WithFields(logrus.Fields{
			"step":    step,
			"box":     boxLen,
			"penalty": p,
			"row":     s.activeRowIndex,
		}).Trace("step")
		step = s.nextStep()
	}
	if lastPos != nil {
		lastPos.SetFlag(LastInRowGroup, true)
	}
	return out
}

// mergeStep folds a step that repeats the previous offset into the elements
// already emitted for it: cells that started meanwhile contribute their
// parts, and keeps or forced breaks at the row boundary apply to the
// previous penalty.
func (s *Stepper) mergeStep(pos *ContentPosition, pen *layout.Penalty) {
	seen := make(map[*PrimaryGridUnit]bool, len(pos.CellParts))
	for _, cp := range pos.CellParts {
		seen[cp.Primary] = true
	}
	keep := layout.KeepAuto
	for _, ac := range s.activeCells {
		if seen[ac.Primary()] {
			continue
		}
		pos.CellParts = append(pos.CellParts, ac.CreateCellPart())
		keep = keep.Compare(ac.KeepWithNextSignal())
	}
	bc := s.nextBreakClass
	active := s.rowGroup[s.activeRowIndex]
	if !s.rowFinished {
		keep = keep.Compare(active.KeepTogether())
	} else if s.activeRowIndex < len(s.rowGroup)-1 {
		following := s.rowGroup[s.activeRowIndex+1]
		keep = keep.Compare(active.KeepWithNext())
		keep = keep.Compare(following.KeepWithPrevious())
		bc = layout.CompareBreakClasses(bc, active.BreakAfter())
		bc = layout.CompareBreakClasses(bc, following.BreakBefore())
	}
	s.log.WithFields(logrus.Fields{"row": s.activeRowIndex, "class": bc}).Trace("step merged into previous break")
	if bc != layout.BreakAuto {
		pen.P = -layout.Infinite
		pen.BreakClass = layout.CompareBreakClasses(pen.BreakClass, bc)
		return
	}
	if !pen.IsForcedBreak() {
		pen.P = min(max(pen.P, keep.Penalty()), layout.Infinite)
	}
}

func (s *Stepper) activateCells(dst []ActiveCell, rowIndex int) []ActiveCell {
	row := s.rowGroup[rowIndex]
	for _, gu := range row.units {
		if gu.IsPrimary() {
			dst = append(dst, s.newCell(gu.primary, row, rowIndex, s.previousRowsLength))
		}
	}
	return dst
}

func (s *Stepper) firstStep() int {
	s.computeRowFirstStep(s.activeCells)
	s.signalRowFirstStep()
	step := s.considerRowLastStep(s.rowFirstStep)
	s.signalNextStep(step)
	return step
}

func (s *Stepper) nextStep() int {
	if s.rowFinished {
		if s.activeRowIndex == len(s.rowGroup)-1 {
			return -1
		}
		s.rowFinished = false
		s.removeCellsEndingOnCurrentRow()
		s.log.WithField("row", s.activeRowIndex).Trace("delaying next row")
		s.delayingNextRow = true
	}
	minStep := s.computeMinStep()
	if s.delayingNextRow {
		active := s.rowGroup[s.activeRowIndex]
		rowStart := s.previousRowsLength - active.height.Opt
		if minStep < 0 || minStep >= s.rowFirstStep || minStep-rowStart > active.explicitHeight.Max {
			s.delayingNextRow = false
			s.switchToNextRow()
			s.signalRowFirstStep()
			minStep = s.computeMinStep()
		}
	}
	if !s.delayingNextRow {
		minStep = s.considerRowLastStep(minStep)
	}
	s.signalNextStep(minStep)
	return minStep
}

func (s *Stepper) computeRowFirstStep(cells []ActiveCell) {
	s.rowFirstStep = 0
	for _, ac := range cells {
		s.rowFirstStep = max(s.rowFirstStep, ac.FirstStep())
	}
}

func (s *Stepper) computeMinStep() int {
	minStep := -1
	for _, ac := range s.activeCells {
		next := ac.NextStep()
		if next >= 0 && (minStep < 0 || next < minStep) {
			minStep = next
		}
	}
	return minStep
}

func (s *Stepper) signalRowFirstStep() {
	for _, ac := range s.activeCells {
		ac.SignalRowFirstStep(s.rowFirstStep)
	}
}

func (s *Stepper) signalNextStep(step int) {
	s.nextBreakClass = layout.BreakAuto
	for _, ac := range s.activeCells {
		s.nextBreakClass = layout.CompareBreakClasses(s.nextBreakClass, ac.SignalNextStep(step))
	}
}

// considerRowLastStep checks whether the active row finishes at step. If it
// does, the step becomes the largest last step of the cells ending on the
// row, which accounts for their full after borders.
func (s *Stepper) considerRowLastStep(step int) int {
	s.rowFinished = true
	for _, ac := range s.activeCells {
		if ac.EndsOnRow(s.activeRowIndex) && !ac.Finishes(step) {
			s.rowFinished = false
			break
		}
	}
	if !s.rowFinished {
		return step
	}
	maxStep := 0
	for _, ac := range s.activeCells {
		if ac.EndsOnRow(s.activeRowIndex) {
			maxStep = max(maxStep, ac.LastStep())
		}
	}
	for _, ac := range s.activeCells {
		ac.EndRow(s.activeRowIndex)
	}
	if maxStep < step {
		s.log.WithFields(logrus.Fields{"row": s.activeRowIndex, "step": step, "last": maxStep}).
			Trace("row height smaller than first step, break will be impossible")
		s.rowHeightSmallerThanFirstStep = true
	}
	s.prepareNextRow()
	return max(step, maxStep)
}

func (s *Stepper) prepareNextRow() {
	if s.activeRowIndex >= len(s.rowGroup)-1 {
		return
	}
	s.previousRowsLength += s.rowGroup[s.activeRowIndex].height.Opt
	s.nextActiveCells = s.activateCells(nil, s.activeRowIndex+1)
	s.computeRowFirstStep(s.nextActiveCells)
}

func (s *Stepper) switchToNextRow() {
	s.activeRowIndex++
	s.log.WithField("row", s.activeRowIndex).Trace("switching to next row")
	for _, ac := range s.activeCells {
		ac.NextRowStarts()
	}
	s.activeCells = append(s.activeCells, s.nextActiveCells...)
	s.nextActiveCells = nil
}

func (s *Stepper) removeCellsEndingOnCurrentRow() {
	kept := s.activeCells[:0]
	for _, ac := range s.activeCells {
		if !ac.EndsOnRow(s.activeRowIndex) {
			kept = append(kept, ac)
		}
	}
	s.activeCells = kept
}

// maxRemainingHeight is the largest remaining length of the active cells
// beyond the rows they still span, plus the rows not reached yet.
func (s *Stepper) maxRemainingHeight() int {
	first := s.rowGroup[0].index
	maxH := 0
	for _, ac := range s.activeCells {
		remain := ac.RemainingLength()
		p := ac.Primary()
		end := p.StartRow() - first + p.RowSpan()
		for i := s.activeRowIndex + 1; i < end && i < len(s.rowGroup); i++ {
			remain -= s.rowGroup[i].height.Opt
		}
		maxH = max(maxH, remain)
	}
	for i := s.activeRowIndex + 1; i < len(s.rowGroup); i++ {
		maxH += s.rowGroup[i].height.Opt
	}
	return maxH
}
