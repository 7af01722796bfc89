package table

import (
	"fmt"

	"github.com/ByLCY/folio/fo"
)

// Level 是候选边框的优先级层次，数值越小优先级越高。
type Level int

const (
	LevelCell Level = iota
	LevelRow
	LevelBody
	LevelColumn
	LevelColumnGroup
	LevelTable
)

const numLevels = 6

var levelNames = [numLevels]string{"cell", "row", "body", "column", "column-group", "table"}

func (l Level) String() string {
	if l >= 0 && int(l) < numLevels {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Candidates 是一侧按优先级排列的六个候选位，nil 表示该层不适用或未声明。
type Candidates [numLevels]*fo.BorderInfo

// Resolution 记录一次解析的结果以及决定它的规则。
type Resolution struct {
	Winner *fo.BorderInfo
	Level  Level
	// Other 为 true 表示胜出者来自相邻单元一侧。
	Other bool
	// Rule 是做出决定的规则编号（1 到 5），0 表示没有任何候选。
	Rule int
	// AnyVisible 是规则 2 的结果：是否存在可见样式的候选。它不会提前
	// 结束解析。
	AnyVisible bool

	Current Candidates
	Others  Candidates
}

// DetermineWinner collects the candidates for side of current (and the
// opposite side of other, which may be nil at a table edge) and applies the
// collapse rules.
func DetermineWinner(current, other *GridUnit, side fo.Side, flags ResolveFlags) Resolution {
	cur, oth := collectCandidates(current, other, side, flags)
	res := resolveCandidates(cur, oth)
	res.Current, res.Others = cur, oth
	return res
}

func collectCandidates(current, other *GridUnit, side fo.Side, flags ResolveFlags) (Candidates, Candidates) {
	var cur, oth Candidates
	otherSide := side.Opposite()
	if other != nil && other.cell == nil && other.column == nil && other.row == nil {
		other = nil
	}

	inFirst := current.Flag(InFirstColumn)
	inLast := current.Flag(InLastColumn)

	// cell
	cur[LevelCell] = current.OriginalBorderInfoForCell(side)
	if other != nil {
		oth[LevelCell] = other.OriginalBorderInfoForCell(otherSide)
	}

	// row
	if current.row != nil && (side.IsVertical() ||
		(side == fo.Start && inFirst) || (side == fo.End && inLast)) {
		cur[LevelRow] = current.row.BPB.BorderInfo(side)
	}
	if other != nil && side.IsVertical() && other.row != nil {
		oth[LevelRow] = other.row.BPB.BorderInfo(otherSide)
	}

	// row group
	if body := current.Body(); body != nil &&
		((side == fo.Before && current.Flag(FirstInPart)) ||
			(side == fo.After && current.Flag(LastInPart)) ||
			(side == fo.Start && inFirst) || (side == fo.End && inLast)) {
		cur[LevelBody] = body.BPB.BorderInfo(side)
	}
	if other != nil {
		if body := other.Body(); body != nil &&
			((otherSide == fo.Before && other.Flag(FirstInPart)) ||
				(otherSide == fo.After && other.Flag(LastInPart))) {
			oth[LevelBody] = body.BPB.BorderInfo(otherSide)
		}
	}

	// column
	if current.column != nil &&
		((side == fo.Before && current.Flag(FirstInTable)) ||
			(side == fo.After && current.Flag(LastInTable)) ||
			!side.IsVertical()) {
		cur[LevelColumn] = current.column.BPB.BorderInfo(side)
	}
	if other != nil && other.column != nil &&
		((otherSide == fo.Before && other.Flag(FirstInTable)) ||
			(otherSide == fo.After && other.Flag(LastInTable)) ||
			!side.IsVertical()) {
		oth[LevelColumn] = other.column.BPB.BorderInfo(otherSide)
	}

	// column-group 不支持，两侧始终为空

	// table
	if other == nil {
		if t := current.Table(); t != nil &&
			((side.IsVertical() && flags&VerticalStartEndOfTable != 0) || !side.IsVertical()) {
			cur[LevelTable] = t.BPB.BorderInfo(side)
		}
	}
	return cur, oth
}

// resolveCandidates applies the five collapse rules. Each rule works on a
// freshly filtered copy of the lists.
func resolveCandidates(cur, oth Candidates) Resolution {
	// 规则 1：hidden 优先
	for i := 0; i < numLevels; i++ {
		if isHidden(cur[i]) {
			return Resolution{Winner: cur[i], Level: Level(i), Rule: 1}
		}
		if isHidden(oth[i]) {
			return Resolution{Winner: oth[i], Level: Level(i), Other: true, Rule: 1}
		}
	}

	// 规则 2：只计算，不据此提前返回
	anyVisible := false
	for i := 0; i < numLevels; i++ {
		if isVisibleStyle(cur[i]) || isVisibleStyle(oth[i]) {
			anyVisible = true
			break
		}
	}

	// 规则 3：最宽者胜
	maxWidth := -1
	for i := 0; i < numLevels; i++ {
		if cur[i] != nil {
			maxWidth = max(maxWidth, cur[i].RetainedWidth())
		}
		if oth[i] != nil {
			maxWidth = max(maxWidth, oth[i].RetainedWidth())
		}
	}
	if maxWidth < 0 {
		return Resolution{Rule: 0, AnyVisible: anyVisible}
	}
	cur = filterCandidates(cur, func(b *fo.BorderInfo) bool { return b.RetainedWidth() == maxWidth })
	oth = filterCandidates(oth, func(b *fo.BorderInfo) bool { return b.RetainedWidth() == maxWidth })
	if res, ok := single(cur, oth); ok {
		res.Rule, res.AnyVisible = 3, anyVisible
		return res
	}

	// 规则 4：样式偏好
	best := preferenceFloor
	for i := 0; i < numLevels; i++ {
		if cur[i] != nil {
			best = max(best, stylePreference(cur[i].Style))
		}
		if oth[i] != nil {
			best = max(best, stylePreference(oth[i].Style))
		}
	}
	cur = filterCandidates(cur, func(b *fo.BorderInfo) bool { return stylePreference(b.Style) == best })
	oth = filterCandidates(oth, func(b *fo.BorderInfo) bool { return stylePreference(b.Style) == best })
	if res, ok := single(cur, oth); ok {
		res.Rule, res.AnyVisible = 4, anyVisible
		return res
	}

	// 规则 5：按优先级先到先得，同层时当前一侧优先
	for i := 0; i < numLevels; i++ {
		if cur[i] != nil {
			return Resolution{Winner: cur[i], Level: Level(i), Rule: 5, AnyVisible: anyVisible}
		}
		if oth[i] != nil {
			return Resolution{Winner: oth[i], Level: Level(i), Other: true, Rule: 5, AnyVisible: anyVisible}
		}
	}
	return Resolution{AnyVisible: anyVisible}
}

func filterCandidates(in Candidates, keep func(*fo.BorderInfo) bool) Candidates {
	var out Candidates
	for i, b := range in {
		if b != nil && keep(b) {
			out[i] = b
		}
	}
	return out
}

// single returns the only remaining candidate, if exactly one is left.
func single(cur, oth Candidates) (Resolution, bool) {
	var res Resolution
	count := 0
	for i := 0; i < numLevels; i++ {
		if cur[i] != nil {
			count++
			res = Resolution{Winner: cur[i], Level: Level(i)}
		}
		if oth[i] != nil {
			count++
			res = Resolution{Winner: oth[i], Level: Level(i), Other: true}
		}
	}
	return res, count == 1
}

func isHidden(b *fo.BorderInfo) bool { return b != nil && b.Style == fo.StyleHidden }

func isVisibleStyle(b *fo.BorderInfo) bool {
	return b != nil && b.Style != fo.StyleNone && b.Style != fo.StyleHidden
}

// none 与 hidden 排在 inset 之后
const preferenceFloor = -8

// stylePreference ranks styles for rule 4: double > solid > dashed > dotted
// > ridge > outset > groove > inset.
func stylePreference(s fo.BorderStyle) int {
	switch s {
	case fo.StyleDouble:
		return 0
	case fo.StyleSolid:
		return -1
	case fo.StyleDashed:
		return -2
	case fo.StyleDotted:
		return -3
	case fo.StyleRidge:
		return -4
	case fo.StyleOutset:
		return -5
	case fo.StyleGroove:
		return -6
	case fo.StyleInset:
		return -7
	default:
		return preferenceFloor
	}
}
