package table

import (
	"strings"

	"github.com/ByLCY/folio/layout"
)

// PositionFlag 标记行组边界。
type PositionFlag int

const (
	FirstInRowGroup PositionFlag = 1 << iota
	LastInRowGroup
)

// ContentPosition 是步进器输出的 box 所携带的位置信息：当前步各活动
// 单元格的内容段，以及所在行。
type ContentPosition struct {
	CellParts []*CellPart
	Row       *EffRow
	// NewPageRow 在延迟换行期间指向下一行；在此断开时新页从该行开始。
	NewPageRow *EffRow
	flags      PositionFlag
}

func (p *ContentPosition) Flag(f PositionFlag) bool { return p.flags&f != 0 }

func (p *ContentPosition) SetFlag(f PositionFlag, value bool) {
	if value {
		p.flags |= f
	} else {
		p.flags &^= f
	}
}

func (p *ContentPosition) String() string {
	parts := make([]string, 0, len(p.CellParts))
	for _, cp := range p.CellParts {
		parts = append(parts, cp.String())
	}
	return strings.Join(parts, " ")
}

// BreakPosition 是步进器输出的 penalty 所携带的位置信息。在表体断开时，
// 宽度中包含了需要重复的表头与表尾高度。
type BreakPosition struct {
	Row          *EffRow
	HeaderHeight int
	FooterHeight int
}

// Tags returns the debug tags of a stepper position.
func Tags(pos layout.Position) []string {
	switch p := pos.(type) {
	case *ContentPosition:
		var tags []string
		if p.Flag(FirstInRowGroup) {
			tags = append(tags, "first-in-row-group")
		}
		if p.Flag(LastInRowGroup) {
			tags = append(tags, "last-in-row-group")
		}
		if p.NewPageRow != nil {
			tags = append(tags, "delayed")
		}
		return tags
	case *BreakPosition:
		var tags []string
		if p.HeaderHeight > 0 {
			tags = append(tags, "repeat-header")
		}
		if p.FooterHeight > 0 {
			tags = append(tags, "repeat-footer")
		}
		return tags
	default:
		return nil
	}
}
