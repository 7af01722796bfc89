package fo

import (
	"fmt"

	"github.com/ByLCY/folio/layout"
)

// 该文件定义表格的结构化元素。元素在 Build 完成后视为不可变。

// BorderCollapse 选择边框模型。
type BorderCollapse int

const (
	Collapse BorderCollapse = iota
	Separate
)

func (c BorderCollapse) String() string {
	if c == Separate {
		return "separate"
	}
	return "collapse"
}

// PartKind 区分表头、表尾与表体。
type PartKind int

const (
	PartHeader PartKind = iota
	PartFooter
	PartBody
)

func (k PartKind) String() string {
	switch k {
	case PartHeader:
		return "header"
	case PartFooter:
		return "footer"
	default:
		return "body"
	}
}

// Table 是表格根元素，拥有列、各部分以及其下全部行与单元格。
type Table struct {
	Name              string
	BorderCollapse    BorderCollapse
	BorderSeparation  int // separate 模型下块方向的 border-separation（mpt）
	BPB               BorderPaddingBackground
	KeepTogether      layout.Keep
	OmitHeaderAtBreak bool
	OmitFooterAtBreak bool

	Columns []*TableColumn
	Header  *TableBody
	Footer  *TableBody
	Bodies  []*TableBody
}

// IsSeparateBorderModel reports whether borders are resolved per cell.
func (t *Table) IsSeparateBorderModel() bool { return t.BorderCollapse == Separate }

// NumColumns returns the number of declared columns.
func (t *Table) NumColumns() int { return len(t.Columns) }

// Column returns the column at the 0-based index, or nil.
func (t *Table) Column(i int) *TableColumn {
	if i < 0 || i >= len(t.Columns) {
		return nil
	}
	return t.Columns[i]
}

// Parts returns header, bodies and footer in document order.
func (t *Table) Parts() []*TableBody {
	parts := make([]*TableBody, 0, len(t.Bodies)+2)
	if t.Header != nil {
		parts = append(parts, t.Header)
	}
	parts = append(parts, t.Bodies...)
	if t.Footer != nil {
		parts = append(parts, t.Footer)
	}
	return parts
}

// TableColumn 对应 fo:table-column。Implicit 表示由首行推导而来。
type TableColumn struct {
	Number   int // 1 起
	BPB      BorderPaddingBackground
	Implicit bool
}

// TableBody 是一个表格部分（header/footer/body），即行组元素。
type TableBody struct {
	Kind         PartKind
	Index        int // 同类部分中的序号
	BPB          BorderPaddingBackground
	KeepTogether layout.Keep
	Rows         []*TableRow
	table        *Table
}

func (b *TableBody) Table() *Table { return b.table }

func (b *TableBody) String() string {
	if b.Kind == PartBody {
		return fmt.Sprintf("body#%d", b.Index+1)
	}
	return b.Kind.String()
}

// TableRow 对应 fo:table-row。
type TableRow struct {
	Index            int // 所在部分内的序号
	BPB              BorderPaddingBackground
	Height           layout.MinOptMax // 显式 block-progression-dimension
	KeepTogether     layout.Keep
	KeepWithNext     layout.Keep
	KeepWithPrevious layout.Keep
	BreakBefore      layout.BreakClass
	BreakAfter       layout.BreakClass
	Cells            []*TableCell
	body             *TableBody
}

func (r *TableRow) Body() *TableBody { return r.body }

// TableCell 对应 fo:table-cell。Content 是单元格内容的可断序列，
// 由单元格内容布局方提供，本包不解释其含义。
type TableCell struct {
	ColumnNumber     int // 1 起；0 表示按顺序放置
	ColSpan          int
	RowSpan          int
	BPB              BorderPaddingBackground
	Height           layout.MinOptMax
	KeepWithNext     layout.Keep
	KeepWithPrevious layout.Keep
	Content          []layout.Element
	row              *TableRow
}

func (c *TableCell) Row() *TableRow { return c.row }

func (c *TableCell) Body() *TableBody {
	if c.row == nil {
		return nil
	}
	return c.row.body
}

// NumberColumnsSpanned never reports less than one column.
func (c *TableCell) NumberColumnsSpanned() int { return max(c.ColSpan, 1) }

// NumberRowsSpanned never reports less than one row.
func (c *TableCell) NumberRowsSpanned() int { return max(c.RowSpan, 1) }

// Attach wires parent links after a table has been assembled by hand and
// validates it. Build calls it for DSL input; tests and other front ends call
// it directly.
func (t *Table) Attach() error {
	if len(t.Bodies) == 0 {
		return &ValidationError{Element: "table", Reason: "至少需要一个 body"}
	}
	for i, col := range t.Columns {
		if col.Number == 0 {
			col.Number = i + 1
		}
		if col.Number != i+1 {
			return &ValidationError{Element: "column", Reason: fmt.Sprintf("列号 %d 与位置 %d 不一致", col.Number, i+1)}
		}
	}
	for _, part := range t.Parts() {
		part.table = t
		for ri, row := range part.Rows {
			row.body = part
			row.Index = ri
			if row.Height == (layout.MinOptMax{}) {
				row.Height = layout.Unbounded()
			}
			for _, cell := range row.Cells {
				cell.row = row
				if cell.ColSpan < 0 || cell.RowSpan < 0 {
					return &ValidationError{
						Element: fmt.Sprintf("%s 第 %d 行的 cell", part, ri+1),
						Reason:  fmt.Sprintf("跨度必须 >= 1（列 %d，行 %d）", cell.ColSpan, cell.RowSpan),
					}
				}
				// 未设置的跨度按 1 处理
				cell.ColSpan = cell.NumberColumnsSpanned()
				cell.RowSpan = cell.NumberRowsSpanned()
				if cell.Height == (layout.MinOptMax{}) {
					cell.Height = layout.Unbounded()
				}
			}
		}
	}
	return nil
}
