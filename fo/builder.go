package fo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
)

// Build 根据 DSL AST 构建全部表格。任意一个表格校验失败则整体失败。
func Build(doc *dsl.Document, data any) ([]*Table, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	tables := make([]*Table, 0, len(doc.Tables))
	for _, section := range doc.Tables {
		t, err := BuildTable(section, data)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", section.Name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// BuildTable 构建单个表格，并在返回前调用 Attach 完成校验。
func BuildTable(section *dsl.TableSection, data any) (*Table, error) {
	if section == nil || section.Block == nil {
		return nil, fmt.Errorf("table 缺少内容")
	}
	b := &builder{data: data, styles: map[string]style{}}
	t := &Table{Name: section.Name, KeepTogether: layout.KeepAuto}

	if err := b.collectStyles(section.Block); err != nil {
		return nil, err
	}
	attrs, err := b.attributes("table", section.Args, section.Block)
	if err != nil {
		return nil, err
	}
	if err := b.applyTable(t, attrs); err != nil {
		return nil, err
	}

	for _, st := range section.Block.Statements {
		cmd := st.Command
		if cmd == nil {
			continue
		}
		switch cmd.Name {
		case "style":
			// 已在 collectStyles 中处理
		case "column":
			cols, err := b.buildColumns(cmd, len(t.Columns))
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, cols...)
		case "header", "footer", "body":
			part, err := b.buildPart(cmd)
			if err != nil {
				return nil, err
			}
			switch part.Kind {
			case PartHeader:
				if t.Header != nil {
					return nil, &ValidationError{Element: "header", Reason: "表格只能有一个 header"}
				}
				t.Header = part
			case PartFooter:
				if t.Footer != nil {
					return nil, &ValidationError{Element: "footer", Reason: "表格只能有一个 footer"}
				}
				t.Footer = part
			default:
				part.Index = len(t.Bodies)
				t.Bodies = append(t.Bodies, part)
			}
		default:
			return nil, &ValidationError{Element: "table", Reason: fmt.Sprintf("%s: 未知语句 %q", cmd.Pos, cmd.Name)}
		}
	}
	if err := t.Attach(); err != nil {
		return nil, err
	}
	return t, nil
}

type style struct {
	name    string
	extends string
	props   []dsl.Attribute
}

type builder struct {
	data   any
	styles map[string]style
}

// collectStyles 读取 style 定义并展开 extends 继承链。
func (b *builder) collectStyles(block *dsl.Block) error {
	raw := map[string]style{}
	for _, st := range block.Statements {
		if st.Command == nil || st.Command.Name != "style" {
			continue
		}
		cmd := st.Command
		if len(cmd.Args) == 0 {
			return &ValidationError{Element: "style", Reason: fmt.Sprintf("%s: 缺少名称", cmd.Pos)}
		}
		s := style{name: cmd.Args[0].Value}
		if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
			s.extends = cmd.Args[2].Value
		}
		if cmd.Block != nil {
			for _, inner := range cmd.Block.Statements {
				if inner.Assignment == nil {
					continue
				}
				s.props = append(s.props, dsl.AssignmentAttribute(inner.Assignment))
			}
		}
		if _, dup := raw[s.name]; dup {
			return &ValidationError{Element: "style", Reason: fmt.Sprintf("style %s 重复定义", s.name)}
		}
		raw[s.name] = s
	}

	visiting := map[string]bool{}
	var dfs func(name string) (style, error)
	dfs = func(name string) (style, error) {
		if s, ok := b.styles[name]; ok {
			return s, nil
		}
		s, ok := raw[name]
		if !ok {
			return style{}, &ValidationError{Element: "style", Reason: fmt.Sprintf("style %s 未定义", name)}
		}
		if visiting[name] {
			return style{}, &ValidationError{Element: "style", Reason: fmt.Sprintf("style 继承存在循环：%s", name)}
		}
		visiting[name] = true
		var props []dsl.Attribute
		if s.extends != "" {
			parent, err := dfs(s.extends)
			if err != nil {
				return style{}, err
			}
			props = append(props, parent.props...)
		}
		s.props = append(props, s.props...)
		b.styles[name] = s
		delete(visiting, name)
		return s, nil
	}
	for name := range raw {
		if _, err := dfs(name); err != nil {
			return err
		}
	}
	return nil
}

// attributes 合并 style、参数与块内赋值（后者优先），并解析数据绑定。
func (b *builder) attributes(element string, args []*dsl.Lexeme, block *dsl.Block) (map[string]string, error) {
	inline, err := dsl.Attributes(args)
	if err != nil {
		return nil, &ValidationError{Element: element, Reason: err.Error()}
	}
	if block != nil {
		for _, st := range block.Statements {
			if st.Assignment != nil {
				inline = append(inline, dsl.AssignmentAttribute(st.Assignment))
			}
		}
	}
	out := map[string]string{}
	for _, a := range inline {
		if a.Key != "style" {
			continue
		}
		s, ok := b.styles[a.Value]
		if !ok {
			return nil, &ValidationError{Element: element, Reason: fmt.Sprintf("style %s 未定义", a.Value)}
		}
		for _, p := range s.props {
			if err := b.put(out, element, p); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range inline {
		if a.Key == "style" {
			continue
		}
		if err := b.put(out, element, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *builder) put(out map[string]string, element string, a dsl.Attribute) error {
	val := a.Value
	if strings.Contains(val, "${") {
		resolved, err := binding.Interpolate(val, b.data)
		if err != nil {
			return &ValidationError{Element: element, Reason: fmt.Sprintf("%s: %s: %v", a.Pos, a.Key, err)}
		}
		val = resolved
	}
	out[a.Key] = val
	return nil
}

func (b *builder) applyTable(t *Table, attrs map[string]string) error {
	for key, val := range attrs {
		var err error
		switch key {
		case "border-collapse":
			switch val {
			case "collapse":
				t.BorderCollapse = Collapse
			case "separate":
				t.BorderCollapse = Separate
			default:
				err = fmt.Errorf("未知取值 %q", val)
			}
		case "border-separation":
			t.BorderSeparation, err = layout.ParseMPT(val)
		case "keep-together":
			t.KeepTogether, err = layout.ParseKeep(val)
		case "omit-header-at-break":
			t.OmitHeaderAtBreak, err = strconv.ParseBool(val)
		case "omit-footer-at-break":
			t.OmitFooterAtBreak, err = strconv.ParseBool(val)
		default:
			var handled bool
			handled, err = applyBPB(&t.BPB, key, val)
			if !handled {
				err = fmt.Errorf("未知属性")
			}
		}
		if err != nil {
			return &ValidationError{Element: "table", Reason: fmt.Sprintf("%s %q: %v", key, val, err)}
		}
	}
	return nil
}

func (b *builder) buildColumns(cmd *dsl.Command, existing int) ([]*TableColumn, error) {
	attrs, err := b.attributes("column", cmd.Args, cmd.Block)
	if err != nil {
		return nil, err
	}
	repeat := 1
	var bpb BorderPaddingBackground
	for key, val := range attrs {
		switch key {
		case "number-columns-repeated":
			repeat, err = strconv.Atoi(val)
			if err == nil && repeat < 1 {
				err = fmt.Errorf("必须 >= 1")
			}
		default:
			var handled bool
			handled, err = applyBPB(&bpb, key, val)
			if !handled {
				err = fmt.Errorf("未知属性")
			}
		}
		if err != nil {
			return nil, &ValidationError{Element: "column", Reason: fmt.Sprintf("%s: %s %q: %v", cmd.Pos, key, val, err)}
		}
	}
	cols := make([]*TableColumn, 0, repeat)
	for i := 0; i < repeat; i++ {
		cols = append(cols, &TableColumn{Number: existing + i + 1, BPB: bpb})
	}
	return cols, nil
}

func (b *builder) buildPart(cmd *dsl.Command) (*TableBody, error) {
	part := &TableBody{}
	switch cmd.Name {
	case "header":
		part.Kind = PartHeader
	case "footer":
		part.Kind = PartFooter
	default:
		part.Kind = PartBody
	}
	attrs, err := b.attributes(cmd.Name, cmd.Args, cmd.Block)
	if err != nil {
		return nil, err
	}
	for key, val := range attrs {
		var err error
		if key == "keep-together" {
			part.KeepTogether, err = layout.ParseKeep(val)
		} else {
			var handled bool
			handled, err = applyBPB(&part.BPB, key, val)
			if !handled {
				err = fmt.Errorf("未知属性")
			}
		}
		if err != nil {
			return nil, &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: %s %q: %v", cmd.Pos, key, val, err)}
		}
	}
	if cmd.Block == nil {
		return nil, &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: 缺少 row 定义", cmd.Pos)}
	}
	for _, st := range cmd.Block.Statements {
		if st.Command == nil {
			continue
		}
		if st.Command.Name != "row" {
			return nil, &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: 只允许 row，遇到 %q", st.Command.Pos, st.Command.Name)}
		}
		row, err := b.buildRow(st.Command)
		if err != nil {
			return nil, err
		}
		part.Rows = append(part.Rows, row)
	}
	if len(part.Rows) == 0 {
		return nil, &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: 至少需要一行", cmd.Pos)}
	}
	return part, nil
}

func (b *builder) buildRow(cmd *dsl.Command) (*TableRow, error) {
	row := &TableRow{Height: layout.Unbounded()}
	attrs, err := b.attributes("row", cmd.Args, cmd.Block)
	if err != nil {
		return nil, err
	}
	for key, val := range attrs {
		var err error
		switch key {
		case "height", "min-height", "max-height":
			row.Height, err = applyHeight(row.Height, key, val)
		case "keep-together":
			row.KeepTogether, err = layout.ParseKeep(val)
		case "keep-with-next":
			row.KeepWithNext, err = layout.ParseKeep(val)
		case "keep-with-previous":
			row.KeepWithPrevious, err = layout.ParseKeep(val)
		case "break-before":
			row.BreakBefore, err = layout.ParseBreakClass(val)
		case "break-after":
			row.BreakAfter, err = layout.ParseBreakClass(val)
		default:
			var handled bool
			handled, err = applyBPB(&row.BPB, key, val)
			if !handled {
				err = fmt.Errorf("未知属性")
			}
		}
		if err != nil {
			return nil, &ValidationError{Element: "row", Reason: fmt.Sprintf("%s: %s %q: %v", cmd.Pos, key, val, err)}
		}
	}
	if cmd.Block == nil {
		return nil, &ValidationError{Element: "row", Reason: fmt.Sprintf("%s: 缺少 cell 定义", cmd.Pos)}
	}
	for _, st := range cmd.Block.Statements {
		if st.Command == nil {
			continue
		}
		if st.Command.Name != "cell" {
			return nil, &ValidationError{Element: "row", Reason: fmt.Sprintf("%s: 只允许 cell，遇到 %q", st.Command.Pos, st.Command.Name)}
		}
		cell, err := b.buildCell(st.Command)
		if err != nil {
			return nil, err
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

func (b *builder) buildCell(cmd *dsl.Command) (*TableCell, error) {
	cell := &TableCell{ColSpan: 1, RowSpan: 1, Height: layout.Unbounded()}
	attrs, err := b.attributes("cell", cmd.Args, cmd.Block)
	if err != nil {
		return nil, err
	}
	for key, val := range attrs {
		var err error
		switch key {
		case "column-number":
			cell.ColumnNumber, err = positiveInt(val)
		case "span-rows", "number-rows-spanned":
			cell.RowSpan, err = positiveInt(val)
		case "span-columns", "number-columns-spanned":
			cell.ColSpan, err = positiveInt(val)
		case "height", "min-height", "max-height":
			cell.Height, err = applyHeight(cell.Height, key, val)
		case "keep-with-next":
			cell.KeepWithNext, err = layout.ParseKeep(val)
		case "keep-with-previous":
			cell.KeepWithPrevious, err = layout.ParseKeep(val)
		default:
			var handled bool
			handled, err = applyBPB(&cell.BPB, key, val)
			if !handled {
				err = fmt.Errorf("未知属性")
			}
		}
		if err != nil {
			return nil, &ValidationError{Element: "cell", Reason: fmt.Sprintf("%s: %s %q: %v", cmd.Pos, key, val, err)}
		}
	}
	if cmd.Block != nil {
		content, err := b.buildContent(cmd.Block)
		if err != nil {
			return nil, err
		}
		cell.Content = content
	}
	return cell, nil
}

// buildContent 把 box/glue/penalty/lines 语句转换为单元格内容序列。
func (b *builder) buildContent(block *dsl.Block) ([]layout.Element, error) {
	var out []layout.Element
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil {
			continue
		}
		args := make([]string, len(cmd.Args))
		for i, a := range cmd.Args {
			v := a.Value
			if a.IsBinding() {
				resolved, err := binding.Interpolate(v, b.data)
				if err != nil {
					return nil, &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: %v", a.Pos, err)}
				}
				v = resolved
			}
			args[i] = v
		}
		fail := func(reason string) error {
			return &ValidationError{Element: cmd.Name, Reason: fmt.Sprintf("%s: %s", cmd.Pos, reason)}
		}
		switch cmd.Name {
		case "box", "glue":
			if len(args) != 1 {
				return nil, fail("需要一个长度参数")
			}
			w, err := layout.ParseMPT(args[0])
			if err != nil {
				return nil, fail(err.Error())
			}
			if cmd.Name == "box" {
				out = append(out, &layout.Box{W: w})
			} else {
				out = append(out, &layout.Glue{W: w})
			}
		case "penalty":
			if len(args) < 1 || len(args) > 3 {
				return nil, fail("用法: penalty <cost> [<width>] [<break-class>]")
			}
			p, err := parsePenaltyValue(args[0])
			if err != nil {
				return nil, fail(err.Error())
			}
			pen := &layout.Penalty{P: p}
			if len(args) >= 2 {
				if pen.W, err = layout.ParseMPT(args[1]); err != nil {
					return nil, fail(err.Error())
				}
			}
			if len(args) == 3 {
				if pen.BreakClass, err = layout.ParseBreakClass(args[2]); err != nil {
					return nil, fail(err.Error())
				}
			}
			out = append(out, pen)
		case "lines":
			if len(args) != 2 {
				return nil, fail("用法: lines <count> <height>")
			}
			n, err := positiveInt(args[0])
			if err != nil {
				return nil, fail(err.Error())
			}
			h, err := layout.ParseMPT(args[1])
			if err != nil {
				return nil, fail(err.Error())
			}
			for i := 0; i < n; i++ {
				if i > 0 {
					out = append(out, &layout.Penalty{P: 0})
				}
				out = append(out, &layout.Box{W: h})
			}
		default:
			return nil, fail(fmt.Sprintf("未知内容语句 %q", cmd.Name))
		}
	}
	return out, nil
}

// applyBPB 处理 border*/padding*/background 属性；未识别时返回 false。
func applyBPB(bpb *BorderPaddingBackground, key, val string) (bool, error) {
	if key == "background" {
		c, err := ParseColor(val)
		if err != nil {
			return true, err
		}
		bpb.Background = &c
		return true, nil
	}
	if rest, ok := strings.CutPrefix(key, "border"); ok {
		sides, err := sidesFor(rest)
		if err != nil {
			return false, nil
		}
		info, err := ParseBorder(val)
		if err != nil {
			return true, err
		}
		for _, s := range sides {
			copied := *info
			bpb.Borders[s] = &copied
		}
		return true, nil
	}
	if rest, ok := strings.CutPrefix(key, "padding"); ok {
		sides, err := sidesFor(rest)
		if err != nil {
			return false, nil
		}
		w, err := layout.ParseMPT(val)
		if err != nil {
			return true, err
		}
		for _, s := range sides {
			bpb.Padding[s] = w
		}
		return true, nil
	}
	return false, nil
}

func sidesFor(suffix string) ([]Side, error) {
	switch suffix {
	case "":
		return Sides[:], nil
	case "-before":
		return []Side{Before}, nil
	case "-after":
		return []Side{After}, nil
	case "-start":
		return []Side{Start}, nil
	case "-end":
		return []Side{End}, nil
	default:
		return nil, fmt.Errorf("未知边 %q", suffix)
	}
}

// applyHeight 处理 height（固定）、min-height 与 max-height。
func applyHeight(cur layout.MinOptMax, key, val string) (layout.MinOptMax, error) {
	w, err := layout.ParseMPT(val)
	if err != nil {
		return cur, err
	}
	switch key {
	case "height":
		return layout.Fixed(w), nil
	case "min-height":
		return cur.ExtendMinimum(w), nil
	default:
		if w < cur.Min {
			return cur, fmt.Errorf("max-height 小于最小高度")
		}
		cur.Max = w
		cur.Opt = min(cur.Opt, w)
		return cur, nil
	}
}

func parsePenaltyValue(v string) (int, error) {
	switch strings.ToLower(v) {
	case "inf", "+inf", "forbidden":
		return layout.Infinite, nil
	case "-inf", "forced":
		return -layout.Infinite, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("非法惩罚值 %q", v)
	}
	return max(-layout.Infinite, min(layout.Infinite, p)), nil
}

func positiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("需要整数，得到 %q", v)
	}
	if n < 1 {
		return 0, fmt.Errorf("必须 >= 1，得到 %d", n)
	}
	return n, nil
}
