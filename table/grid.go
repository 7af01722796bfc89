package table

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/fo"
)

// Part 是一个表格部分（header/footer/body）对应的行序列。
type Part struct {
	Body *fo.TableBody
	Rows []*EffRow
}

func (p *Part) Kind() fo.PartKind { return p.Body.Kind }

func (p *Part) String() string { return p.Body.String() }

// RowGroups splits the part into row groups: a group ends on a row where
// no cell spans into the following row. Groups never cross parts.
func (p *Part) RowGroups() [][]*EffRow {
	var groups [][]*EffRow
	start := 0
	for i, row := range p.Rows {
		closed := true
		for _, gu := range row.units {
			if !gu.IsLastGridUnitRowSpan() {
				closed = false
				break
			}
		}
		if closed {
			groups = append(groups, p.Rows[start:i+1])
			start = i + 1
		}
	}
	if start < len(p.Rows) {
		groups = append(groups, p.Rows[start:])
	}
	return groups
}

// Grid 是一个表格的网格模型，构建一次后由表格持有整个生命周期。
type Grid struct {
	table     *fo.Table
	columns   []*fo.TableColumn
	implicit  bool
	header    *Part
	footer    *Part
	bodies    []*Part
	primaries []*PrimaryGridUnit
	log       logrus.FieldLogger
}

// BuildGrid walks the table once in document order, places every cell,
// synthesizes the units of spanning cells, sets the positional flags and
// resolves borders. Any configuration error rejects the whole table.
func BuildGrid(t *fo.Table, log logrus.FieldLogger) (*Grid, error) {
	if t == nil {
		return nil, fmt.Errorf("表格为空")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &Grid{
		table:    t,
		columns:  append([]*fo.TableColumn(nil), t.Columns...),
		implicit: len(t.Columns) == 0,
		log:      log.WithField("table", t.Name),
	}
	if t.Header != nil {
		part, err := g.buildPart(t.Header)
		if err != nil {
			return nil, err
		}
		g.header = part
	}
	for _, body := range t.Bodies {
		part, err := g.buildPart(body)
		if err != nil {
			return nil, err
		}
		g.bodies = append(g.bodies, part)
	}
	if t.Footer != nil {
		part, err := g.buildPart(t.Footer)
		if err != nil {
			return nil, err
		}
		g.footer = part
	}
	if len(g.columns) == 0 {
		return nil, &fo.ValidationError{Element: "table", Reason: "无法确定列数：没有列也没有单元格"}
	}
	g.finish()
	g.ResolveBorders()
	return g, nil
}

func (g *Grid) Table() *fo.Table { return g.table }

// Columns returns the declared columns, or the implicit ones derived from
// the cells when the table declares none.
func (g *Grid) Columns() []*fo.TableColumn { return g.columns }

func (g *Grid) NumColumns() int { return len(g.columns) }

func (g *Grid) Header() *Part   { return g.header }
func (g *Grid) Footer() *Part   { return g.footer }
func (g *Grid) Bodies() []*Part { return g.bodies }

// Parts returns header, bodies and footer in document order.
func (g *Grid) Parts() []*Part {
	parts := make([]*Part, 0, len(g.bodies)+2)
	if g.header != nil {
		parts = append(parts, g.header)
	}
	parts = append(parts, g.bodies...)
	if g.footer != nil {
		parts = append(parts, g.footer)
	}
	return parts
}

// Rows returns every row of the table in document order.
func (g *Grid) Rows() []*EffRow {
	var rows []*EffRow
	for _, p := range g.Parts() {
		rows = append(rows, p.Rows...)
	}
	return rows
}

// Primaries returns one primary unit per occupied cell.
func (g *Grid) Primaries() []*PrimaryGridUnit { return g.primaries }

func (g *Grid) ensureColumns(n int, where string) error {
	if n <= len(g.columns) {
		return nil
	}
	if !g.implicit {
		return &fo.ValidationError{Element: where, Reason: fmt.Sprintf("单元格超出表格列数 %d", len(g.columns))}
	}
	for i := len(g.columns); i < n; i++ {
		g.columns = append(g.columns, &fo.TableColumn{Number: i + 1, Implicit: true})
	}
	return nil
}

func (g *Grid) buildPart(body *fo.TableBody) (*Part, error) {
	part := &Part{Body: body}
	var pending []*GridUnit
	for ri, row := range body.Rows {
		units := make([]*GridUnit, max(len(pending), len(g.columns)))
		for c, prev := range pending {
			if prev == nil {
				continue
			}
			if next := prev.CreateNextRowSpanningGridUnit(); next != nil {
				next.row = row
				units[c] = next
			}
		}
		col := 0
		for ci, cell := range row.Cells {
			where := fmt.Sprintf("%s 第 %d 行第 %d 个 cell", body, ri+1, ci+1)
			start := col
			if cell.ColumnNumber > 0 {
				start = cell.ColumnNumber - 1
			} else {
				for start < len(units) && units[start] != nil {
					start++
				}
			}
			span := cell.NumberColumnsSpanned()
			end := start + span
			if err := g.ensureColumns(end, where); err != nil {
				return nil, err
			}
			for len(units) < end {
				units = append(units, nil)
			}
			for c := start; c < end; c++ {
				if units[c] != nil {
					return nil, &fo.ValidationError{Element: where, Reason: fmt.Sprintf("与第 %d 列已有单元格重叠", c+1)}
				}
			}
			p := newPrimaryGridUnit(cell, g.columns[start], row, start, ri)
			p.label = fmt.Sprintf("%s[%d,%d]", body, ri+1, start+1)
			units[start] = &p.GridUnit
			for k := 1; k < span; k++ {
				gu := newGridUnit(p, g.columns[start+k], start, k, 0)
				gu.row = row
				units[start+k] = gu
			}
			g.primaries = append(g.primaries, p)
			col = end
		}
		part.Rows = append(part.Rows, newEffRow(ri, body.Kind, row, units))
		pending = units
	}

	clipped := map[*PrimaryGridUnit]bool{}
	for _, gu := range pending {
		if gu == nil || gu.IsLastGridUnitRowSpan() || clipped[gu.primary] {
			continue
		}
		p := gu.primary
		clipped[p] = true
		g.log.WithFields(logrus.Fields{
			"cell":     p.Label(),
			"declared": p.rowSpan,
			"rows":     gu.rowSpanIndex + 1,
		}).Warn("行跨度超出表格部分末尾，已截断")
		p.rowSpan = gu.rowSpanIndex + 1
	}
	return part, nil
}

// finish pads every row to the final column count, records the rows of each
// spanning cell and sets the positional flags.
func (g *Grid) finish() {
	n := len(g.columns)
	rows := g.Rows()
	for _, row := range rows {
		for len(row.units) < n {
			row.units = append(row.units, nil)
		}
		for c, gu := range row.units {
			if gu == nil {
				row.units[c] = newEmptyGridUnit(g.columns[c], row.row, c)
			}
		}
		for c := 0; c < n; c++ {
			gu := row.units[c]
			if gu.IsEmpty() || gu.colSpanIndex != 0 {
				continue
			}
			gu.primary.addRow(row.units[c : c+gu.primary.colSpan])
		}
		row.units[0].SetFlag(InFirstColumn, true)
		row.units[n-1].SetFlag(InLastColumn, true)
		for _, gu := range row.units {
			if gu.IsEmpty() {
				continue
			}
			if gu.rowSpanIndex == 0 && !gu.primary.KeepWithPrevious().IsAuto() {
				gu.SetFlag(KeepWithPreviousPending, true)
			}
			if gu.IsLastGridUnitRowSpan() && !gu.primary.KeepWithNext().IsAuto() {
				gu.SetFlag(KeepWithNextPending, true)
			}
		}
	}
	for _, p := range g.Parts() {
		if len(p.Rows) == 0 {
			continue
		}
		for _, gu := range p.Rows[0].units {
			gu.SetFlag(FirstInPart, true)
		}
		for _, gu := range p.Rows[len(p.Rows)-1].units {
			gu.SetFlag(LastInPart, true)
		}
	}
	if len(rows) > 0 {
		for _, gu := range rows[0].units {
			gu.SetFlag(FirstInTable, true)
		}
		for _, gu := range rows[len(rows)-1].units {
			gu.SetFlag(LastInTable, true)
		}
	}
}

// ResolveBorders computes the effective borders of every unit. In the
// collapse model rows are visited in document order, so the header meets the
// first body and consecutive bodies meet each other. Running it again
// overwrites the previous results.
func (g *Grid) ResolveBorders() {
	rows := g.Rows()
	if g.table.IsSeparateBorderModel() {
		for _, row := range rows {
			for _, gu := range row.units {
				gu.AssignBorderForSeparateBorderModel()
			}
		}
		return
	}
	for i, row := range rows {
		var prev, next *EffRow
		if i > 0 {
			prev = rows[i-1]
		}
		if i < len(rows)-1 {
			next = rows[i+1]
		}
		for c, gu := range row.units {
			if gu.rowSpanIndex == 0 {
				if prev != nil {
					gu.ResolveBorder(prev.SafelyGetGridUnit(c), fo.Before, 0)
				} else {
					gu.ResolveBorder(nil, fo.Before, VerticalStartEndOfTable)
				}
			}
			if gu.IsLastGridUnitRowSpan() {
				if next != nil {
					gu.ResolveBorder(next.SafelyGetGridUnit(c), fo.After, 0)
				} else {
					gu.ResolveBorder(nil, fo.After, VerticalStartEndOfTable)
				}
			}
			if gu.colSpanIndex == 0 {
				var start *GridUnit
				for f := c - 1; f >= 0; f-- {
					if cand := row.units[f]; cand.IsLastGridUnitColSpan() {
						start = cand
						break
					}
				}
				gu.ResolveBorder(start, fo.Start, 0)
			}
			if gu.IsLastGridUnitColSpan() {
				var end *GridUnit
				for f := c + 1; f < len(row.units); f++ {
					if cand := row.units[f]; cand.colSpanIndex == 0 {
						end = cand
						break
					}
				}
				gu.ResolveBorder(end, fo.End, 0)
			}
		}
	}
}
