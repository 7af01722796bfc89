package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	"github.com/ByLCY/folio/table"
)

const (
	defaultColumnWidth = 30.0 // mm
	defaultMargin      = 10.0 // mm
	gridLineWidth      = 0.1
	labelSizePt        = 6.0
)

var (
	gridColor   = canvas.Hex("#d0d0d0")
	legalColor  = canvas.Hex("#2f6fdf")
	forcedColor = canvas.Hex("#d03030")
)

// Renderer draws a preview of a laid-out table via github.com/tdewolff/canvas:
// the grid, the resolved borders and the break candidates of the stepper.
type Renderer struct {
	columnWidth float64
	margin      float64
	fontPath    string
	fontBlob    []byte

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer. Lengths are in millimetres.
type Options struct {
	ColumnWidth float64
	Margin      float64
	// FontPath 指向用于单元格标签的字体文件；为空时不绘制标签。
	FontPath string
	Font     []byte
}

// NewRenderer creates a renderer with default geometry and no labels.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with the given geometry and label font.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		columnWidth: opts.ColumnWidth,
		margin:      opts.Margin,
		fontPath:    opts.FontPath,
		fontBlob:    opts.Font,
	}
	if r.columnWidth <= 0 {
		r.columnWidth = defaultColumnWidth
	}
	if r.margin < 0 {
		r.margin = 0
	} else if r.margin == 0 {
		r.margin = defaultMargin
	}
	return r
}

// Render renders the result into a single-page PDF byte slice.
func (r *Renderer) Render(result *table.Result) ([]byte, error) {
	if result == nil || result.Grid == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	f := newFrame(result, r.columnWidth)
	if f.width <= 0 || f.height <= 0 {
		return nil, fmt.Errorf("表格 %s 没有可渲染的内容", result.Table.Name)
	}
	pageW := f.width + 2*r.margin
	pageH := f.height + 2*r.margin

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	writer.SetInfo(result.Table.Name, "table preview", "", "", "folio")

	c := canvas.New(pageW, pageH)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标保持左上角为原点
	if err := r.drawTable(ctx, result, f); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// frame 记录各行与各列在页面上的位置（mm，相对表格左上角）。
type frame struct {
	colW   float64
	rowY   map[*fo.TableRow]float64
	rowH   map[*fo.TableRow]float64
	width  float64
	height float64
}

func newFrame(result *table.Result, colW float64) frame {
	f := frame{
		colW: colW,
		rowY: map[*fo.TableRow]float64{},
		rowH: map[*fo.TableRow]float64{},
	}
	y := 0.0
	for _, row := range result.Grid.Rows() {
		h := layout.MPTToMM(row.Height().Opt)
		f.rowY[row.TableRow()] = y
		f.rowH[row.TableRow()] = h
		y += h
	}
	f.width = float64(result.Grid.NumColumns()) * colW
	f.height = y
	return f
}

// cellRect returns the area covered by a cell across all of its rows and columns.
func (f frame) cellRect(p *table.PrimaryGridUnit) (x, y, w, h float64) {
	rows := p.Rows()
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, 0, 0, 0
	}
	first := rows[0][0].Row()
	last := rows[len(rows)-1][0].Row()
	x = float64(p.StartCol()) * f.colW
	y = f.rowY[first]
	w = float64(p.ColSpan()) * f.colW
	h = f.rowY[last] + f.rowH[last] - y
	return x, y, w, h
}

func (r *Renderer) drawTable(ctx *canvas.Context, result *table.Result, f frame) error {
	ox, oy := r.margin, r.margin

	// 先画背景与网格，再画解析后的边框
	for _, p := range result.Grid.Primaries() {
		x, y, w, h := f.cellRect(p)
		if bg := p.Cell().BPB.Background; bg != nil {
			ctx.SetFillColor(colorFromFO(*bg))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.SetStrokeColor(gridColor)
		ctx.SetStrokeWidth(gridLineWidth)
		ctx.DrawPath(ox+x, oy+y, canvas.Rectangle(w, h))
	}

	for _, row := range result.Grid.Rows() {
		y := f.rowY[row.TableRow()]
		h := f.rowH[row.TableRow()]
		for c, gu := range row.GridUnits() {
			if gu.IsEmpty() {
				continue
			}
			x := float64(c) * f.colW
			if gu.RowSpanIndex() == 0 {
				drawBorder(ctx, gu.BorderInfo(fo.Before), ox+x, oy+y, ox+x+f.colW, oy+y)
			}
			if gu.IsLastGridUnitRowSpan() {
				drawBorder(ctx, gu.BorderInfo(fo.After), ox+x, oy+y+h, ox+x+f.colW, oy+y+h)
			}
			if gu.ColSpanIndex() == 0 {
				drawBorder(ctx, gu.BorderInfo(fo.Start), ox+x, oy+y, ox+x, oy+y+h)
			}
			if gu.IsLastGridUnitColSpan() {
				drawBorder(ctx, gu.BorderInfo(fo.End), ox+x+f.colW, oy+y, ox+x+f.colW, oy+y+h)
			}
		}
	}

	r.drawBreaks(ctx, result, f)
	return r.drawLabels(ctx, result, f)
}

// drawBreaks 在表格右侧标出步进器给出的断点：蓝色为合法断点，红色为强制断点。
func (r *Renderer) drawBreaks(ctx *canvas.Context, result *table.Result, f frame) {
	x := r.margin + f.width
	tick := r.margin / 2
	for _, b := range BreakMarks(result, f.rowY) {
		col := legalColor
		if b.Forced {
			col = forcedColor
		}
		ctx.SetStrokeColor(col)
		ctx.SetStrokeWidth(0.3)
		line(ctx, x, r.margin+b.Y, x+tick, r.margin+b.Y)
	}
}

// BreakMark 是一个断点在表格中的纵向位置（mm）。
type BreakMark struct {
	Y      float64
	Forced bool
}

// BreakMarks lists the legal break candidates of every row group, positioned
// relative to the top of the table. Forbidden penalties are skipped.
func BreakMarks(result *table.Result, rowY map[*fo.TableRow]float64) []BreakMark {
	var out []BreakMark
	for _, rg := range result.RowGroups {
		if len(rg.Rows) == 0 {
			continue
		}
		base := rowY[rg.Rows[0].TableRow()]
		offset := 0
		for _, el := range rg.Elements {
			p, ok := el.(*layout.Penalty)
			if !ok {
				offset += el.Width()
				continue
			}
			if p.IsForbidden() {
				continue
			}
			out = append(out, BreakMark{Y: base + layout.MPTToMM(offset), Forced: p.IsForcedBreak()})
		}
	}
	return out
}

func (r *Renderer) drawLabels(ctx *canvas.Context, result *table.Result, f frame) error {
	family, err := r.labelFamily()
	if err != nil || family == nil {
		return err
	}
	face := family.Face(labelSizePt, canvas.Hex("#707070"), canvas.FontRegular, canvas.FontNormal)
	ascent := face.Metrics().Ascent
	for _, p := range result.Grid.Primaries() {
		x, y, _, _ := f.cellRect(p)
		text := canvas.NewTextLine(face, p.Label(), canvas.Left)
		ctx.DrawText(r.margin+x+0.8, r.margin+y+0.8+ascent, text)
	}
	return nil
}

func (r *Renderer) labelFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}
	data := r.fontBlob
	if len(data) == 0 && r.fontPath != "" {
		var err error
		data, err = os.ReadFile(r.fontPath)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", r.fontPath, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	family := canvas.NewFontFamily("folio-label")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	r.family = family
	return family, nil
}

func drawBorder(ctx *canvas.Context, b *fo.BorderInfo, x1, y1, x2, y2 float64) {
	if !b.Visible() {
		return
	}
	w := layout.MPTToMM(b.Width)
	ctx.SetStrokeColor(colorFromFO(b.Color))
	if b.Style == fo.StyleDouble {
		// 两条各占三分之一宽度的线
		third := w / 3
		dx, dy := 0.0, third
		if x1 == x2 {
			dx, dy = third, 0
		}
		ctx.SetStrokeWidth(third)
		line(ctx, x1-dx, y1-dy, x2-dx, y2-dy)
		line(ctx, x1+dx, y1+dy, x2+dx, y2+dy)
		return
	}
	ctx.SetStrokeWidth(w)
	ctx.SetDashes(0, Dashes(b.Style, w)...)
	line(ctx, x1, y1, x2, y2)
	ctx.SetDashes(0)
}

// Dashes returns the dash pattern used to preview a border style of width w.
func Dashes(style fo.BorderStyle, w float64) []float64 {
	switch style {
	case fo.StyleDashed:
		return []float64{3 * w, 2 * w}
	case fo.StyleDotted:
		return []float64{w, w}
	default:
		return nil
	}
}

func line(ctx *canvas.Context, x1, y1, x2, y2 float64) {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	ctx.DrawPath(x1, y1, p)
}

func colorFromFO(c fo.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
