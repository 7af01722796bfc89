package canvasrenderer

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fo"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/table"
)

func layoutSource(t *testing.T, src string) *table.Result {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tbl, err := fo.BuildTable(doc.Tables[0], nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	logger, _ := test.NewNullLogger()
	res, err := table.Layout(tbl, table.Options{Logger: logger})
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	return res
}

const previewSource = `
table Preview border "solid 1pt" {
  header { row { cell background #eeeeee border-after "double 3pt" { box 12pt } ; cell { box 12pt } } }
  body {
    row { cell span-rows 2 border-end "dashed 1pt" { box 70pt } ; cell { box 40pt } }
    row { cell border-before "dotted 2pt" { box 50pt } }
  }
}`

func TestRenderProducesPDF(t *testing.T) {
	res := layoutSource(t, previewSource)
	r := NewRenderer()
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	if _, err := NewRenderer().Render(nil); err == nil {
		t.Fatalf("expected an error for a nil result")
	}
}

func TestRenderReportsMissingFont(t *testing.T) {
	res := layoutSource(t, previewSource)
	r := NewRendererWithOptions(Options{FontPath: "testdata/does-not-exist.ttf"})
	if _, err := r.Render(res); err == nil {
		t.Fatalf("expected an error for a missing label font")
	}
}

func TestCellRectCoversSpan(t *testing.T) {
	res := layoutSource(t, previewSource)
	f := newFrame(res, 20)
	var span *table.PrimaryGridUnit
	for _, p := range res.Grid.Primaries() {
		if p.RowSpan() == 2 {
			span = p
		}
	}
	if span == nil {
		t.Fatalf("spanning cell not found")
	}
	x, y, w, h := f.cellRect(span)
	header := res.Grid.Header().Rows[0].Height().Opt
	body := res.Grid.Bodies()[0].Rows
	wantH := layout.MPTToMM(body[0].Height().Opt + body[1].Height().Opt)
	const eps = 1e-9
	if x != 0 || w != 20 {
		t.Fatalf("unexpected horizontal extent x=%g w=%g", x, w)
	}
	if math.Abs(y-layout.MPTToMM(header)) > eps || math.Abs(h-wantH) > eps {
		t.Fatalf("unexpected vertical extent y=%g h=%g, want y=%g h=%g", y, h, layout.MPTToMM(header), wantH)
	}
	if math.Abs(f.height-(layout.MPTToMM(header)+wantH)) > eps {
		t.Fatalf("frame height %g does not match the rows", f.height)
	}
}

func TestBreakMarksSkipForbiddenPenalties(t *testing.T) {
	res := layoutSource(t, `
table T {
  body {
    row { cell span-rows 2 { box 70pt } ; cell { box 40pt } }
    row { cell { box 50pt } }
    row break-before page { cell { box 30pt } ; cell { box 30pt } }
  }
}`)
	f := newFrame(res, 20)
	marks := BreakMarks(res, f.rowY)
	want := []BreakMark{
		{Y: layout.MPTToMM(90000), Forced: true},
		{Y: layout.MPTToMM(120000)},
	}
	opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, marks, opt); diff != "" {
		t.Fatalf("break marks mismatch (-want +got):\n%s", diff)
	}
}

func TestDashes(t *testing.T) {
	cases := map[fo.BorderStyle][]float64{
		fo.StyleSolid:  nil,
		fo.StyleDashed: {3, 2},
		fo.StyleDotted: {1, 1},
		fo.StyleRidge:  nil,
	}
	for style, want := range cases {
		if diff := cmp.Diff(want, Dashes(style, 1)); diff != "" {
			t.Fatalf("%s dashes mismatch (-want +got):\n%s", style, diff)
		}
	}
}
