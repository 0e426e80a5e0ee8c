package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Simplici0/oro-invoice/internal/invoice"
	"github.com/Simplici0/oro-invoice/internal/pricing"
	"github.com/Simplici0/oro-invoice/internal/render"
)

type stubRasterizer struct {
	started chan struct{}
	release chan struct{}
	err     error
	calls   int
}

func (s *stubRasterizer) Rasterize(ctx context.Context, v render.View) (image.Image, error) {
	s.calls++
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	img.Set(1, 1, color.Black)
	return img, nil
}

func sampleInput() render.Input {
	items := []invoice.LineItem{{ID: 1, Description: "Widget", Quantity: 3, Rate: 100}}
	meta := invoice.Meta{InvoiceNumber: "INV-202510-7", TaxRate: "10"}
	return render.Input{
		Meta:        meta,
		Items:       items,
		Totals:      pricing.Calculate(items, meta.TaxRatePercent()),
		GeneratedAt: time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"INV-202510-7":  "ORO-MANTRA-Invoice-INV-202510-7.pdf",
		"":              "ORO-MANTRA-Invoice-invoice.pdf",
		"   ":           "ORO-MANTRA-Invoice-invoice.pdf",
		"../etc/passwd": "ORO-MANTRA-Invoice--etc-passwd.pdf",
		"A/B 12":        "ORO-MANTRA-Invoice-A-B-12.pdf",
		"..":            "ORO-MANTRA-Invoice-invoice.pdf",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Fatalf("Filename(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestPipeline_ExportProducesSinglePagePDF(t *testing.T) {
	dir := t.TempDir()
	p := NewPipeline(&stubRasterizer{}, NewPDFAssembler(), DirSink{Dir: dir})

	res, err := p.Export(context.Background(), Request{Input: sampleInput()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if res.ID == "" {
		t.Fatalf("expected export id")
	}
	if res.Filename != "ORO-MANTRA-Invoice-INV-202510-7.pdf" {
		t.Fatalf("Filename=%q", res.Filename)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", res.Data[:min(len(res.Data), 8)])
	}
	if res.Path != filepath.Join(dir, res.Filename) {
		t.Fatalf("Path=%q", res.Path)
	}
	onDisk, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !bytes.Equal(onDisk, res.Data) {
		t.Fatalf("file on disk differs from result data")
	}
}

func TestPipeline_RejectsConcurrentExport(t *testing.T) {
	raster := &stubRasterizer{started: make(chan struct{}), release: make(chan struct{})}
	p := NewPipeline(raster, NewPDFAssembler(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Export(context.Background(), Request{Input: sampleInput()})
		done <- err
	}()
	<-raster.started

	if _, err := p.Export(context.Background(), Request{Input: sampleInput()}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(raster.release)
	if err := <-done; err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if raster.calls != 1 {
		t.Fatalf("second export must not start capture, rasterize calls=%d", raster.calls)
	}
}

func TestPipeline_FailureReleasesGuard(t *testing.T) {
	boom := errors.New("canvas exploded")
	raster := &stubRasterizer{err: boom}
	p := NewPipeline(raster, NewPDFAssembler(), nil)

	if _, err := p.Export(context.Background(), Request{Input: sampleInput()}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped rasterize error, got %v", err)
	}

	raster.err = nil
	if _, err := p.Export(context.Background(), Request{Input: sampleInput()}); err != nil {
		t.Fatalf("expected export to succeed after failure, got %v", err)
	}
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewDefaultPipeline(nil)
	if _, err := p.Export(ctx, Request{Input: sampleInput()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTextRasterizer_UpscalesExportCanvas(t *testing.T) {
	in := sampleInput()
	v := render.Build(in, render.Export)

	img, err := NewRasterizer().Rasterize(context.Background(), v)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != render.Export.CanvasWidth*DefaultScale {
		t.Fatalf("width=%d, want %d", b.Dx(), render.Export.CanvasWidth*DefaultScale)
	}
	if b.Dy() <= b.Dx() {
		t.Fatalf("expected a portrait raster, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, bl, _ := img.At(0, 0).RGBA()
	if r>>8 != 0xff || g>>8 != 0xfa || bl>>8 != 0xf0 {
		t.Fatalf("unexpected background at origin: %v", img.At(0, 0))
	}
}

func TestTextRasterizer_GrowsWithRows(t *testing.T) {
	in := sampleInput()
	short, _ := NewRasterizer().Rasterize(context.Background(), render.Build(in, render.Export))

	for i := 2; i <= 6; i++ {
		in.Items = append(in.Items, invoice.LineItem{ID: i, Quantity: 1, Rate: 1})
	}
	tall, _ := NewRasterizer().Rasterize(context.Background(), render.Build(in, render.Export))

	if tall.Bounds().Dy() <= short.Bounds().Dy() {
		t.Fatalf("expected more rows to produce a taller raster")
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five six seven eight nine ten", 100, 13)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for _, l := range lines {
		if textWidth(l, 13) > 100 {
			t.Fatalf("line %q wider than limit", l)
		}
	}
	if wrap("   ", 100, 13) != nil {
		t.Fatalf("expected nil for blank text")
	}
}

func TestLayout_DrawsViewLabels(t *testing.T) {
	v := render.Build(render.Input{Meta: invoice.Meta{TaxRate: "5"}}, render.Export)
	v.Labels.Total = "Grand Total:"

	drawn := make(map[string]bool)
	for _, op := range layout(v).ops {
		if txt, ok := op.(textOp); ok {
			drawn[txt.s] = true
		}
	}
	for _, want := range []string{"Grand Total:", "Tax (5%):", "RATE (LKR)", "Bill To"} {
		if !drawn[want] {
			t.Fatalf("expected %q to be drawn", want)
		}
	}
	if drawn["Total Amount:"] {
		t.Fatalf("layout must take labels from the view")
	}
}
