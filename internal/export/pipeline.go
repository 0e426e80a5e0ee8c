package export

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Simplici0/oro-invoice/internal/render"
)

// ErrBusy is returned when an export is requested while another is running.
var ErrBusy = errors.New("export already in progress")

// Request carries a point-in-time copy of the invoice.
type Request struct {
	Input render.Input
}

// Result describes a finished export. Path is empty without a sink.
type Result struct {
	ID       string
	Filename string
	Data     []byte
	Path     string
}

// Pipeline renders, rasterizes and assembles invoices into PDF files.
// Only one export runs at a time; concurrent calls fail with ErrBusy.
type Pipeline struct {
	raster    Rasterizer
	assembler Assembler
	sink      Sink
	guard     *semaphore.Weighted
}

// NewPipeline wires the stages together. sink may be nil.
func NewPipeline(raster Rasterizer, assembler Assembler, sink Sink) *Pipeline {
	return &Pipeline{
		raster:    raster,
		assembler: assembler,
		sink:      sink,
		guard:     semaphore.NewWeighted(1),
	}
}

// NewDefaultPipeline uses the bitmap rasterizer and the A4 PDF assembler.
func NewDefaultPipeline(sink Sink) *Pipeline {
	return NewPipeline(NewRasterizer(), NewPDFAssembler(), sink)
}

func (p *Pipeline) Export(ctx context.Context, req Request) (Result, error) {
	if !p.guard.TryAcquire(1) {
		return Result{}, ErrBusy
	}
	defer p.guard.Release(1)

	res := Result{
		ID:       uuid.NewString(),
		Filename: Filename(req.Input.Meta.InvoiceNumber),
	}

	view := render.Build(req.Input, render.Export)

	img, err := p.raster.Rasterize(ctx, view)
	if err != nil {
		log.Printf("[ERROR] export %s: rasterize: %v", res.ID, err)
		return Result{}, fmt.Errorf("rasterize invoice: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := p.assembler.Assemble(img, "Invoice "+view.InvoiceNumber)
	if err != nil {
		log.Printf("[ERROR] export %s: assemble: %v", res.ID, err)
		return Result{}, fmt.Errorf("assemble invoice pdf: %w", err)
	}
	res.Data = data

	if p.sink != nil {
		path, err := p.sink.Save(ctx, res.Filename, data)
		if err != nil {
			log.Printf("[ERROR] export %s: save: %v", res.ID, err)
			return Result{}, fmt.Errorf("save invoice pdf: %w", err)
		}
		res.Path = path
	}

	log.Printf("[INFO] export %s: %s (%s)", res.ID, res.Filename, humanize.Bytes(uint64(len(data))))
	return res, nil
}
