package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Assembler embeds a raster image into a paginated document.
type Assembler interface {
	Assemble(img image.Image, title string) ([]byte, error)
}

const (
	pageSizeA4    = "A4"
	defaultMargin = 10.0 // mm
	imageName     = "invoice"
	creator       = "ORO MANTRA Invoice Generator"
)

// PDFAssembler lays the image on a single portrait page, scaled to the
// page width minus the margins with its aspect ratio preserved.
type PDFAssembler struct {
	PageSize string
	Margin   float64
	Now      func() time.Time
}

func NewPDFAssembler() *PDFAssembler {
	return &PDFAssembler{PageSize: pageSizeA4, Margin: defaultMargin, Now: time.Now}
}

func (a *PDFAssembler) Assemble(img image.Image, title string) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}

	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	pdf := gofpdf.New("P", "mm", a.PageSize, "")
	pdf.SetTitle(title, true)
	pdf.SetCreator(creator, true)
	if a.Now != nil {
		pdf.SetCreationDate(a.Now())
	}
	pdf.SetMargins(a.Margin, a.Margin, a.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	width := pageWidth - 2*a.Margin
	height := float64(b.Dy()) * width / float64(b.Dx())

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imageName, opts, &raster)
	pdf.ImageOptions(imageName, a.Margin, a.Margin, width, height, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}
