package export

import (
	"context"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Simplici0/oro-invoice/internal/render"
)

// Rasterizer draws a view into an off-screen bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, v render.View) (image.Image, error)
}

// DefaultScale is the upscaling factor applied for print sharpness.
const DefaultScale = 2

const defaultCanvasWidth = 800

var (
	colorBackground = color.RGBA{R: 0xff, G: 0xfa, B: 0xf0, A: 0xff}
	colorText       = color.RGBA{R: 0x5a, G: 0x4a, B: 0x42, A: 0xff}
	colorMuted      = color.RGBA{R: 0x7d, G: 0x6b, B: 0x5a, A: 0xff}
	colorGold       = color.RGBA{R: 0xb8, G: 0x86, B: 0x0b, A: 0xff}
	colorBrown      = color.RGBA{R: 0x8b, G: 0x69, B: 0x14, A: 0xff}
	colorBorder     = color.RGBA{R: 0xe8, G: 0xdf, B: 0xd3, A: 0xff}
	colorPanel      = color.RGBA{R: 0xf8, G: 0xf4, B: 0xe9, A: 0xff}
	colorNotes      = color.RGBA{R: 0xff, G: 0xf8, B: 0xe1, A: 0xff}
	colorFooter     = color.RGBA{R: 0xa8, G: 0x9c, B: 0x91, A: 0xff}
	colorWhite      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// TextRasterizer lays a view out with a bitmap font. Text is drawn
// directly at the upscaled size rather than stretched afterwards.
type TextRasterizer struct {
	Scale int
}

func NewRasterizer() *TextRasterizer {
	return &TextRasterizer{Scale: DefaultScale}
}

func (r *TextRasterizer) Rasterize(ctx context.Context, v render.View) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := r.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	c := layout(v)
	img := image.NewRGBA(image.Rect(0, 0, c.width*scale, c.height*scale))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	for _, op := range c.ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op.paint(img, scale)
	}
	return img, nil
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type paintOp interface {
	paint(dst draw.Image, scale int)
}

type rectOp struct {
	r image.Rectangle
	c color.Color
}

func (o rectOp) paint(dst draw.Image, scale int) {
	r := image.Rect(o.r.Min.X*scale, o.r.Min.Y*scale, o.r.Max.X*scale, o.r.Max.Y*scale)
	draw.Draw(dst, r, image.NewUniform(o.c), image.Point{}, draw.Over)
}

type textOp struct {
	s    string
	x, y int // top-left, logical pixels
	px   int
	c    color.Color
}

func (o textOp) paint(dst draw.Image, scale int) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, o.s).Ceil()
	if w == 0 {
		return
	}
	glyphs := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(o.c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(o.s)

	dr := image.Rect(
		o.x*scale,
		o.y*scale,
		(o.x+textWidth(o.s, o.px))*scale,
		(o.y+o.px)*scale,
	)
	draw.ApproxBiLinear.Scale(dst, dr, glyphs, glyphs.Bounds(), draw.Over, nil)
}

func textWidth(s string, px int) int {
	face := basicfont.Face7x13
	return font.MeasureString(face, s).Ceil() * px / face.Height
}

// canvas accumulates paint operations top to bottom.
type canvas struct {
	width, height int
	pad           int
	y             int
	ops           []paintOp
}

func (c *canvas) text(s string, x, px int, col color.Color, a align) {
	s = asciiOnly(s)
	w := textWidth(s, px)
	switch a {
	case alignCenter:
		x -= w / 2
	case alignRight:
		x -= w
	}
	c.ops = append(c.ops, textOp{s: s, x: x, y: c.y, px: px, c: col})
}

func (c *canvas) line(s string, px int, col color.Color, a align) {
	x := c.pad
	switch a {
	case alignCenter:
		x = c.width / 2
	case alignRight:
		x = c.width - c.pad
	}
	c.text(s, x, px, col, a)
	c.y += px + px/2
}

func (c *canvas) rect(x0, y0, x1, y1 int, col color.Color) {
	c.ops = append(c.ops, rectOp{r: image.Rect(x0, y0, x1, y1), c: col})
}

func (c *canvas) rule(col color.Color, thickness int) {
	c.rect(c.pad, c.y, c.width-c.pad, c.y+thickness, col)
	c.y += thickness
}

func (c *canvas) gap(n int) { c.y += n }

// panel paints a background behind the block drawn by fn.
func (c *canvas) panel(col color.Color, inset int, fn func()) {
	idx := len(c.ops)
	top := c.y
	c.y += inset
	fn()
	c.y += inset
	bg := rectOp{r: image.Rect(c.pad, top, c.width-c.pad, c.y), c: col}
	c.ops = append(c.ops[:idx], append([]paintOp{bg}, c.ops[idx:]...)...)
}

func layout(v render.View) *canvas {
	p := v.Profile
	width := p.CanvasWidth
	if width <= 0 {
		width = defaultCanvasWidth
	}
	l := v.Labels
	body := p.BodyPx
	c := &canvas{width: width, pad: p.Padding, y: p.Padding}
	left := c.pad + 20
	mid := c.width / 2
	right := c.width - c.pad - 20

	c.line(v.CompanyName, p.TitlePx, colorGold, alignCenter)
	c.line(strings.ToUpper(v.Tagline), p.TaglinePx, colorBrown, alignCenter)
	c.rule(colorBorder, 2)
	c.gap(30)

	c.panel(colorPanel, 20, func() {
		pairs := [][2]string{
			{caption(l.InvoiceNumber, v.InvoiceNumber), caption(l.GSTNumber, v.GSTNumber)},
			{caption(l.InvoiceDate, v.InvoiceDate), caption(l.Email, v.Business.Email)},
			{caption(l.DueDate, v.DueDate), ""},
		}
		for _, pair := range pairs {
			c.text(pair[0], left, body, colorText, alignLeft)
			c.text(pair[1], mid+10, body, colorText, alignLeft)
			c.gap(body + body/2)
		}
	})
	c.gap(30)

	c.panel(colorPanel, 20, func() {
		c.text(l.Business, left, p.HeadingPx, colorBrown, alignLeft)
		c.text(l.Customer, mid+10, p.HeadingPx, colorBrown, alignLeft)
		c.gap(p.HeadingPx + p.HeadingPx/2)
		biz := partyLines(v.Business)
		cust := partyLines(v.Customer)
		for i := range biz {
			c.text(biz[i], left, body, colorText, alignLeft)
			c.text(cust[i], mid+10, body, colorText, alignLeft)
			c.gap(body + body/2)
		}
	})
	c.gap(30)

	descX := left
	qtyX := c.width * 55 / 100
	rateX := c.width * 76 / 100
	amountX := right

	head := p.TableHeadPx
	c.rect(c.pad, c.y, c.width-c.pad, c.y+head*2+10, colorGold)
	c.gap(head/2 + 5)
	c.text(l.Description, descX, head, colorWhite, alignLeft)
	c.text(l.Quantity, qtyX, head, colorWhite, alignCenter)
	c.text(l.Rate, rateX, head, colorWhite, alignRight)
	c.text(l.Amount, amountX, head, colorWhite, alignRight)
	c.gap(head + head/2 + 5)
	for _, row := range v.Rows {
		c.gap(body / 2)
		c.text(row.Description, descX, body, colorText, alignLeft)
		c.text(row.Quantity, qtyX, body, colorText, alignCenter)
		c.text(row.Rate, rateX, body, colorText, alignRight)
		c.text(row.Amount, amountX, body, colorText, alignRight)
		c.gap(body + body/2)
		c.rule(colorBorder, 1)
	}
	c.gap(30)

	c.panel(colorPanel, 20, func() {
		totals := p.TotalsPx
		c.text(l.Subtotal, left, totals, colorText, alignLeft)
		c.text(v.Subtotal, right, totals, colorText, alignRight)
		c.gap(totals * 2)
		c.text(l.Tax, left, totals, colorText, alignLeft)
		c.text(v.Tax, right, totals, colorText, alignRight)
		c.gap(totals * 2)
		c.rect(left, c.y, right, c.y+3, colorGold)
		c.gap(12)
		c.text(l.Total, left, p.GrandPx, colorGold, alignLeft)
		c.text(v.Total, right, p.GrandPx, colorGold, alignRight)
		c.gap(p.GrandPx)
	})
	c.gap(30)

	c.panel(colorNotes, 20, func() {
		c.text(l.Notes, left, p.HeadingPx, colorBrown, alignLeft)
		c.gap(p.HeadingPx + p.HeadingPx/2)
		for _, l := range wrap(asciiOnly(v.Notes), right-left, body) {
			c.text(l, left, body, colorMuted, alignLeft)
			c.gap(body + body/2)
		}
	})
	c.gap(40)

	c.rule(colorBorder, 1)
	c.gap(20)
	c.line(v.Footer, p.FooterPx, colorFooter, alignCenter)

	c.height = c.y + c.pad
	return c
}

func caption(label, value string) string {
	return label + " " + value
}

func partyLines(p render.Party) []string {
	return []string{p.Name, p.Address, p.City, p.Phone, p.Email}
}

// wrap breaks s into lines no wider than width logical pixels.
func wrap(s string, width, px int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if textWidth(cur+" "+w, px) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}

var bitmapReplacer = strings.NewReplacer("•", "-", "–", "-", "—", "-", "’", "'", "“", "\"", "”", "\"")

// asciiOnly maps the punctuation the bitmap font lacks to ASCII look-alikes.
func asciiOnly(s string) string {
	return bitmapReplacer.Replace(s)
}
