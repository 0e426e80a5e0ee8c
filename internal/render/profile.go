package render

// Profile is the typography and sizing scale a view is rendered at.
// Profiles change how big things are, never what they say. Sizes are CSS
// pixels; the HTML template and the rasterizer read the same fields.
type Profile struct {
	Name string

	// CanvasWidth is the width of the export container and of the raster
	// drawn from it. Zero means fluid (on-screen).
	CanvasWidth int
	Padding     int

	TitlePx     int
	TaglinePx   int
	HeadingPx   int
	BodyPx      int
	TableHeadPx int
	TotalsPx    int
	GrandPx     int
	FooterPx    int
}

var (
	// Screen is the on-screen preview.
	Screen = Profile{
		Name:        "screen",
		Padding:     30,
		TitlePx:     51,
		TaglinePx:   22,
		HeadingPx:   22,
		BodyPx:      16,
		TableHeadPx: 18,
		TotalsPx:    21,
		GrandPx:     29,
		FooterPx:    14,
	}

	// Export is the off-screen capture source for the PDF.
	Export = Profile{
		Name:        "export",
		CanvasWidth: 800,
		Padding:     40,
		TitlePx:     38,
		TaglinePx:   16,
		HeadingPx:   18,
		BodyPx:      14,
		TableHeadPx: 14,
		TotalsPx:    16,
		GrandPx:     22,
		FooterPx:    13,
	}
)
