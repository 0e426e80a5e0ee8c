package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

type partyBlock struct {
	Title   string
	Party   Party
	Profile Profile
}

var invoiceTemplate = template.Must(template.New("invoice.gohtml").Funcs(template.FuncMap{
	"party": func(title string, p Party, profile Profile) partyBlock {
		return partyBlock{Title: title, Party: p, Profile: profile}
	},
}).ParseFS(templateFS, "templates/*.gohtml"))

// HTML writes the invoice markup of v. Both profiles go through the same template.
func HTML(w io.Writer, v View) error {
	if err := invoiceTemplate.ExecuteTemplate(w, "invoice", v); err != nil {
		return fmt.Errorf("render invoice %s: %w", v.Profile.Name, err)
	}
	return nil
}

// HTMLString is HTML into a template.HTML, for embedding in a page.
func HTMLString(v View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
