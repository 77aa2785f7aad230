// Package html renders a fused document as a preview page.
package html

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/vegarsti/fuse"
)

type Row struct {
	Order int
	Label string
	Box   string
	Text  string
}

type Page struct {
	Title      string
	Rows       []Row
	ImageURL   string
	TokenCount int
}

var tmplString = `
<!DOCTYPE html>
<html>
	<head>
		<title>{{.Title}}</title>
		<style>
			table, th, td {
				border: 1px solid black;
				border-collapse: collapse;
				padding: 5px;
			}
			td.text {
				white-space: pre-wrap;
			}
		</style>
	</head>
	<body>
		<h1>{{.Title}}</h1>
		<p>{{len .Rows}} regions, {{.TokenCount}} tokens.</p>
		<table>
			<tr><th>#</th><th>Label</th><th>Box</th><th>Text</th></tr>{{range .Rows}}
			<tr>
				<td>{{.Order}}</td>
				<td>{{.Label}}</td>
				<td>{{.Box}}</td>
				<td class="text">{{.Text}}</td>
			</tr>{{end}}
		</table>{{if .ImageURL}}
		<br />
		<img src="{{.ImageURL}}">{{end}}
	</body>
</html>
`

var tmpl = template.Must(template.New("document").Parse(tmplString))

// FromDocument lists the regions of doc in reading order above the page
// image at imageURL. An empty imageURL leaves the image out.
func FromDocument(doc *fuse.Document, imageURL string) (string, error) {
	page := Page{
		Title:      doc.ImageFilename,
		ImageURL:   imageURL,
		TokenCount: doc.TokenCount,
	}
	for i, r := range doc.Regions {
		page.Rows = append(page.Rows, Row{
			Order: i + 1,
			Label: r.Label,
			Box:   fmt.Sprintf("%.4f, %.4f, %.4f, %.4f", r.Box.XLeft, r.Box.YTop, r.Box.XRight, r.Box.YBottom),
			Text:  r.Text,
		})
	}
	buf := bytes.NewBufferString("")
	if err := tmpl.Execute(buf, page); err != nil {
		return "", fmt.Errorf("render %s: %w", doc.ImageFilename, err)
	}
	return buf.String(), nil
}
