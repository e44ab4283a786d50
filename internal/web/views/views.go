// Package views renders the web shell's HTML pages as templ components.
// The components are built directly on the templ runtime rather than
// generated templates: the pages are small and a hand-written component
// keeps the rendering pipeline free of a code generation step.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/itaxotools/abcd-validator/internal/core"
)

// page wraps body markup in the shared document frame.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<title>%s</title><style>%s</style></head><body><main>`,
			templ.EscapeString(title), pageCSS); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

const pageCSS = `body{font-family:sans-serif;margin:2rem auto;max-width:60rem;padding:0 1rem}` +
	`table{border-collapse:collapse;width:100%}td,th{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}` +
	`.error{color:#b00020}.warning{color:#8a6d00}.ok{color:#1b7f3b}label{display:block;margin:.8rem 0}`

// Index is the upload form for the three table files.
func Index() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<h1>ABCD Validator</h1>`+
				`<p>Select the three collection tables to validate against the ABCD schema.</p>`+
				`<form method="post" action="/validate" enctype="multipart/form-data">`+
				`<label>Specimen table <input type="file" name="specimen" required></label>`+
				`<label>Measurement table <input type="file" name="measurement" required></label>`+
				`<label>Multimedia table <input type="file" name="multimedia" required></label>`+
				`<label>Delimiter <select name="delimiter">`+
				`<option value="auto">detect</option>`+
				`<option value="comma">comma</option>`+
				`<option value="semicolon">semicolon</option>`+
				`<option value="tab">tab</option>`+
				`</select></label>`+
				`<button type="submit">Validate</button>`+
				`</form>`)
		return err
	})
	return page("ABCD Validator", body)
}

// ReportPage renders a full validation report.
func ReportPage(report *core.Report) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := `<p class="error">Validation found errors.</p>`
		if report.Valid {
			status = `<p class="ok">All tables are valid.</p>`
		}
		if _, err := fmt.Fprintf(w,
			`<h1>Validation Report</h1>%s<p>%d errors, %d warnings</p>`,
			status, report.Summary.Errors, report.Summary.Warnings); err != nil {
			return err
		}

		if len(report.Findings) == 0 {
			_, err := io.WriteString(w, `<p><a href="/">Validate another set</a></p>`)
			return err
		}

		if _, err := io.WriteString(w,
			`<table><thead><tr><th>Severity</th><th>Table</th><th>Line</th>`+
				`<th>Column</th><th>Code</th><th>Message</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, f := range report.Findings {
			line := ""
			if f.Line > 0 {
				line = fmt.Sprintf("%d", f.Line)
			}
			if _, err := fmt.Fprintf(w,
				`<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(string(f.Severity)),
				templ.EscapeString(string(f.Severity)),
				templ.EscapeString(string(f.Table)),
				line,
				templ.EscapeString(f.Column),
				templ.EscapeString(f.Code),
				templ.EscapeString(f.Message)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table><p><a href="/">Validate another set</a></p>`)
		return err
	})
	return page("Validation Report", body)
}

// ErrorPage renders a fatal validation error.
func ErrorPage(message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<h1>Validation failed</h1><p class="error">%s</p><p>%s</p>`+
				`<p><small>Code %s</small></p><p><a href="/">Back</a></p>`,
			templ.EscapeString(message),
			templ.EscapeString(action),
			templ.EscapeString(code))
		return err
	})
	return page("Validation failed", body)
}
