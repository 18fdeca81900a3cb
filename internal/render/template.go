package render

import (
	"html/template"
)

const baseCSS = `
@page {
	size: A4;
	margin: 2.5cm 2cm;
}
body {
	font-family: "Noto Sans", "Noto Sans Gujarati", "Arial", sans-serif;
	font-size: 11pt;
	line-height: 1.6;
	color: #333;
	text-align: justify;
}
.document-header {
	text-align: center;
	margin-bottom: 30px;
	padding-bottom: 20px;
	border-bottom: 2px solid #ddd;
}
.document-title { font-size: 18pt; font-weight: bold; margin-bottom: 10px; color: #2c3e50; }
.document-subtitle { font-size: 12pt; color: #666; margin-bottom: 5px; }
.translation-info { font-size: 10pt; color: #888; font-style: italic; }
.paragraph { margin-bottom: 15px; text-indent: 1em; }
.paragraph.no-indent { text-indent: 0; }
.heading { font-size: 14pt; font-weight: bold; margin-top: 25px; margin-bottom: 15px; color: #2c3e50; }
.gujarati { font-family: "Noto Sans Gujarati", "Shruti", sans-serif; font-size: 12pt; line-height: 1.8; }
.english { font-family: "Noto Sans", "Arial", sans-serif; font-size: 11pt; }
.footer-info { margin-top: 40px; font-size: 9pt; color: #888; text-align: center; }
table.comparison { width: 100%; border-collapse: collapse; }
table.comparison td, table.comparison th { width: 50%; vertical-align: top; border: 1px solid #ddd; padding: 10px; }
table.comparison th { background-color: #f4f4f4; }
td.original { background-color: #f9f9f9; }
`

// Disclaimer is printed at the foot of every generated document.
const Disclaimer = "This document was automatically translated. Please verify important legal terms."

const dateLayout = "02/01/2006 15:04"

var funcs = template.FuncMap{
	"css": func() template.CSS { return template.CSS(baseCSS) },
}

var documentTmpl = template.Must(template.New("document").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>{{css}}</style>
</head>
<body>
<div class="document-header">
<div class="document-title">{{.Title}}</div>
<div class="document-subtitle">Legal Document Translation</div>
<div class="translation-info">Translated from {{.SourceName}} to {{.TargetName}}<br>Generated on {{.Generated}}</div>
</div>
<div class="document-content">
{{- range .Blocks}}
{{if .Heading}}<div class="heading">{{.Text}}</div>{{else}}<div class="paragraph {{.LangCSS}}{{if .NoIndent}} no-indent{{end}}">{{.Text}}</div>{{end}}
{{- else}}
<div class="paragraph">No content available.</div>
{{- end}}
</div>
<div class="footer-info">{{.Disclaimer}}</div>
</body>
</html>
`))

var comparisonTmpl = template.Must(template.New("comparison").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>{{css}}</style>
</head>
<body>
<div class="document-header">
<div class="document-title">{{.Title}}</div>
<div class="document-subtitle">Side-by-side Comparison</div>
<div class="translation-info">Generated on {{.Generated}}</div>
</div>
<table class="comparison">
<tr><th>{{.SourceName}}</th><th>{{.TargetName}}</th></tr>
{{- range .Rows}}
<tr><td class="original">{{.Original}}</td><td class="translated">{{.Translated}}</td></tr>
{{- end}}
</table>
<div class="footer-info">{{.Disclaimer}}</div>
</body>
</html>
`))

type documentView struct {
	Lang       string
	Title      string
	SourceName string
	TargetName string
	Generated  string
	Blocks     []Block
	Disclaimer string
}

type comparisonRow struct {
	Original   string
	Translated string
}

type comparisonView struct {
	Lang       string
	Title      string
	SourceName string
	TargetName string
	Generated  string
	Rows       []comparisonRow
	Disclaimer string
}
