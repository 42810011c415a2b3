package site

// Page layouts for the generated static site. Styling mirrors a plain
// system-ui reading page; everything is inlined so the output has no
// asset dependencies.

const notePageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;max-width:900px;margin:2rem auto;padding:1rem}
header{border-bottom:1px solid #eee;margin-bottom:1rem;padding-bottom:0.5rem}
pre,code{background:#f5f5f5;padding:0.2rem 0.4rem;border-radius:4px}
.meta{color:#444;font-size:0.9rem}
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="meta">source: {{.Source}} &bull; original: {{.Origin}} &bull; topics: {{.Topics}} &bull; version: {{.Version}} &bull; created_utc: {{.Created}}</p>
</header>
<main>{{.Body}}</main>
<footer style="margin-top:2rem"><small>ENVISAGE notes &mdash; generated {{.GeneratedAt}}</small></footer>
</body></html>
`

const indexTemplate = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><title>ENVISAGE Notes</title>
<style>
body{font-family:system-ui;max-width:1100px;margin:2rem auto;padding:1rem}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:0.6rem;border-bottom:1px solid #eee}
th{background:#fafafa}
</style>
</head>
<body>
<h1>ENVISAGE &mdash; Notes</h1>
<p>Auto-generated index of OCR notes (sorted by newest first).</p>
<table>
<thead><tr><th>Title</th><th>Created (UTC)</th><th>Source</th><th>Topics</th><th>Ver</th><th>File</th></tr></thead>
<tbody>
{{- range .Entries}}
<tr><td><a href="{{.Href}}">{{.Title}}</a></td><td>{{.Created}}</td><td>{{.Source}}</td><td>{{.Topics}}</td><td>{{.Version}}</td><td>{{.File}}</td></tr>
{{- end}}
</tbody>
</table>
<footer><small>ENVISAGE &mdash; index generated {{.GeneratedAt}}</small></footer>
</body></html>
`
