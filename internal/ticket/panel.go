package ticket

import (
	"html/template"
	"io"

	"github.com/nochlab/nochgpt/internal/store"
)

var panelTemplate = template.Must(template.New("panel").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>NochGPT · Tickets</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #fafafa; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; background: #fff; }
th, td { border: 1px solid #ddd; padding: 0.5rem 0.75rem; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
tr:nth-child(even) { background: #f9f9f9; }
.empty { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>Tickets ({{len .}})</h1>
{{if .}}
<table>
<tr><th>Fecha</th><th>De</th><th>Nombre</th><th>Tema</th><th>Contacto</th><th>Horario</th><th>Mensaje</th></tr>
{{range .}}
<tr>
<td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
<td>{{.Sender}}</td>
<td>{{.Name}}</td>
<td>{{.Topic}}</td>
<td>{{.Contact}}</td>
<td>{{.Schedule}}</td>
<td>{{.Message}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="empty">Sin tickets todavía.</p>
{{end}}
</body>
</html>
`))

// RenderPanel writes the HTML ticket table. html/template escapes the
// user-provided fields.
func RenderPanel(w io.Writer, tickets []*store.Ticket) error {
	return panelTemplate.Execute(w, tickets)
}
