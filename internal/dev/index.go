package dev

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// indexPage lists compiled modules with their diagnostics.
func indexPage(addr string, modules []ModuleState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>jsxc dev</title>`)
		b.WriteString(`<style>body{font-family:monospace;margin:2rem}td{padding:.25rem 1rem}.err{color:#c00}.warn{color:#a60}</style>`)
		b.WriteString(`</head><body>`)
		fmt.Fprintf(&b, `<h1>jsxc dev server</h1><p>%s &middot; %d modules</p>`, templ.EscapeString(addr), len(modules))
		b.WriteString(`<table><tr><th>module</th><th>status</th></tr>`)
		for _, m := range modules {
			b.WriteString(`<tr><td>`)
			if m.Error == "" {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, templ.EscapeString(m.URL), templ.EscapeString(m.Input))
			} else {
				b.WriteString(templ.EscapeString(m.Input))
			}
			b.WriteString(`</td><td>`)
			switch {
			case m.Error != "":
				fmt.Fprintf(&b, `<span class="err">%s</span>`, templ.EscapeString(m.Error))
			case len(m.Diagnostics) > 0:
				b.WriteString(`<ul>`)
				for _, d := range m.Diagnostics {
					fmt.Fprintf(&b, `<li class="warn">%s</li>`, templ.EscapeString(d.FormatCompact()))
				}
				b.WriteString(`</ul>`)
			default:
				b.WriteString(`ok`)
			}
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</table>`)
		b.WriteString(liveScript)
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// liveScript reloads the index whenever the server reports a change.
const liveScript = `<script>
(function() {
    var delay = 1000;
    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');
        ws.onopen = function() { delay = 1000; };
        ws.onmessage = function() { location.reload(); };
        ws.onclose = function() {
            setTimeout(connect, delay);
            delay = Math.min(delay * 2, 30000);
        };
    }
    connect();
})();
</script>`
