package oauth

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/events"
)

var successPage = template.Must(template.New("success").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p>{{.Title}}</p>
<script>
if (window.opener) {
  window.opener.postMessage({type: {{.EventType}}}, '*');
  window.close();
} else {
  window.location.href = '/';
}
</script>
</body></html>`))

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Bağlantı başarısız</title></head>
<body>
<h1>Bağlantı başarısız</h1>
<p>{{.Service}}: {{.Message}}</p>
<p><a href="/">Panele dön</a></p>
</body></html>`))

// WriteCallbackPage renders the popup page for a finished callback. On
// success it signals the opening window and closes itself.
func WriteCallbackPage(w http.ResponseWriter, service domain.Service, err error) {
	var buf bytes.Buffer
	status := http.StatusOK

	if err == nil {
		data := struct {
			Title     string
			EventType string
		}{
			Title:     string(service) + " bağlandı",
			EventType: events.AuthSuccess(service).Type,
		}
		_ = successPage.Execute(&buf, data)
	} else {
		status = apperr.StatusOf(err)
		data := struct {
			Service string
			Message string
		}{
			Service: string(service),
			Message: apperr.MessageOf(err),
		}
		_ = errorPage.Execute(&buf, data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
