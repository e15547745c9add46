package tickets_api

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BearBump/TicketBox/internal/presenter"
	"github.com/BearBump/TicketBox/internal/services/lookup"
)

const MessageEmptyInput = "Enter your PRN or Ticket Code."

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Ticket Lookup</title></head>
<body>
<h1>Check your ticket details in seconds.</h1>
<form method="get" action="/">
  <label for="code">PRN / Ticket Code</label>
  <input id="code" name="code" value="{{.Code}}" placeholder="PRN123456 or TCK-1Z9Q7M">
  <button type="submit">Search</button>
  <a href="/">Clear</a>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{with .View}}
<section class="ticket">
  <h2>{{.Ticket.FullName}}</h2>
  <p>Age: {{.Ticket.Age}}</p>
  <p><span class="badge badge-{{.StatusCategory}}">{{.Ticket.Status}}</span>
     Ticket: {{.Ticket.TicketCode}} PRN: {{.Ticket.PRN}}</p>
  <p>{{.Ticket.FromCity}} → {{.Ticket.ToCity}}</p>
  <p>{{.Ticket.Route}}</p>
  <dl>
    <dt>Departure</dt><dd>{{.DepartureDisplay}}</dd>
    <dt>Arrival</dt><dd>{{.ArrivalDisplay}}</dd>
    <dt>ETA</dt><dd>{{.ETADisplay}}</dd>
    <dt>Trip Duration</dt><dd>{{.DurationDisplay}}</dd>
    {{if .ScheduledDisplay}}<dt>Scheduled</dt><dd>{{.ScheduledDisplay}}</dd>{{end}}
  </dl>
</section>
{{end}}
</body>
</html>
`))

type pageData struct {
	Code  string
	Error string
	View  *presenter.View
}

// PageHandler renders the lookup form and, when a code was submitted, its result.
func (a *TicketsAPI) PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := pageData{Code: q.Get("code")}

		switch {
		case !q.Has("code"):
		case strings.TrimSpace(data.Code) == "":
			data.Error = MessageEmptyInput
		default:
			t, err := a.lookup(r.Context(), "page", data.Code)
			if err != nil {
				data.Error = lookup.MessageFor(err)
				break
			}
			v := presenter.Present(*t)
			data.View = &v
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTmpl.Execute(w, data); err != nil {
			slog.Error("render lookup page", "err", err)
		}
	}
}
