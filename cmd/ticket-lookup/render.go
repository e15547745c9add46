package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/BearBump/TicketBox/internal/presenter"
	"github.com/charmbracelet/lipgloss"
)

type theme struct {
	label  lipgloss.Style
	title  lipgloss.Style
	faint  lipgloss.Style
	errMsg lipgloss.Style
	badge  map[presenter.StatusCategory]lipgloss.Style
}

// newTheme binds styles to w so colour is dropped when w is not a terminal.
func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	badge := func(c lipgloss.Color) lipgloss.Style {
		return r.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(c).Padding(0, 1)
	}
	return theme{
		label:  r.NewStyle().Foreground(lipgloss.Color("245")).Width(11),
		title:  r.NewStyle().Bold(true),
		faint:  r.NewStyle().Foreground(lipgloss.Color("245")),
		errMsg: r.NewStyle().Foreground(lipgloss.Color("9")),
		badge: map[presenter.StatusCategory]lipgloss.Style{
			presenter.CategoryConfirmed: badge(lipgloss.Color("10")),
			presenter.CategoryBoarding:  badge(lipgloss.Color("12")),
			presenter.CategoryWaitlist:  badge(lipgloss.Color("11")),
			presenter.CategoryCancelled: badge(lipgloss.Color("9")),
			presenter.CategoryUnknown:   badge(lipgloss.Color("250")),
		},
	}
}

func (th theme) renderTicket(v presenter.View) string {
	t := v.Ticket
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n",
		th.title.Render(t.TicketCode),
		th.badge[v.StatusCategory].Render(t.Status))
	fmt.Fprintf(&b, "%s\n", th.faint.Render("PRN "+t.PRN))

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", th.label.Render(label), value)
	}
	row("Passenger", fmt.Sprintf("%s, %d", t.FullName, t.Age))
	row("Journey", t.FromCity+" → "+t.ToCity)
	row("Route", t.Route)
	row("Departure", v.DepartureDisplay)
	row("Arrival", v.ArrivalDisplay)
	row("Duration", v.DurationDisplay)
	row("ETA", v.ETADisplay)
	if v.ScheduledDisplay != "" {
		row("Scheduled", v.ScheduledDisplay)
	}
	return b.String()
}

func (th theme) renderError(code, msg string) string {
	if code == "" {
		return th.errMsg.Render(msg) + "\n"
	}
	return th.faint.Render(code+":") + " " + th.errMsg.Render(msg) + "\n"
}
