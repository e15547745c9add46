package pgticket

import (
	"context"

	"github.com/BearBump/TicketBox/internal/models"
)

// SampleTickets are the demo rows offered on the lookup page ("PRN123456 or TCK-1Z9Q7M").
func SampleTickets() []models.Ticket {
	return []models.Ticket{
		{
			TicketCode:   "TCK-1Z9Q7M",
			PRN:          "PRN123456",
			FullName:     "Riya Sharma",
			Age:          26,
			FromCity:     "Pune",
			ToCity:       "Delhi",
			Route:        "PNQ → DEL (Flight FLY-218)",
			DepartureISO: "2026-01-20T08:10:00.000Z",
			ArrivalISO:   "2026-01-20T10:20:00.000Z",
			ETAMinutes:   45,
			Status:       models.TicketStatusConfirmed,
		},
		{
			TicketCode:   "TCK-7K2P9A",
			PRN:          "PRN654321",
			FullName:     "Arjun Mehta",
			Age:          31,
			FromCity:     "Mumbai",
			ToCity:       "Bengaluru",
			Route:        "BOM → BLR (Flight FLY-512)",
			DepartureISO: "2026-01-22T05:35:00.000Z",
			ArrivalISO:   "2026-01-22T07:15:00.000Z",
			ETAMinutes:   20,
			Status:       models.TicketStatusBoarding,
		},
	}
}

func (s *Storage) SeedSample(ctx context.Context) error {
	return s.UpsertTickets(ctx, SampleTickets())
}
