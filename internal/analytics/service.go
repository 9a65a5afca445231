// Package analytics reports seat occupancy and ticket sales for staff.
package analytics

import (
	"context"
	"time"

	"train-station/internal/journey"
	"train-station/internal/models"
	"train-station/internal/store"
)

type Service struct {
	db *store.DB
}

func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// JourneyOccupancy is the booked share of one journey's seats.
type JourneyOccupancy struct {
	JourneyID     int64     `json:"journey_id"`
	Route         string    `json:"route"`
	Train         string    `json:"train"`
	DepartureTime time.Time `json:"departure_time"`
	Capacity      int       `json:"capacity"`
	TicketsSold   int       `json:"tickets_sold"`
	Available     int       `json:"available_seats"`
	OccupancyRate float64   `json:"occupancy_rate"`
}

// RouteAnalytics aggregates every journey scheduled on a route.
type RouteAnalytics struct {
	RouteID       int64              `json:"route_id"`
	Route         string             `json:"route"`
	TotalCapacity int                `json:"total_capacity"`
	TicketsSold   int                `json:"tickets_sold"`
	OccupancyRate float64            `json:"occupancy_rate"`
	Journeys      []JourneyOccupancy `json:"journeys"`
}

// DailySalesMetrics contains metrics for a single UTC day.
type DailySalesMetrics struct {
	Date        string `json:"date"`
	Orders      int    `json:"orders"`
	TicketsSold int    `json:"tickets_sold"`
}

type SalesReport struct {
	TotalOrders      int                 `json:"total_orders"`
	TotalTicketsSold int                 `json:"total_tickets_sold"`
	DailySales       []DailySalesMetrics `json:"daily_sales"`
}

func rate(sold, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(sold) / float64(capacity)
}

func occupancy(j models.Journey, sold int) JourneyOccupancy {
	o := JourneyOccupancy{
		JourneyID:     j.ID,
		DepartureTime: j.DepartureTime,
		TicketsSold:   sold,
	}
	if j.Route != nil {
		o.Route = j.Route.Label()
	}
	if j.Train != nil {
		o.Train = j.Train.Name
		o.Capacity = j.Train.Capacity()
		o.Available = journey.AvailableSeats(*j.Train, sold)
	}
	o.OccupancyRate = rate(sold, o.Capacity)
	return o
}

func (s *Service) Journey(ctx context.Context, id int64) (JourneyOccupancy, error) {
	j, err := s.db.GetJourney(ctx, id)
	if err != nil {
		return JourneyOccupancy{}, err
	}
	sold, err := s.db.CountTickets(ctx, id)
	if err != nil {
		return JourneyOccupancy{}, err
	}
	return occupancy(*j, sold), nil
}

func (s *Service) Route(ctx context.Context, id int64) (RouteAnalytics, error) {
	route, err := s.db.GetRoute(ctx, id)
	if err != nil {
		return RouteAnalytics{}, err
	}
	journeys, err := s.db.ListJourneys(ctx, store.JourneyFilter{RouteID: id})
	if err != nil {
		return RouteAnalytics{}, err
	}
	ids := make([]int64, len(journeys))
	for i, j := range journeys {
		ids[i] = j.ID
	}
	loads, err := s.db.JourneyLoads(ctx, ids)
	if err != nil {
		return RouteAnalytics{}, err
	}

	res := RouteAnalytics{RouteID: route.ID, Route: route.Label(), Journeys: make([]JourneyOccupancy, 0, len(journeys))}
	for _, j := range journeys {
		o := occupancy(j, loads[j.ID])
		res.TotalCapacity += o.Capacity
		res.TicketsSold += o.TicketsSold
		res.Journeys = append(res.Journeys, o)
	}
	res.OccupancyRate = rate(res.TicketsSold, res.TotalCapacity)
	return res, nil
}

// Sales buckets orders created in [from, to) by UTC day. Days without orders are omitted.
func (s *Service) Sales(ctx context.Context, from, to *time.Time) (SalesReport, error) {
	orders, err := s.db.OrdersBetween(ctx, from, to)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{DailySales: []DailySalesMetrics{}}
	index := map[string]int{}
	for _, o := range orders {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(report.DailySales)
			index[day] = i
			report.DailySales = append(report.DailySales, DailySalesMetrics{Date: day})
		}
		report.DailySales[i].Orders++
		report.DailySales[i].TicketsSold += len(o.Tickets)
		report.TotalOrders++
		report.TotalTicketsSold += len(o.Tickets)
	}
	return report, nil
}

// TotalTickets counts every ticket ever booked and not deleted.
func (s *Service) TotalTickets(ctx context.Context) (int, error) {
	return s.db.CountAllTickets(ctx)
}
