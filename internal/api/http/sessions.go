package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/cities-weather/internal/citylist"
	"github.com/i474232898/cities-weather/internal/geo"
	"github.com/i474232898/cities-weather/internal/logger"
	"github.com/i474232898/cities-weather/internal/search"
)

// cityView is a city as listed, with the link to its detail view.
type cityView struct {
	geo.City
	Href string `json:"href"`
}

func views(cities []geo.City) []cityView {
	out := make([]cityView, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityView{City: c, Href: CityPath(c.Name)})
	}
	return out
}

type pageResponse struct {
	SessionID string          `json:"sessionId"`
	Status    citylist.Status `json:"status"`
	Total     int             `json:"total"`
	HasMore   bool            `json:"hasMore"`
	Error     string          `json:"error,omitempty"`
}

// loadPage runs one LoadNext. A directory failure is reported in the body;
// the session and its collected cities stay usable.
func loadPage(c *fiber.Ctx, id string, agg *citylist.Aggregator) (pageResponse, error) {
	st, err := agg.LoadNext(c.UserContext())
	if errors.Is(err, citylist.ErrDiscarded) {
		return pageResponse{}, fiber.NewError(fiber.StatusConflict, "session closed while loading")
	}

	snap := agg.Snapshot()
	resp := pageResponse{
		SessionID: id,
		Status:    st,
		Total:     len(snap.Cities),
		HasMore:   snap.HasMore,
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"session": id,
			"error":   err.Error(),
		}).Warn("city page load failed")
		resp.Error = "city directory unavailable"
	}
	return resp, nil
}

func createSession(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := svc.Sessions.Create()
		resp, err := loadPage(c, s.ID, s.Aggregator)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

func deleteSession(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Sessions.Delete(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func loadNextPage(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}
		resp, err := loadPage(c, s.ID, s.Aggregator)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

func resetSession(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}
		s.Aggregator.Reset()
		resp, err := loadPage(c, s.ID, s.Aggregator)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// listQuery holds query parameters for the city list.
type listQuery struct {
	Search   string `query:"search" validate:"max=100"`
	Country  string `query:"country" validate:"max=100"`
	Timezone string `query:"timezone" validate:"max=100"`
	Sort     string `query:"sort" validate:"omitempty,oneof=name country timezone"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
}

func (q listQuery) filters() search.Query {
	return search.Query{Term: q.Search, Country: q.Country, Timezone: q.Timezone}
}

// sortState reports the sort named by the query, if any. It assumes the
// query passed validation.
func (q listQuery) sortState() (search.SortState, bool) {
	col, err := search.ParseColumn(q.Sort)
	if err != nil || col == search.ColumnNone {
		return search.SortState{}, false
	}
	order, _ := search.ParseOrder(q.Order)
	return search.SortState{Column: col, Order: order}, true
}

func listCities(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}

		var q listQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// An explicit sort sticks to the session, like a header click.
		sortState, ok := q.sortState()
		if ok {
			s.SetSort(sortState)
		} else {
			sortState = s.Sort()
		}

		snap := s.Aggregator.Snapshot()
		cities, verr := search.Render(snap.Cities, q.filters(), sortState)

		body := fiber.Map{
			"cities":  views(cities),
			"count":   len(cities),
			"total":   len(snap.Cities),
			"facets":  search.BuildFacets(snap.Cities),
			"sort":    sortState,
			"state":   snap.State,
			"hasMore": snap.HasMore,
		}
		if verr != nil {
			body["validationError"] = verr.Error()
		}
		return c.JSON(body)
	}
}

type sortRequest struct {
	Column string `json:"column" validate:"required,oneof=name country timezone"`
}

func toggleSort(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}

		var req sortRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		col, err := search.ParseColumn(req.Column)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(s.ToggleSort(col))
	}
}

func suggestions(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}
		query := c.Query("q")

		var found []geo.City
		err = s.Debouncer.Do(c.UserContext(), func() {
			found = search.Suggestions(s.Aggregator.Snapshot().Cities, query)
		})
		if errors.Is(err, search.ErrSuperseded) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		if err != nil {
			return err
		}

		body := fiber.Map{"query": query, "suggestions": views(found)}
		if verr := search.ValidateTerm(query); verr != nil {
			body["validationError"] = verr.Error()
		}
		return c.JSON(body)
	}
}

// coordsQuery holds a lat/lon pair from the query string.
type coordsQuery struct {
	Lat   string `query:"lat" validate:"required,latitude"`
	Lon   string `query:"lon" validate:"required,longitude"`
	Limit int    `query:"limit" validate:"gte=0,lte=100"`
	Units string `query:"units"`
}

// point assumes the query passed validation.
func (q coordsQuery) point() geo.Coordinates {
	lat, _ := strconv.ParseFloat(q.Lat, 64)
	lon, _ := strconv.ParseFloat(q.Lon, 64)
	return geo.Coordinates{Lat: lat, Lon: lon}
}

func parseCoords(c *fiber.Ctx) (coordsQuery, error) {
	var q coordsQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

func nearest(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := lookupSession(c, svc)
		if err != nil {
			return err
		}
		q, err := parseCoords(c)
		if err != nil {
			return err
		}
		if q.Limit == 0 {
			q.Limit = 10
		}

		from := q.point()
		ranked := search.Nearest(s.Aggregator.Snapshot().Cities, from, q.Limit)

		out := make([]fiber.Map, 0, len(ranked))
		for _, r := range ranked {
			out = append(out, fiber.Map{
				"city":       r.City,
				"distanceKm": r.DistanceKm,
				"href":       CityPath(r.Name),
			})
		}
		return c.JSON(fiber.Map{"from": from, "cities": out})
	}
}
