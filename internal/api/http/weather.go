package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/cities-weather/internal/logger"
	"github.com/i474232898/cities-weather/internal/weather"
)

type detailResponse struct {
	weather.Detail
	Href       string `json:"href,omitempty"`
	IsFavorite bool   `json:"isFavorite"`
}

// detailError turns any detail failure into the terminal not-found page.
func detailError(loc weather.Location, err error) error {
	logger.WithFields(logrus.Fields{
		"location": loc.Key(),
		"error":    err.Error(),
	}).Warn("weather detail failed")

	if errors.Is(err, weather.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	}
	return fiber.NewError(fiber.StatusNotFound, "weather data unavailable")
}

func parseUnits(c *fiber.Ctx) (weather.Units, error) {
	units, err := weather.ParseUnits(c.Query("units"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return units, nil
}

func cityDetail(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := cityParam(c)
		if err != nil {
			return err
		}
		units, err := parseUnits(c)
		if err != nil {
			return err
		}
		device, err := optionalDevice(c)
		if err != nil {
			return err
		}

		loc := weather.ByName(name)
		detail, err := svc.Weather.Detail(c.UserContext(), loc, units)
		if err != nil {
			return detailError(loc, err)
		}

		resp := detailResponse{Detail: detail, Href: CityPath(name)}
		if device != "" {
			if err := svc.Favorites.RecordVisit(c.UserContext(), device, name); err != nil {
				logger.Error(err)
			}
			fav, err := svc.Favorites.IsFavorite(c.UserContext(), device, name)
			if err != nil {
				logger.Error(err)
			}
			resp.IsFavorite = fav
		}
		return c.JSON(resp)
	}
}

func coordsDetail(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseCoords(c)
		if err != nil {
			return err
		}
		units, err := parseUnits(c)
		if err != nil {
			return err
		}

		p := q.point()
		loc := weather.ByCoordinates(p.Lat, p.Lon)
		detail, err := svc.Weather.Detail(c.UserContext(), loc, units)
		if err != nil {
			return detailError(loc, err)
		}
		return c.JSON(detailResponse{Detail: detail})
	}
}
