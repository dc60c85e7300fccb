package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/cities-weather/internal/favorites"
	"github.com/i474232898/cities-weather/internal/session"
	"github.com/i474232898/cities-weather/internal/weather"
)

var validate = validator.New()

// DeviceHeader carries the client device id that scopes favorites and history.
const DeviceHeader = "X-Device-ID"

// Services are the handlers' dependencies.
type Services struct {
	Sessions  *session.Registry
	Weather   *weather.Service
	Favorites *favorites.Service
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Services) {
	v1 := app.Group("/api/v1")

	sessions := v1.Group("/sessions")
	sessions.Post("/", createSession(svc))
	sessions.Delete("/:id", deleteSession(svc))
	sessions.Post("/:id/next", loadNextPage(svc))
	sessions.Post("/:id/reset", resetSession(svc))
	sessions.Get("/:id/cities", listCities(svc))
	sessions.Post("/:id/sort", toggleSort(svc))
	sessions.Get("/:id/suggestions", suggestions(svc))
	sessions.Get("/:id/nearest", nearest(svc))

	v1.Get("/weather/city/:city", cityDetail(svc))
	v1.Get("/weather/coords", coordsDetail(svc))

	v1.Get("/favorites", listFavorites(svc))
	v1.Get("/favorites/:city", isFavorite(svc))
	v1.Post("/favorites/:city/toggle", toggleFavorite(svc))
	v1.Get("/history", listHistory(svc))
}

// ErrorHandler renders every error as {error, message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Centralized error response
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

type deviceHeader struct {
	ID string `validate:"required,uuid"`
}

// requireDevice returns the validated device id from the request header.
func requireDevice(c *fiber.Ctx) (string, error) {
	h := deviceHeader{ID: utils.CopyString(c.Get(DeviceHeader))}
	if err := validate.Struct(h); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, DeviceHeader+" header must be a UUID")
	}
	return h.ID, nil
}

// optionalDevice is like requireDevice but accepts a missing header.
func optionalDevice(c *fiber.Ctx) (string, error) {
	if c.Get(DeviceHeader) == "" {
		return "", nil
	}
	return requireDevice(c)
}

// cityParam decodes the :city path segment.
func cityParam(c *fiber.Ctx) (string, error) {
	name, err := DecodeCityPath(utils.CopyString(c.Params("city")))
	if err != nil || name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city in path")
	}
	return name, nil
}

func lookupSession(c *fiber.Ctx, svc Services) (*session.Session, error) {
	s, err := svc.Sessions.Get(c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return s, err
}
