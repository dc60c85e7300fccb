package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cities-weather/internal/logger"
)

type listEntry struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

func entries(names []string) []listEntry {
	out := make([]listEntry, 0, len(names))
	for _, n := range names {
		out = append(out, listEntry{Name: n, Href: CityPath(n)})
	}
	return out
}

func storeError(err error) error {
	logger.Error(err)
	return fiber.NewError(fiber.StatusInternalServerError, "failed to access saved cities")
}

func listFavorites(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		device, err := requireDevice(c)
		if err != nil {
			return err
		}
		names, err := svc.Favorites.ListFavorites(c.UserContext(), device)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"favorites": entries(names)})
	}
}

func listHistory(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		device, err := requireDevice(c)
		if err != nil {
			return err
		}
		names, err := svc.Favorites.ListHistory(c.UserContext(), device)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"history": entries(names)})
	}
}

func isFavorite(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		device, err := requireDevice(c)
		if err != nil {
			return err
		}
		name, err := cityParam(c)
		if err != nil {
			return err
		}
		fav, err := svc.Favorites.IsFavorite(c.UserContext(), device, name)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"city": name, "isFavorite": fav})
	}
}

func toggleFavorite(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		device, err := requireDevice(c)
		if err != nil {
			return err
		}
		name, err := cityParam(c)
		if err != nil {
			return err
		}
		fav, err := svc.Favorites.ToggleFavorite(c.UserContext(), device, name)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"city": name, "isFavorite": fav})
	}
}
