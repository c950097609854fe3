package httpapi

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weatherdeck/internal/app"
	"weatherdeck/internal/citystore"
	"weatherdeck/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(fapp *fiber.App, service *app.Service, search *app.Debouncer) {
	v1 := fapp.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		current, ok := service.Current().Get()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no weather data fetched yet")
		}
		return c.JSON(current)
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		daily, ok := service.Daily().Get()
		if !ok {
			daily = []weather.DailySummary{}
		}
		return c.JSON(daily)
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(service.Cities().Cities())
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.AddCity(req.toResult()); err != nil {
			if errors.Is(err, citystore.ErrAlreadyExists) {
				return fiber.NewError(fiber.StatusConflict, "city is already saved")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to add city")
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	v1.Delete("/cities/:name", func(c *fiber.Ctx) error {
		name, err := cityNameParam(c)
		if err != nil {
			return err
		}
		if err := service.RemoveCity(name); err != nil {
			if errors.Is(err, citystore.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no saved city with that name")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove city")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Put("/cities/:name/select", func(c *fiber.Ctx) error {
		name, err := cityNameParam(c)
		if err != nil {
			return err
		}
		service.SelectCity(name)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/cities/selected", func(c *fiber.Ctx) error {
		city, ok := service.Cities().SelectedCity()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no city selected")
		}
		return c.JSON(city)
	})

	v1.Get("/cities/search", func(c *fiber.Ctx) error {
		var req searchQuery
		req.Query = c.Query("q")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "q must be at least 2 characters")
		}

		if err := service.Search(c.Context(), req.Query); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "city search failed")
		}
		results, ok := service.SearchResults().Get()
		if !ok {
			results = []weather.SearchResult{}
		}
		return c.JSON(results)
	})

	// Type-ahead flow: the client reports every keystroke and polls the
	// result list; the debouncer decides when a search actually runs.
	v1.Put("/cities/search/query", func(c *fiber.Ctx) error {
		var req typingQuery
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		search.QueryChanged(req.Query)
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Get("/cities/search/results", func(c *fiber.Ctx) error {
		results, ok := service.SearchResults().Get()
		if !ok {
			results = []weather.SearchResult{}
		}
		return c.JSON(results)
	})

	v1.Get("/notices", func(c *fiber.Ctx) error {
		notices, ok := service.Notices().Get()
		if !ok {
			notices = []app.Notice{}
		}
		return c.JSON(notices)
	})

	v1.Delete("/notices/:id", func(c *fiber.Ctx) error {
		if !service.Dismiss(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "no such notice")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// addCityRequest is the POST /cities body: a search candidate chosen by the
// user.
type addCityRequest struct {
	Name    string  `json:"name" validate:"required"`
	Country string  `json:"country" validate:"required"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (r addCityRequest) toResult() weather.SearchResult {
	return weather.SearchResult{
		Name:    r.Name,
		Country: r.Country,
		State:   r.State,
		Lat:     r.Lat,
		Lon:     r.Lon,
	}
}

type searchQuery struct {
	Query string `validate:"required,min=2"`
}

// typingQuery carries the raw, possibly short, in-progress input; length
// rules are the debouncer's to enforce.
type typingQuery struct {
	Query string `json:"q"`
}

func cityNameParam(c *fiber.Ctx) (string, error) {
	// Path segments arrive escaped; "New%20York" must match "New York".
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		name = c.Params("name")
	}
	if name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "city name is required")
	}
	return name, nil
}
