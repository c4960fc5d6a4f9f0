package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/omedacore/someweather/internal/upstream"
	"github.com/omedacore/someweather/internal/weather"
)

var validate = validator.New()

const requiredWeatherFields = "All parameters (latitude, longitude, temperature_unit, " +
	"windspeed_unit, precipitation_unit, current, hourly, daily, timezone) are required"

// RegisterRoutes wires the HTTP handlers into the Fiber app. The health
// endpoint is public; everything else sits behind the API-key guard.
func RegisterRoutes(app *fiber.App, service *weather.Service, apiKey string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	guarded := app.Group("", APIKeyRequired(apiKey))

	guarded.Post("/weather", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, requiredWeatherFields)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(c, requiredWeatherFields)
		}

		payload, err := service.Forecast(c.Context(), req.toForecastRequest())
		if err != nil {
			var apiErr *upstream.APIError
			if errors.As(err, &apiErr) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":   "API Error",
					"message": apiErr.Reason,
				})
			}
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	})

	guarded.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Query parameter is required")
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(c, "Query parameter is required")
		}

		results, err := service.Search(c.Context(), req.Query, req.Count)
		if err != nil {
			return internalError(c, err)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(results)
	})
}

// weatherRequest mirrors the /weather body. Pointer fields distinguish a
// missing latitude/longitude from a legitimate zero coordinate.
type weatherRequest struct {
	Latitude          *float64 `json:"latitude" validate:"required"`
	Longitude         *float64 `json:"longitude" validate:"required"`
	TemperatureUnit   string   `json:"temperature_unit" validate:"required"`
	WindspeedUnit     string   `json:"windspeed_unit" validate:"required"`
	PrecipitationUnit string   `json:"precipitation_unit" validate:"required"`
	Current           string   `json:"current" validate:"required"`
	Hourly            string   `json:"hourly" validate:"required"`
	Daily             string   `json:"daily" validate:"required"`
	Timezone          string   `json:"timezone" validate:"required"`
}

func (r weatherRequest) toForecastRequest() weather.ForecastRequest {
	return weather.ForecastRequest{
		Latitude:          *r.Latitude,
		Longitude:         *r.Longitude,
		TemperatureUnit:   r.TemperatureUnit,
		WindspeedUnit:     r.WindspeedUnit,
		PrecipitationUnit: r.PrecipitationUnit,
		Current:           r.Current,
		Hourly:            r.Hourly,
		Daily:             r.Daily,
		Timezone:          r.Timezone,
	}
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
	Count int    `json:"count"`
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Bad Request",
		"message": message,
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"message": err.Error(),
	})
}
