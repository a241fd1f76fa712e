package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/covid-dashboard/internal/chart"
	"github.com/i474232898/covid-dashboard/internal/covid"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *covid.Service, charts chart.Options) {
	v1 := app.Group("/api/v1")

	v1.Get("/selection", func(c *fiber.Ctx) error {
		return c.JSON(service.Selection())
	})

	v1.Put("/selection", func(c *fiber.Ctx) error {
		var req selectionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Country = strings.TrimSpace(req.Country)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.SelectCountry(c.UserContext(), req.Country)
		if err != nil {
			return toHTTPError(err, "no timeline for requested country", "failed to fetch timeline")
		}
		return c.JSON(view)
	})

	v1.Get("/timeline", func(c *fiber.Ctx) error {
		country, err := parseCountryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.Timeline(c.UserContext(), country)
		if err != nil {
			return toHTTPError(err, "no timeline for requested country", "failed to fetch timeline")
		}
		return c.JSON(view)
	})

	v1.Get("/countries", func(c *fiber.Ctx) error {
		cards, err := service.Countries(c.UserContext())
		if err != nil {
			return toHTTPError(err, "no country data available", "failed to fetch countries")
		}
		return c.JSON(cards)
	})

	v1.Get("/comparison", func(c *fiber.Ctx) error {
		set, err := service.Comparison(c.UserContext())
		if err != nil {
			return toHTTPError(err, "no comparison data available", "failed to fetch comparison")
		}
		return c.JSON(set)
	})

	v1.Put("/comparison", func(c *fiber.Ctx) error {
		var req comparisonRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		for i := range req.Countries {
			req.Countries[i] = strings.TrimSpace(req.Countries[i])
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		set, err := service.SetComparison(c.UserContext(), req.Countries)
		if err != nil {
			return toHTTPError(err, "no comparison data available", "failed to fetch comparison")
		}
		return c.JSON(set)
	})

	v1.Get("/charts/timeline.png", func(c *fiber.Ctx) error {
		country, err := parseCountryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.Timeline(c.UserContext(), country)
		if err != nil {
			return toHTTPError(err, "no timeline for requested country", "failed to fetch timeline")
		}

		var buf bytes.Buffer
		if err := chart.RenderTimeline(&buf, view, charts); err != nil {
			return toHTTPError(err, "", "failed to render chart")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})

	v1.Get("/charts/comparison.png", func(c *fiber.Ctx) error {
		set, err := service.Comparison(c.UserContext())
		if err != nil {
			return toHTTPError(err, "no comparison data available", "failed to fetch comparison")
		}

		var buf bytes.Buffer
		if err := chart.RenderComparison(&buf, set, charts); err != nil {
			return toHTTPError(err, "", "failed to render chart")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})
}

// selectionRequest is the body of PUT /selection.
type selectionRequest struct {
	Country string `json:"country" validate:"required,max=64"`
}

// comparisonRequest is the body of PUT /comparison.
type comparisonRequest struct {
	Countries []string `json:"countries" validate:"required,min=1,max=20,dive,required,max=64"`
}

// parseCountryQuery reads the optional country query parameter.
// An empty value means the selected country.
func parseCountryQuery(c *fiber.Ctx) (string, error) {
	country := strings.TrimSpace(c.Query("country"))
	if err := validate.Var(country, "omitempty,max=64"); err != nil {
		return "", err
	}
	return country, nil
}

func toHTTPError(err error, notFoundMsg, failMsg string) error {
	switch {
	case errors.Is(err, covid.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, chart.ErrNotEnoughData):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, covid.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, covid.ErrNoSource):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, failMsg)
	default:
		return fiber.NewError(fiber.StatusBadGateway, failMsg)
	}
}
