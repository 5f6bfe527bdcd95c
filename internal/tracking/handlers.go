package tracking

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/runs", func(c *fiber.Ctx) error {
		var req StartRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		sum, err := svc.StartRun(c.Context(), req.ID)
		if err != nil {
			return runError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(sum)
	})

	r.Get("/runs/:id", func(c *fiber.Ctx) error {
		return respond(c)(svc.Summary(c.Params("id")))
	})

	r.Post("/runs/:id/distance", func(c *fiber.Ctx) error {
		var req DistanceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c)(svc.AddDistance(c.Params("id"), req.Km))
	})

	r.Post("/runs/:id/samples", func(c *fiber.Ctx) error {
		var req SampleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
		}
		return respond(c)(svc.AddSample(c.Params("id"), req.Point))
	})

	r.Post("/runs/:id/pause", func(c *fiber.Ctx) error {
		return respond(c)(svc.Pause(c.Params("id")))
	})

	r.Post("/runs/:id/resume", func(c *fiber.Ctx) error {
		return respond(c)(svc.Resume(c.Params("id")))
	})

	r.Post("/runs/:id/rest", func(c *fiber.Ctx) error {
		var req RestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Seconds <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "seconds must be positive")
		}
		return respond(c)(svc.StartRest(c.Params("id"), req.Seconds))
	})

	r.Post("/runs/:id/rest/skip", func(c *fiber.Ctx) error {
		return respond(c)(svc.SkipRest(c.Params("id")))
	})

	r.Delete("/runs/:id", func(c *fiber.Ctx) error {
		return respond(c)(svc.StopRun(c.Params("id")))
	})
}

func respond(c *fiber.Ctx) func(Summary, error) error {
	return func(sum Summary, err error) error {
		if err != nil {
			return runError(err)
		}
		return c.JSON(sum)
	}
}

func runError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidDistance):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
