package coach

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/messages", func(c *fiber.Ctx) error {
		return c.JSON(svc.Messages())
	})

	r.Post("/messages", func(c *fiber.Ctx) error {
		var req SendRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		resp, err := svc.Send(c.UserContext(), req.Text)
		if errors.Is(err, ErrEmptyMessage) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	})
}
