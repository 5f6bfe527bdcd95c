package nutrition

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, diary *Diary) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(diary.Summary())
	})

	r.Post("/meals", func(c *fiber.Ctx) error {
		var req MealRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		meal, err := diary.AddMeal(Category(strings.ToLower(string(req.Category))), req.Foods)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(meal)
	})

	r.Post("/water", func(c *fiber.Ctx) error {
		var req WaterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
		}
		ml := req.Amount
		switch strings.ToLower(req.Unit) {
		case "", "ml":
		case "oz":
			ml *= MlPerOz
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unit must be ml or oz")
		}
		return c.JSON(diary.AddWater(ml))
	})
}
