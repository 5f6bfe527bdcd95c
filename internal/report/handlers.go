package report

import (
	"fmt"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterRoutes(r fiber.Router, store *appstate.Store, now func() time.Time) {
	r.Get("/sessions/export", func(c *fiber.Ctx) error {
		f, err := SessionsWorkbook(store.Snapshot().WorkoutSessions)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Attachment(fmt.Sprintf("sessions-%s.xlsx", now().Format("2006-01-02")))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	})
}
