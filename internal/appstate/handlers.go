package appstate

import (
	"errors"
	"strconv"
	"time"

	"github.com/Pritam-2002/firness-track/internal/schedule"

	"github.com/gofiber/fiber/v2"
)

type rescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

type startSessionRequest struct {
	TemplateID         string `json:"template_id"`
	ScheduledWorkoutID string `json:"scheduled_workout_id"`
}

type completeSessionRequest struct {
	Notes string `json:"notes"`
}

type loadingRequest struct {
	Loading bool `json:"loading"`
}

func RegisterRoutes(r fiber.Router, store *Store, now func() time.Time) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(store.Snapshot())
	})

	r.Put("/profile", func(c *fiber.Ctx) error {
		var req UserProfile
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		store.SetUserProfile(req)
		return c.JSON(req)
	})

	r.Put("/goals", func(c *fiber.Ctx) error {
		var req FitnessGoals
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		store.SetFitnessGoals(req)
		return c.JSON(req)
	})

	r.Post("/workouts", func(c *fiber.Ctx) error {
		var req WorkoutData
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(store.LogWorkoutData(req))
	})

	r.Post("/templates", func(c *fiber.Ctx) error {
		var req WorkoutTemplate
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		return c.Status(fiber.StatusCreated).JSON(store.CreateWorkoutTemplate(req))
	})

	r.Get("/templates/:id", func(c *fiber.Ctx) error {
		t, ok := store.Template(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "template not found")
		}
		return c.JSON(t)
	})

	r.Get("/slots", func(c *fiber.Ctx) error {
		t := now()
		date := c.Query("date", t.Format(schedule.DateLayout))
		if _, err := schedule.ParseDate(date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		selected, err := schedule.Resolve(c.Query("selected", "18:00"), schedule.DefaultSlots, date, t)
		if err != nil && !errors.Is(err, schedule.ErrSlotUnavailable) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"days":      schedule.NextDays(t, 7),
			"date":      date,
			"available": schedule.Available(schedule.DefaultSlots, date, t),
			"selected":  selected,
		})
	})

	r.Post("/scheduled", func(c *fiber.Ctx) error {
		var req ScheduledWorkout
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.TemplateID == "" && req.Template.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "template_id required")
		}
		if err := schedule.Validate(req.ScheduledDate, req.ScheduledTime, now()); err != nil {
			return slotError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(store.ScheduleWorkout(req))
	})

	r.Delete("/scheduled/:id", func(c *fiber.Ctx) error {
		if !store.CancelScheduledWorkout(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "scheduled workout not found or closed")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Patch("/scheduled/:id", func(c *fiber.Ctx) error {
		var req rescheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := schedule.Validate(req.ScheduledDate, req.ScheduledTime, now()); err != nil {
			return slotError(err)
		}
		id := c.Params("id")
		if !store.RescheduleWorkout(id, req.ScheduledDate, req.ScheduledTime) {
			return fiber.NewError(fiber.StatusNotFound, "scheduled workout not found or closed")
		}
		sw, _ := store.ScheduledWorkout(id)
		return c.JSON(sw)
	})

	r.Post("/scheduled/:id/complete", func(c *fiber.Ctx) error {
		return markResponse(c, store, store.MarkScheduledWorkoutCompleted)
	})

	r.Post("/scheduled/:id/missed", func(c *fiber.Ctx) error {
		return markResponse(c, store, store.MarkScheduledWorkoutMissed)
	})

	r.Post("/session", func(c *fiber.Ctx) error {
		var req startSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		templateID := req.TemplateID
		if templateID == "" && req.ScheduledWorkoutID != "" {
			if sw, ok := store.ScheduledWorkout(req.ScheduledWorkoutID); ok {
				templateID = sw.TemplateID
			}
		}
		t, ok := store.Template(templateID)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "template not found")
		}
		ws := store.StartWorkoutSession(NewSessionFromTemplate(t, req.ScheduledWorkoutID, now()))
		return c.Status(fiber.StatusCreated).JSON(ws)
	})

	r.Put("/session", func(c *fiber.Ctx) error {
		var req WorkoutSession
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		store.UpdateWorkoutSession(req)
		return c.JSON(req)
	})

	r.Post("/session/exercises/:index/sets", func(c *fiber.Ctx) error {
		var rest int
		ws, err := editExercise(c, store, func(ws *WorkoutSession, i int) {
			rest = ws.CompleteSet(i)
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"session": ws, "rest_seconds": rest})
	})

	r.Post("/session/exercises/:index/toggle", func(c *fiber.Ctx) error {
		ws, err := editExercise(c, store, func(ws *WorkoutSession, i int) {
			ws.ToggleExercise(i)
		})
		if err != nil {
			return err
		}
		return c.JSON(ws)
	})

	r.Post("/session/complete", func(c *fiber.Ctx) error {
		var req completeSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		end := now()
		ws, ok := store.CompleteCurrentSession(func(ws *WorkoutSession) {
			if req.Notes != "" {
				ws.Notes = req.Notes
			}
			ws.Finish(end)
		})
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no session in progress")
		}
		return c.JSON(ws)
	})

	r.Put("/loading", func(c *fiber.Ctx) error {
		var req loadingRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		store.SetLoading(req.Loading)
		return c.JSON(req)
	})

	r.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(SessionStats(store.Snapshot().WorkoutSessions))
	})

	r.Post("/flush", func(c *fiber.Ctx) error {
		if err := store.Flush(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func slotError(err error) error {
	if errors.Is(err, schedule.ErrSlotUnavailable) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

func markResponse(c *fiber.Ctx, store *Store, mark func(string) bool) error {
	id := c.Params("id")
	if !mark(id) {
		return fiber.NewError(fiber.StatusNotFound, "scheduled workout not found or closed")
	}
	sw, _ := store.ScheduledWorkout(id)
	return c.JSON(sw)
}

// editExercise applies fn to exercise :index of the current session as one
// store transition.
func editExercise(c *fiber.Ctx, store *Store, fn func(ws *WorkoutSession, i int)) (WorkoutSession, error) {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil || i < 0 {
		return WorkoutSession{}, fiber.NewError(fiber.StatusBadRequest, "invalid exercise index")
	}
	badIndex := false
	ws, ok := store.UpdateCurrentSession(func(ws *WorkoutSession) bool {
		if i >= len(ws.Exercises) {
			badIndex = true
			return false
		}
		fn(ws, i)
		return true
	})
	if badIndex {
		return WorkoutSession{}, fiber.NewError(fiber.StatusBadRequest, "invalid exercise index")
	}
	if !ok {
		return WorkoutSession{}, fiber.NewError(fiber.StatusNotFound, "no session in progress")
	}
	return ws, nil
}
