package vote

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, ledger *Ledger, authMiddleware fiber.Handler) {
	r.Post("/reports/:id/votes", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Direction Direction `json:"direction"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		// Direction is validated here, before the ledger: a bad value is a
		// caller bug, not a ledger outcome.
		if !body.Direction.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "direction must be up or down")
		}

		userID, _ := c.Locals("user_id").(string)
		result, err := ledger.Apply(c.Context(), c.Params("id"), userID, body.Direction)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !result.Success {
			switch result.Message {
			case "authentication required":
				return c.Status(fiber.StatusUnauthorized).JSON(result)
			case "report not found":
				return c.Status(fiber.StatusNotFound).JSON(result)
			}
		}
		return c.JSON(result)
	})

	r.Get("/votes/history", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		votes, err := ledger.History(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if votes == nil {
			votes = []UserVote{}
		}
		return c.JSON(votes)
	})
}
