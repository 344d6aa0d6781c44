package report

import (
	"github.com/eruvierda/safe-commute/internal/category"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Report
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		req.UserID = userID

		created, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		reports, err := svc.Active(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if reports == nil {
			reports = []Report{}
		}
		return c.JSON(reports)
	})

	r.Get("/mine", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		reports, err := svc.UserReports(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if reports == nil {
			reports = []Report{}
		}
		return c.JSON(reports)
	})

	r.Get("/categories", func(c *fiber.Ctx) error {
		type row struct {
			Value string `json:"value"`
			Label string `json:"label"`
			Color string `json:"color"`
		}
		var out []row
		for _, cat := range category.All() {
			info, _ := cat.Lookup()
			out = append(out, row{Value: string(cat), Label: info.Label, Color: info.Color})
		}
		return c.JSON(out)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rep, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "report not found")
		}
		return c.JSON(rep)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Category    category.Category `json:"category"`
			Description string            `json:"description"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)

		result, err := svc.Update(c.Context(), c.Params("id"), userID, body.Category, body.Description)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		result, err := svc.SoftDelete(c.Context(), c.Params("id"), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Post("/:id/resolve", authMiddleware, func(c *fiber.Ctx) error {
		result, err := svc.Resolve(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})
}
