package route

import (
	"context"
	"time"

	"github.com/eruvierda/safe-commute/internal/report"

	"github.com/gofiber/fiber/v2"
)

// Fetcher is the routing backend; satisfied by *Client.
type Fetcher interface {
	FetchRoute(ctx context.Context, originLat, originLng, destLat, destLng float64) (*Route, error)
}

// Snapshotter supplies the live report set to match hazards against.
type Snapshotter interface {
	Snapshot() []report.Report
}

func RegisterRoutes(r fiber.Router, fetcher Fetcher, reports Snapshotter, policy report.Policy, bufferKm float64) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			OriginLat float64 `json:"origin_lat"`
			OriginLng float64 `json:"origin_lng"`
			DestLat   float64 `json:"dest_lat"`
			DestLng   float64 `json:"dest_lng"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		found, err := fetcher.FetchRoute(c.Context(), req.OriginLat, req.OriginLng, req.DestLat, req.DestLng)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		now := time.Now()
		live := make([]report.Report, 0)
		for _, rep := range reports.Snapshot() {
			if policy.IsActive(rep, now) {
				live = append(live, rep)
			}
		}

		return c.JSON(fiber.Map{
			"route":   found,
			"hazards": MatchHazards(found.Points, live, bufferKm),
		})
	})
}
