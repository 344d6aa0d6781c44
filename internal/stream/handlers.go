package stream

import (
	"encoding/json"
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
	"github.com/eruvierda/safe-commute/internal/report"
	"github.com/eruvierda/safe-commute/internal/warning"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// command is the client-to-server protocol for a warning session.
type command struct {
	Type string `json:"type"` // position | settings | dismiss

	// position
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`

	// settings
	Enabled    bool                `json:"enabled"`
	RadiusKm   float64             `json:"radius_km"`
	Categories []category.Category `json:"categories"`

	// dismiss
	ReportID string `json:"report_id"`
}

// Snapshotter is the read side of the live report cache.
type Snapshotter interface {
	Snapshot() []report.Report
}

func RegisterRoutes(r fiber.Router, hub *Hub, reports Snapshotter, policy report.Policy, defaults warning.Settings) {
	r.Get("/ws/:userID", websocket.New(func(c *websocket.Conn) {
		userID := c.Params("userID")
		client := hub.Register(userID)
		defer hub.Unregister(client)

		monitor := warning.NewMonitor(defaults, policy)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd command
			if err := json.Unmarshal(raw, &cmd); err != nil {
				continue
			}

			switch cmd.Type {
			case "position":
				sample := warning.Position{Lat: cmd.Lat, Lng: cmd.Lng, Timestamp: cmd.Timestamp}
				if sample.Timestamp.IsZero() {
					sample.Timestamp = time.Now()
				}
				if !monitor.UpdatePosition(sample) {
					continue
				}
			case "settings":
				enabled := map[category.Category]bool{}
				for _, cat := range cmd.Categories {
					if cat.Valid() {
						enabled[cat] = true
					}
				}
				monitor.Configure(warning.Settings{
					Enabled:    cmd.Enabled,
					RadiusKm:   cmd.RadiusKm,
					Categories: enabled,
				})
			case "dismiss":
				monitor.Dismiss(cmd.ReportID)
			default:
				continue
			}

			eval := monitor.Evaluate(reports.Snapshot(), time.Now())
			payload, err := json.Marshal(eval)
			if err != nil {
				continue
			}
			if eval.BecameActive {
				// The empty-to-active edge goes through the hub so every
				// session of this user hears the alert, wherever it connects.
				hub.Broadcast(userID, payload)
				continue
			}
			select {
			case client.Send <- payload:
			default:
			}
		}

		// Closing the send channel is what stops the writer.
		hub.Unregister(client)
		<-done
	}))
}
