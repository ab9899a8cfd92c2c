package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/electra-charging/sems/internal/domain"
	"github.com/electra-charging/sems/internal/service/station"
)

// StationStatusResponse is the wire shape of GET /station/status.
type StationStatusResponse struct {
	Sessions map[string]domain.Session `json:"sessions"`
}

type StationHandler struct {
	state *station.State
	log   *zap.Logger
}

func NewStationHandler(state *station.State, log *zap.Logger) *StationHandler {
	return &StationHandler{
		state: state,
		log:   log,
	}
}

func (h *StationHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(h.state.Config())
}

// UpdateConfig replaces the station configuration. This drops every active
// session.
func (h *StationHandler) UpdateConfig(c *fiber.Ctx) error {
	var cfg domain.StationConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	h.state.ReplaceConfig(cfg)
	return c.JSON(cfg)
}

func (h *StationHandler) Status(c *fiber.Ctx) error {
	snapshot := h.state.Sessions()
	sessions := make(map[string]domain.Session, len(snapshot))
	for id, sess := range snapshot {
		sessions[id.String()] = sess
	}
	return c.JSON(StationStatusResponse{Sessions: sessions})
}
