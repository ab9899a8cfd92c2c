package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/electra-charging/sems/internal/domain"
	"github.com/electra-charging/sems/internal/service/station"
)

// CreateSessionRequest is the wire shape of POST /sessions.
type CreateSessionRequest struct {
	ConnectorID     domain.ConnectorID `json:"connectorId"`
	VehicleMaxPower int                `json:"vehicleMaxPower"`
}

// PowerUpdateRequest is the wire shape of POST /sessions/:id/power-update.
type PowerUpdateRequest struct {
	ConsumedPower int `json:"consumedPower"`
}

// SessionResponse wraps the session view returned by mutating operations.
type SessionResponse struct {
	Session domain.Session `json:"session"`
}

type SessionHandler struct {
	state *station.State
	log   *zap.Logger
}

func NewSessionHandler(state *station.State, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		state: state,
		log:   log,
	}
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.VehicleMaxPower < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicleMaxPower must be non-negative"})
	}

	sess, err := h.state.StartSession(req.ConnectorID, req.VehicleMaxPower)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(SessionResponse{Session: sess})
}

// Stop is idempotent: unknown and malformed session ids still return 204.
func (h *SessionHandler) Stop(c *fiber.Ctx) error {
	if sessionID, err := uuid.Parse(c.Params("id")); err == nil {
		h.state.StopSession(sessionID)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) PowerUpdate(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return sessionError(c, &domain.SessionNotFoundError{})
	}

	var req PowerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.ConsumedPower < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "consumedPower must be non-negative"})
	}

	sess, err := h.state.PowerUpdate(sessionID, req.ConsumedPower)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(SessionResponse{Session: sess})
}

// sessionError maps the three domain error kinds onto their HTTP statuses.
func sessionError(c *fiber.Ctx, err error) error {
	var (
		connectorNotFound *domain.ConnectorNotFoundError
		connectorInUse    *domain.ConnectorInUseError
		sessionNotFound   *domain.SessionNotFoundError
	)
	code := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &connectorNotFound), errors.As(err, &sessionNotFound):
		code = fiber.StatusNotFound
	case errors.As(err, &connectorInUse):
		code = fiber.StatusConflict
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
