package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ConnectorNotFoundError reports a connector whose charger does not exist or
// whose index falls outside the charger's connector range.
type ConnectorNotFoundError struct {
	Connector ConnectorID
}

func (e *ConnectorNotFoundError) Error() string {
	return fmt.Sprintf("connector %s not found", e.Connector)
}

// ConnectorInUseError reports a connector already held by an active session.
type ConnectorInUseError struct {
	Connector ConnectorID
}

func (e *ConnectorInUseError) Error() string {
	return fmt.Sprintf("connector %s is already in use", e.Connector)
}

// SessionNotFoundError reports a power update against an unknown session id.
type SessionNotFoundError struct {
	SessionID uuid.UUID
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}
