package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// StationConfig describes one physical site with a single grid connection.
// It is immutable after load; changing it means replacing the whole station
// state.
type StationConfig struct {
	StationID string `json:"stationId" mapstructure:"stationId"`
	// Grid capacity in kW
	GridCapacity int             `json:"gridCapacity" mapstructure:"gridCapacity"`
	Chargers     []ChargerConfig `json:"chargers" mapstructure:"chargers"`
	// Battery is declared in the configuration but not consumed by the
	// allocator. It must round-trip, including an explicit null.
	Battery *Battery `json:"battery" mapstructure:"battery"`
}

// ChargerConfig describes one hardware unit with a power rating shared across
// its connectors.
type ChargerConfig struct {
	ID string `json:"id" mapstructure:"id"`
	// Maximum power in kW, shared between the charger's connectors
	MaxPower int `json:"maxPower" mapstructure:"maxPower"`
	// Number of physical outlets; valid connector indices are 1..Connectors
	Connectors int `json:"connectors" mapstructure:"connectors"`
}

// Battery describes the stationary battery system of the station.
type Battery struct {
	// Initial capacity in kWh
	InitialCapacity int `json:"initialCapacity" mapstructure:"initialCapacity"`
	// Maximum charge and discharge power in kW
	Power int `json:"power" mapstructure:"power"`
}

// ConnectorID identifies one physical outlet. Equality is structural.
type ConnectorID struct {
	ChargerID string `json:"chargerId" mapstructure:"chargerId"`
	Idx       int    `json:"idx" mapstructure:"idx"`
}

func (c ConnectorID) String() string {
	return fmt.Sprintf("%s:%d", c.ChargerID, c.Idx)
}

// Session is one vehicle's ongoing use of one connector.
type Session struct {
	SessionID   uuid.UUID   `json:"sessionId"`
	ConnectorID ConnectorID `json:"connectorId"`
	// Current authorized draw in kW
	AllocatedPower int `json:"allocatedPower"`
	// Vehicle-declared upper bound on its acceptance rate in kW
	VehicleMaxPower int `json:"vehicleMaxPower"`
}

// NewSession mints a session with a fresh UUIDv4 and no power allocated yet.
// Allocation happens through the station state.
func NewSession(connector ConnectorID, vehicleMaxPower int) Session {
	return Session{
		SessionID:       uuid.New(),
		ConnectorID:     connector,
		AllocatedPower:  0,
		VehicleMaxPower: vehicleMaxPower,
	}
}

// Validate reports the first structural problem in the configuration.
// A failing configuration is fatal at load time and rejected on replacement.
func (c *StationConfig) Validate() error {
	if c.GridCapacity < 0 {
		return fmt.Errorf("gridCapacity must be non-negative, got %d", c.GridCapacity)
	}
	seen := make(map[string]struct{}, len(c.Chargers))
	for _, charger := range c.Chargers {
		if charger.ID == "" {
			return fmt.Errorf("charger with empty id")
		}
		if _, dup := seen[charger.ID]; dup {
			return fmt.Errorf("duplicate charger id %q", charger.ID)
		}
		seen[charger.ID] = struct{}{}
		if charger.MaxPower < 0 {
			return fmt.Errorf("charger %s: maxPower must be non-negative, got %d", charger.ID, charger.MaxPower)
		}
		if charger.Connectors < 1 {
			return fmt.Errorf("charger %s: connectors must be at least 1, got %d", charger.ID, charger.Connectors)
		}
	}
	return nil
}
