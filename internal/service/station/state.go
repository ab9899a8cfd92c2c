package station

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/electra-charging/sems/internal/domain"
	"github.com/electra-charging/sems/internal/observability/telemetry"
)

// State owns the session registry and the charger table for one station.
// All mutations run under a single exclusive lock; the allocator solve is pure
// CPU and sub-millisecond at realistic station sizes, so one lock over the
// whole state is sufficient.
type State struct {
	mu       sync.Mutex
	config   domain.StationConfig
	chargers map[string]domain.ChargerConfig
	sessions map[uuid.UUID]domain.Session
	log      *zap.Logger
}

// NewState builds a station state with an empty session registry. The charger
// table is derived once from the configuration and treated as immutable until
// the configuration is replaced.
func NewState(config domain.StationConfig, log *zap.Logger) *State {
	s := &State{log: log}
	s.install(config)
	return s
}

func (s *State) install(config domain.StationConfig) {
	chargers := make(map[string]domain.ChargerConfig, len(config.Chargers))
	for _, charger := range config.Chargers {
		chargers[charger.ID] = charger
	}
	s.config = config
	s.chargers = chargers
	s.sessions = make(map[uuid.UUID]domain.Session)

	telemetry.GridCapacity.Set(float64(config.GridCapacity))
	telemetry.ActiveSessions.Set(0)
	telemetry.StationAllocatedPower.Set(0)
}

// Config returns the installed station configuration.
func (s *State) Config() domain.StationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Sessions returns a snapshot of the session registry.
func (s *State) Sessions() map[uuid.UUID]domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]domain.Session, len(s.sessions))
	for id, sess := range s.sessions {
		out[id] = sess
	}
	return out
}

// ReplaceConfig installs a new configuration. All sessions are dropped; this
// is the only way to change the grid capacity or the charger table.
func (s *State) ReplaceConfig(config domain.StationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := len(s.sessions)
	s.install(config)
	telemetry.ConfigReplacementsTotal.Inc()
	s.log.Info("station configuration replaced",
		zap.String("stationId", config.StationID),
		zap.Int("gridCapacity", config.GridCapacity),
		zap.Int("chargers", len(config.Chargers)),
		zap.Int("droppedSessions", dropped),
	)
}

// StartSession admits a vehicle on a connector and returns the session with
// its initial allocation. The allocation is the whole-station fair share,
// clamped by the capacity still unclaimed before admission so that peers whose
// shares shrank, but who have not been notified yet, cannot cause a transient
// over-draw.
func (s *State) StartSession(connector domain.ConnectorID, vehicleMaxPower int) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	charger, ok := s.chargers[connector.ChargerID]
	if !ok || connector.Idx < 1 || connector.Idx > charger.Connectors {
		telemetry.SessionStartsTotal.WithLabelValues("connector_not_found").Inc()
		return domain.Session{}, &domain.ConnectorNotFoundError{Connector: connector}
	}
	for _, sess := range s.sessions {
		if sess.ConnectorID == connector {
			telemetry.SessionStartsTotal.WithLabelValues("connector_in_use").Inc()
			return domain.Session{}, &domain.ConnectorInUseError{Connector: connector}
		}
	}

	// Capacity still unclaimed before admission. chargerRemaining is already
	// capped by the station remainder.
	hardcap := s.chargerRemainingLocked(connector.ChargerID)

	newSession := domain.NewSession(connector, vehicleMaxPower)
	solveStart := time.Now()
	allocated := AllocateForNewSession(s.sessions, s.chargers, s.config.GridCapacity, hardcap, newSession)
	telemetry.AllocationDuration.Observe(time.Since(solveStart).Seconds())

	s.sessions[allocated.SessionID] = allocated
	s.refreshGaugesLocked()
	telemetry.SessionStartsTotal.WithLabelValues("ok").Inc()
	s.log.Info("session started",
		zap.String("sessionId", allocated.SessionID.String()),
		zap.String("connector", connector.String()),
		zap.Int("vehicleMaxPower", vehicleMaxPower),
		zap.Int("allocatedPower", allocated.AllocatedPower),
		zap.Int("hardcap", hardcap),
	)
	return allocated, nil
}

// StopSession removes a session. Silent if the id is unknown. Other sessions
// keep their allocations until their own next power update.
func (s *State) StopSession(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.refreshGaugesLocked()
	telemetry.SessionStopsTotal.Inc()
	if ok {
		s.log.Info("session stopped",
			zap.String("sessionId", sessionID.String()),
			zap.String("connector", sess.ConnectorID.String()),
			zap.Int("releasedPower", sess.AllocatedPower),
		)
	}
}

// PowerUpdate processes a telemetry level signal from a session. A draw below
// the current allocation lowers the vehicle maximum (the vehicle is declaring
// it will not use more, freeing headroom). The session is then re-solved
// against the whole station; the result is floored at the declared draw (the
// grid is already sustaining it, and this is the session responding) and
// capped by the charger remainder plus the session's own current holding, so
// growth never claims capacity unresponded peers still hold.
func (s *State) PowerUpdate(sessionID uuid.UUID, consumedPower int) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[sessionID]
	if !ok {
		telemetry.PowerUpdatesTotal.WithLabelValues("session_not_found").Inc()
		return domain.Session{}, &domain.SessionNotFoundError{SessionID: sessionID}
	}

	working := current
	if consumedPower < working.AllocatedPower {
		working.VehicleMaxPower = consumedPower
	}

	// The session's own kW are not double-counted against itself.
	hardcap := s.chargerRemainingLocked(current.ConnectorID.ChargerID) + current.AllocatedPower

	solveStart := time.Now()
	updated := AllocateForNewSession(s.sessions, s.chargers, s.config.GridCapacity, hardcap, working)
	telemetry.AllocationDuration.Observe(time.Since(solveStart).Seconds())

	if updated.AllocatedPower < consumedPower {
		updated.AllocatedPower = consumedPower
	}
	updated.AllocatedPower = min(updated.AllocatedPower, updated.VehicleMaxPower, hardcap)

	s.sessions[sessionID] = updated
	s.refreshGaugesLocked()
	telemetry.PowerUpdatesTotal.WithLabelValues("ok").Inc()
	s.log.Info("session power updated",
		zap.String("sessionId", sessionID.String()),
		zap.String("connector", updated.ConnectorID.String()),
		zap.Int("consumedPower", consumedPower),
		zap.Int("allocatedPower", updated.AllocatedPower),
		zap.Int("vehicleMaxPower", updated.VehicleMaxPower),
	)
	return updated, nil
}

// stationAllocatedLocked is the sum of all allocated power.
func (s *State) stationAllocatedLocked() int {
	total := 0
	for _, sess := range s.sessions {
		total += sess.AllocatedPower
	}
	return total
}

// stationRemainingLocked is the grid capacity minus the allocated total,
// saturating at zero.
func (s *State) stationRemainingLocked() int {
	return max(0, s.config.GridCapacity-s.stationAllocatedLocked())
}

// chargerRemainingLocked is the charger rating minus its allocated sum, capped
// by the station remainder and saturating at zero. Unknown chargers have no
// remaining capacity.
func (s *State) chargerRemainingLocked(chargerID string) int {
	charger, ok := s.chargers[chargerID]
	if !ok {
		return 0
	}
	allocated := 0
	for _, sess := range s.sessions {
		if sess.ConnectorID.ChargerID == chargerID {
			allocated += sess.AllocatedPower
		}
	}
	return min(max(0, charger.MaxPower-allocated), s.stationRemainingLocked())
}

func (s *State) refreshGaugesLocked() {
	telemetry.ActiveSessions.Set(float64(len(s.sessions)))
	telemetry.StationAllocatedPower.Set(float64(s.stationAllocatedLocked()))
}
