package station

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/electra-charging/sems/internal/domain"
)

// allocateConnector water-fills a charger ceiling across the sessions plugged
// into that charger. Allocations are rebuilt from zero: each round the
// remaining ceiling is split equally between the sessions still below their
// vehicle maximum, clamping each at its maximum. The loop ends when the
// ceiling is exhausted, every session is saturated, or the integer fair share
// rounds to zero (at most one kW per under-max session stays unassigned).
func allocateConnector(sessions []domain.Session, chargerCeiling int) []domain.Session {
	out := make([]domain.Session, len(sessions))
	copy(out, sessions)
	for i := range out {
		out[i].AllocatedPower = 0
	}

	for {
		allocated := 0
		under := 0
		for _, s := range out {
			allocated += s.AllocatedPower
			if s.AllocatedPower < s.VehicleMaxPower {
				under++
			}
		}
		remaining := chargerCeiling - allocated
		if remaining <= 0 || under == 0 {
			break
		}
		fair := remaining / under
		if fair == 0 {
			break
		}
		for i := range out {
			if out[i].AllocatedPower < out[i].VehicleMaxPower {
				out[i].AllocatedPower = min(out[i].AllocatedPower+fair, out[i].VehicleMaxPower)
			}
		}
	}
	return out
}

// AllocateStation recomputes every session's allocated power from scratch
// under the station ceiling. Two-level water-filling: each round the station
// remainder is split between active chargers proportionally to their count of
// under-max sessions, each charger's award is capped at its hardware rating,
// and the award is water-filled across the charger's connectors.
//
// Sessions bound to chargers missing from the charger table are dropped from
// the result; the station state never lets such a session exist.
//
// The result is a pure function of the input: calling AllocateStation on its
// own output yields the same allocations.
func AllocateStation(sessions map[uuid.UUID]domain.Session, chargers map[string]domain.ChargerConfig, stationCeiling int) map[uuid.UUID]domain.Session {
	// Group sessions per charger, allocations reset.
	byCharger := make(map[string][]domain.Session, len(chargers))
	for _, charger := range chargers {
		var group []domain.Session
		for _, s := range sessions {
			if s.ConnectorID.ChargerID == charger.ID {
				s.AllocatedPower = 0
				group = append(group, s)
			}
		}
		if len(group) > 0 {
			byCharger[charger.ID] = group
		}
	}

	for {
		total := 0
		for _, group := range byCharger {
			total += groupAllocated(group)
		}
		remaining := stationCeiling - total
		if remaining <= 0 {
			break
		}

		// Chargers below their rating that still host unsaturated sessions,
		// with their under-max session counts.
		underByCharger := make(map[string]int, len(byCharger))
		demand := 0
		for id, group := range byCharger {
			if groupAllocated(group) >= chargers[id].MaxPower {
				continue
			}
			under := 0
			for _, s := range group {
				if s.AllocatedPower < s.VehicleMaxPower {
					under++
				}
			}
			if under == 0 {
				continue
			}
			underByCharger[id] = under
			demand += under
		}
		if demand == 0 {
			break
		}
		share := remaining / demand
		if share == 0 {
			break
		}

		for id, under := range underByCharger {
			group := byCharger[id]
			target := min(groupAllocated(group)+share*under, chargers[id].MaxPower)
			byCharger[id] = allocateConnector(group, target)
		}

		// A connector refill can leave a charger's sum stuck strictly below
		// its target when the per-session fair share rounds to zero (odd
		// rating over an even session count, say). The station remainder then
		// never shrinks; break as soon as a round assigns nothing.
		next := 0
		for _, group := range byCharger {
			next += groupAllocated(group)
		}
		if next == total {
			break
		}
	}

	out := make(map[uuid.UUID]domain.Session, len(sessions))
	for _, group := range byCharger {
		for _, s := range group {
			out[s.SessionID] = s
		}
	}
	return out
}

// AllocateForNewSession solves the whole station with newSession included and
// returns the new session's share, clamped to hardcap. The other sessions'
// recomputed values are discarded: their ceilings are advisory until their own
// next power update, and the hardcap keeps the newcomer from claiming capacity
// the peers have not yet released.
func AllocateForNewSession(sessions map[uuid.UUID]domain.Session, chargers map[string]domain.ChargerConfig, gridCapacity, hardcap int, newSession domain.Session) domain.Session {
	working := make(map[uuid.UUID]domain.Session, len(sessions)+1)
	for id, s := range sessions {
		working[id] = s
	}
	working[newSession.SessionID] = newSession

	solved := AllocateStation(working, chargers, gridCapacity)
	out, ok := solved[newSession.SessionID]
	if !ok {
		panic(fmt.Sprintf("station allocator lost session %s it was given", newSession.SessionID))
	}
	out.AllocatedPower = min(out.AllocatedPower, hardcap)
	return out
}

func groupAllocated(group []domain.Session) int {
	total := 0
	for _, s := range group {
		total += s.AllocatedPower
	}
	return total
}
