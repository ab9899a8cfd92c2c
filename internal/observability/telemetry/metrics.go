package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sems_active_sessions",
		Help: "Number of active charging sessions",
	})

	StationAllocatedPower = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sems_station_allocated_power_kw",
		Help: "Total power currently allocated to sessions in kW",
	})

	GridCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sems_grid_capacity_kw",
		Help: "Configured grid import capacity in kW",
	})

	SessionStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sems_session_starts_total",
		Help: "Session admission attempts",
	}, []string{"result"})

	SessionStopsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sems_session_stops_total",
		Help: "Session stop requests",
	})

	PowerUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sems_power_updates_total",
		Help: "Session telemetry power updates",
	}, []string{"result"})

	ConfigReplacementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sems_config_replacements_total",
		Help: "Station configuration replacements",
	})

	// Infrastructure metrics
	AllocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sems_allocation_duration_seconds",
		Help:    "Duration of one station allocator solve",
		Buckets: prometheus.DefBuckets,
	})
)
