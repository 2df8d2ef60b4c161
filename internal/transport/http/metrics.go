package httptransport

import "expvar"

var (
	metricGameCreateTotal = expvar.NewInt("game_create_total")

	metricActionTotal  = expvar.NewInt("game_action_total")
	metricActionErrors = expvar.NewInt("game_action_errors_total")

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)
