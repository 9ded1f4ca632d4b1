// Package health exposes the operational state of guarded remote calls.
//
// The package turns circuit breaker state into liveness and readiness
// signals. A Checker reports one component's Status (healthy, degraded,
// or unhealthy); the Aggregator runs a named set of checkers and reduces
// their results to a single Report; HTTP handlers serve that report on
// the conventional probe endpoints.
//
// # Reporting breaker state
//
// BreakerChecker maps per-endpoint circuit phases onto health: any open
// circuit is unhealthy, any half-open circuit is degraded.
//
//	check, err := health.NewBreakerChecker(caller.Breaker())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := check.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("circuits open: %s", result.Message)
//	}
//
// # Aggregating checks
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register("upstream_breaker", breakerChecker)
//	agg.Register("transport", health.CheckerFunc(pingTransport))
//
//	report := agg.Report(ctx)
//
// # Probe endpoints
//
// RegisterHandlers mounts the three conventional routes. A degraded
// report still answers 200 on /readyz so traffic is not drained while a
// circuit probes recovery.
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
