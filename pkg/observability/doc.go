/*
Package observability provides lifecycle hooks for monitoring the Arbor engine.

Metrics records Prometheus counters and histograms for node visits and
evaluations. LoggingHooks writes the same events to a structured logger.
Combine merges several hook sets so both can be installed at once:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, err := arbor.New(doc, arbor.WithLifecycleHooks(
		observability.Combine(m.Hooks(), observability.LoggingHooks(logger)),
	))
*/
package observability
