/*
Package observability exports debate metrics to Prometheus.

Metrics are fed by domain.LifecycleHooks and by a store middleware, so the
engine itself never depends on Prometheus:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, _ := agora.New(client, agora.WithLifecycleHooks(m.Hooks()))
*/
package observability
