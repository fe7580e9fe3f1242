package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewClientGolangRegistry builds a prometheus.Registry backed by a
// Collector, using github.com/prometheus/client_golang rather than the
// package's own hand-rolled text exporter. Every gauge and counter reads
// the Collector's atomics on scrape, so there is no separate bookkeeping
// to keep in sync.
func NewClientGolangRegistry(c *Collector, namespace string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels(c.labels)

	gauge := func(name, help string, get func(Snapshot) float64) {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help, ConstLabels: labels},
			func() float64 { return get(c.Snapshot()) },
		))
	}
	counter := func(name, help string, get func(Snapshot) float64) {
		reg.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help, ConstLabels: labels},
			func() float64 { return get(c.Snapshot()) },
		))
	}

	gauge("sessions_active", "Number of currently active sessions", func(s Snapshot) float64 { return float64(s.SessionsActive) })
	counter("sessions_total", "Total number of sessions created", func(s Snapshot) float64 { return float64(s.SessionsTotal) })
	counter("sessions_failed_total", "Total number of failed session attempts", func(s Snapshot) float64 { return float64(s.SessionsFailed) })

	counter("bytes_sent_total", "Total bytes sent", func(s Snapshot) float64 { return float64(s.BytesSent) })
	counter("bytes_received_total", "Total bytes received", func(s Snapshot) float64 { return float64(s.BytesReceived) })
	counter("messages_sent_total", "Total cascade messages sent", func(s Snapshot) float64 { return float64(s.MessagesSent) })
	counter("messages_received_total", "Total cascade messages received", func(s Snapshot) float64 { return float64(s.MessagesRecv) })

	counter("replay_attacks_blocked_total", "Total replay attacks blocked", func(s Snapshot) float64 { return float64(s.ReplayAttacksBlocked) })
	counter("auth_failures_total", "Total authentication failures", func(s Snapshot) float64 { return float64(s.AuthFailures) })

	counter("directory_records_published_total", "Total peer records published", func(s Snapshot) float64 { return float64(s.RecordsPublished) })
	counter("directory_lookup_hits_total", "Total directory lookups that found a live record", func(s Snapshot) float64 { return float64(s.LookupHits) })
	counter("directory_lookup_misses_total", "Total directory lookups with no live record", func(s Snapshot) float64 { return float64(s.LookupMisses) })
	counter("directory_records_expired_total", "Total peer records evicted after TTL expiry", func(s Snapshot) float64 { return float64(s.RecordsExpired) })

	counter("handshake_rate_limits_total", "Total handshake attempts rejected by the rate limiter", func(s Snapshot) float64 { return float64(s.HandshakeRateLimits) })
	counter("lookup_rate_limits_total", "Total directory lookups rejected by the rate limiter", func(s Snapshot) float64 { return float64(s.LookupRateLimits) })

	counter("encrypt_errors_total", "Total encryption errors", func(s Snapshot) float64 { return float64(s.EncryptErrors) })
	counter("decrypt_errors_total", "Total decryption errors", func(s Snapshot) float64 { return float64(s.DecryptErrors) })
	counter("protocol_errors_total", "Total protocol errors", func(s Snapshot) float64 { return float64(s.ProtocolErrors) })

	gauge("uptime_seconds", "Time since the collector was created", func(s Snapshot) float64 { return s.Uptime.Seconds() })

	return reg
}

// ClientGolangHandler returns an http.Handler serving metrics through the
// real client_golang registry and promhttp exposition format.
func ClientGolangHandler(c *Collector, namespace string) http.Handler {
	reg := NewClientGolangRegistry(c, namespace)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
