// Package metrics collects prometheus counters for the session subsystem.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ggoodman/recharge-mcp-go/sessions"
)

// Collector implements sessions.Metrics on prometheus counters.
var _ sessions.Metrics = (*Collector)(nil)

type Collector struct {
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	sessionsCreated prometheus.Counter
	emailLookups    prometheus.Counter
	sweepRemoved    prometheus.Counter
	authRetries     prometheus.Counter
	securityBlocks  prometheus.Counter
}

// NewCollector registers the session counters on reg and returns the
// collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_session_cache_hits_total",
			Help: "Session token served from the in-memory cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_session_cache_misses_total",
			Help: "Session cache lookups that found no live token.",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_sessions_created_total",
			Help: "Customer sessions minted via the admin credential.",
		}),
		emailLookups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_customer_email_lookups_total",
			Help: "Admin lookups resolving an email to a customer id.",
		}),
		sweepRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_session_sweep_removed_total",
			Help: "Expired sessions removed by the periodic sweep.",
		}),
		authRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_session_auth_retries_total",
			Help: "Calls retried after a 401 invalidated a cached session.",
		}),
		securityBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_session_security_blocks_total",
			Help: "Requests refused to avoid unsafe default-session reuse.",
		}),
	}
	reg.MustRegister(
		c.cacheHits, c.cacheMisses, c.sessionsCreated, c.emailLookups,
		c.sweepRemoved, c.authRetries, c.securityBlocks,
	)
	return c
}

func (c *Collector) CacheHit()       { c.cacheHits.Inc() }
func (c *Collector) CacheMiss()      { c.cacheMisses.Inc() }
func (c *Collector) SessionCreated() { c.sessionsCreated.Inc() }
func (c *Collector) EmailLookup()    { c.emailLookups.Inc() }
func (c *Collector) AuthRetry()      { c.authRetries.Inc() }
func (c *Collector) SecurityBlock()  { c.securityBlocks.Inc() }

func (c *Collector) SweepRemoved(n int) { c.sweepRemoved.Add(float64(n)) }

// Handler serves the given registry over HTTP.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
