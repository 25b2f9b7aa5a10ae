package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeFound    = "found"
	outcomeNoRoute  = "no_route"
	outcomeSameNode = "same_node"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	// searchTotal counts title searches by outcome
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wiki_router_search_total",
		Help: "Total route searches by outcome",
	}, []string{"outcome"})

	// searchDuration tracks engine time, excluding admission waits
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wiki_router_search_duration_seconds",
		Help:    "Route search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	})

	searchVisited = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wiki_router_search_visited_nodes",
		Help:    "Nodes expanded per route search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 13),
	})

	searchDiscovered = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wiki_router_search_discovered_nodes",
		Help:    "Nodes assigned a distance per route search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 13),
	})

	// routeDistance tracks the length of found routes
	routeDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wiki_router_route_distance",
		Help:    "Hop count of found routes",
		Buckets: prometheus.LinearBuckets(0, 1, 12),
	})

	admissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wiki_router_admission_rejections_total",
		Help: "Searches refused by admission control, by reason",
	}, []string{"reason"}) // "rate", "memory" or "too_large"

	inflightBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wiki_router_search_inflight_bytes",
		Help: "Query state bytes reserved by running searches",
	})
)

func observe(res *Result) {
	switch {
	case res.StartNotFound || res.EndNotFound:
		searchTotal.WithLabelValues(outcomeNotFound).Inc()
		return
	case res.SameNode:
		searchTotal.WithLabelValues(outcomeSameNode).Inc()
	case res.RouteFound:
		searchTotal.WithLabelValues(outcomeFound).Inc()
		routeDistance.Observe(float64(res.Distance))
	default:
		searchTotal.WithLabelValues(outcomeNoRoute).Inc()
	}
	searchDuration.Observe(res.Duration.Seconds())
	searchVisited.Observe(float64(res.Visited))
	searchDiscovered.Observe(float64(res.Discovered))
}
