package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activityCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracks",
		Subsystem: "feed",
		Name:      "activities_total",
		Help:      "The total number of activity entries recorded",
	}, []string{"action"})

	notificationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracks",
		Subsystem: "feed",
		Name:      "notifications_total",
		Help:      "The total number of notifications created",
	}, []string{"type"})
)
