package service

import (
	"github.com/itchan-dev/textboard/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textboard_threads_created_total",
			Help: "Threads created, by board",
		},
		[]string{"board"},
	)

	postsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textboard_posts_created_total",
			Help: "Replies appended to existing threads",
		},
	)

	storageReadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textboard_storage_read_failures_total",
			Help: "Collection loads that failed and were served as empty",
		},
		[]string{"op"},
	)
)

func readFailed(op string, err error, args ...any) {
	storageReadFailures.WithLabelValues(op).Inc()
	logger.Log.Warn("storage read failed, serving empty "+op, append(args, "error", err)...)
}
