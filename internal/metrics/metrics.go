package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var (
	friendMetricsOnce sync.Once

	friendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Total number of friend request attempts",
		},
		[]string{"status"},
	)

	friendAcceptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_accepts_total",
			Help: "Total number of friend request accept attempts",
		},
		[]string{"status"},
	)

	friendRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_rejects_total",
			Help: "Total number of friend request reject attempts",
		},
		[]string{"status"},
	)

	unfriendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_removals_total",
			Help: "Total number of unfriend attempts",
		},
		[]string{"status"},
	)

	presenceUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_updates_total",
			Help: "Total number of coworking status updates",
		},
		[]string{"status"},
	)
)

func RegisterFriendMetrics() {
	friendMetricsOnce.Do(func() {
		prometheus.MustRegister(friendRequestsTotal, friendAcceptsTotal, friendRejectsTotal, unfriendsTotal, presenceUpdatesTotal)
	})
}

func IncFriendRequest(status string) {
	RegisterFriendMetrics()
	friendRequestsTotal.WithLabelValues(status).Inc()
}

func IncFriendAccept(status string) {
	RegisterFriendMetrics()
	friendAcceptsTotal.WithLabelValues(status).Inc()
}

func IncFriendReject(status string) {
	RegisterFriendMetrics()
	friendRejectsTotal.WithLabelValues(status).Inc()
}

func IncUnfriend(status string) {
	RegisterFriendMetrics()
	unfriendsTotal.WithLabelValues(status).Inc()
}

func IncPresenceUpdate(status string) {
	RegisterFriendMetrics()
	presenceUpdatesTotal.WithLabelValues(status).Inc()
}
