package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    EvalLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "allocdesk",
            Subsystem: "rules",
            Name:      "eval_seconds",
            Help:      "Latency of one allocation rule evaluation",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"rule"},
    )

    HistoryAppends = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "allocdesk",
            Subsystem: "history",
            Name:      "appends_total",
            Help:      "Rebalance records appended, by sink and result",
        },
        []string{"sink", "result"},
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(EvalLatency, HistoryAppends)
    })
}
