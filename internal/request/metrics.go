package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK             = "ok"
	outcomeRejected       = "rejected"
	outcomeSuperseded     = "superseded"
	outcomeTransportError = "transport_error"
	outcomeParseError     = "parse_error"
	outcomeEncodeError    = "encode_error"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "albumdeck_client",
		Name:      "requests_total",
		Help:      "Calls issued through request.Client, by verb and outcome.",
	},
	[]string{"method", "outcome"},
)

func observe(method Method, outcome string) {
	requestsTotal.WithLabelValues(method.String(), outcome).Inc()
}
