// Package metrics exposes sampler activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/qos"
)

const namespace = "qosship"

// PromObserver implements ports.Observer with Prometheus collectors.
type PromObserver struct {
	requests  *prometheus.CounterVec
	messages  *prometheus.CounterVec
	published *prometheus.CounterVec

	signal   prometheus.Gauge
	txOK     prometheus.Gauge
	txRetry  prometheus.Gauge
	txFail   prometheus.Gauge
	consumer prometheus.Gauge
}

var _ ports.Observer = (*PromObserver)(nil)

// NewPromObserver creates the collectors and registers them with reg.
func NewPromObserver(reg prometheus.Registerer) (*PromObserver, error) {
	o := &PromObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Station statistics requests sent to the kernel.",
		}, []string{"result"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound nl80211 messages by outcome.",
		}, []string{"result"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_total",
			Help:      "Samples offered to the local consumer socket.",
		}, []string{"result"}),
		signal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_dbm",
			Help:      "Signal strength of the last published sample.",
		}),
		txOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_ok",
			Help:      "Cumulative acknowledged transmissions of the last published sample.",
		}),
		txRetry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_retry",
			Help:      "Cumulative retransmissions of the last published sample.",
		}),
		txFail: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_fail",
			Help:      "Cumulative failed transmissions of the last published sample.",
		}),
		consumer: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consumer_present",
			Help:      "1 while a consumer socket exists at the destination path.",
		}),
	}

	collectors := []prometheus.Collector{
		o.requests, o.messages, o.published,
		o.signal, o.txOK, o.txRetry, o.txFail, o.consumer,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-create label values so every series is exported from the start.
	for _, r := range []string{"ok", "error"} {
		o.requests.WithLabelValues(r)
	}
	for _, r := range []ports.MessageResult{ports.MessageSample, ports.MessageSkipped, ports.MessageMalformed, ports.MessageError} {
		o.messages.WithLabelValues(string(r))
	}
	for _, r := range []string{"ok", "dropped"} {
		o.published.WithLabelValues(r)
	}

	return o, nil
}

func (o *PromObserver) RequestSent(err error) {
	if err != nil {
		o.requests.WithLabelValues("error").Inc()
		return
	}
	o.requests.WithLabelValues("ok").Inc()
}

func (o *PromObserver) MessageReceived(result ports.MessageResult) {
	o.messages.WithLabelValues(string(result)).Inc()
}

// SamplePublished counts the attempt and records the sample's values
// whether or not a consumer received it.
func (o *PromObserver) SamplePublished(s qos.Sample, err error) {
	if err != nil {
		o.published.WithLabelValues("dropped").Inc()
	} else {
		o.published.WithLabelValues("ok").Inc()
	}

	o.signal.Set(float64(s.RSSIdBm))
	o.txOK.Set(float64(s.TxOK))
	o.txRetry.Set(float64(s.TxRetry))
	o.txFail.Set(float64(s.TxFail))
}

func (o *PromObserver) ConsumerPresent(present bool) {
	if present {
		o.consumer.Set(1)
		return
	}
	o.consumer.Set(0)
}
