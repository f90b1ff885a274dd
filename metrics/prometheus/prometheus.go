// Package prometheus exposes link counters as Prometheus collectors.
package prometheus

import (
	"errors"
	"sync/atomic"

	"github.com/arloliu/go-stage/ascii"
	"github.com/arloliu/go-stage/binary"
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsConfig struct {
	Namespace    string
	SubASCII     string
	SubBinary    string
	LinkLabelKey string
}

func DefaultConfig() *MetricsConfig {
	return &MetricsConfig{
		Namespace:    "stage",
		SubASCII:     "ascii",
		SubBinary:    "binary",
		LinkLabelKey: "link",
	}
}

// Metrics registers link counters on a prometheus.Registerer.
type Metrics struct {
	reg    prometheus.Registerer
	config *MetricsConfig
}

func New(reg prometheus.Registerer, config *MetricsConfig) *Metrics {
	if config == nil {
		config = DefaultConfig()
	}

	return &Metrics{reg: reg, config: config}
}

type counterDef struct {
	name  string
	help  string
	value *atomic.Uint64
}

// AddASCIILink registers the counters of an ASCII link labelled with name.
func (m *Metrics) AddASCIILink(name string, link *ascii.Link) error {
	lm := link.Metrics()

	return m.register(m.config.SubASCII, name, []counterDef{
		{"commands_sent_total", "Command lines written.", &lm.CmdSendCount},
		{"replies_received_total", "Reply lines decoded.", &lm.ReplyRecvCount},
		{"replies_rejected_total", "Replies flagged RJ.", &lm.ReplyRejectCount},
		{"replies_malformed_total", "Lines that failed to decode.", &lm.MalformedCount},
		{"read_timeouts_total", "Reads that timed out.", &lm.TimeoutCount},
		{"polls_total", "Completion polls issued by lockstep groups.", &lm.PollCount},
	})
}

// AddBinaryLink registers the counters of a binary link labelled with name.
func (m *Metrics) AddBinaryLink(name string, link *binary.Link) error {
	lm := link.Metrics()

	return m.register(m.config.SubBinary, name, []counterDef{
		{"frames_sent_total", "Command frames written.", &lm.FrameSendCount},
		{"frames_received_total", "Reply frames decoded.", &lm.FrameRecvCount},
		{"error_replies_total", "Replies carrying the error command number.", &lm.ErrorReplyCount},
		{"read_timeouts_total", "Reads that timed out.", &lm.TimeoutCount},
	})
}

func (m *Metrics) register(subsystem, name string, defs []counterDef) error {
	var errs error

	for _, def := range defs {
		value := def.value
		counter := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   m.config.Namespace,
			Subsystem:   subsystem,
			Name:        def.name,
			Help:        def.help,
			ConstLabels: prometheus.Labels{m.config.LinkLabelKey: name},
		}, func() float64 {
			return float64(value.Load())
		})

		if err := m.reg.Register(counter); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
