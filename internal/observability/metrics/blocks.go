package metrics

import "github.com/prometheus/client_golang/prometheus"

// BlockMetrics counts rendered and omitted content blocks. It satisfies the
// block renderer observer.
type BlockMetrics struct {
	rendered *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

// NewBlockMetrics creates and registers the block renderer metrics.
func NewBlockMetrics(registry *prometheus.Registry) (*BlockMetrics, error) {
	m := &BlockMetrics{
		rendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocks_rendered_total",
				Help: "Content blocks rendered, by kind",
			},
			[]string{"kind"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocks_dropped_total",
				Help: "Content blocks omitted as unknown or malformed, by layout tag",
			},
			[]string{"layout"},
		),
	}
	if err := registry.Register(m.rendered); err != nil {
		return nil, err
	}
	if err := registry.Register(m.dropped); err != nil {
		return nil, err
	}
	return m, nil
}

// BlockRendered counts a rendered block.
func (m *BlockMetrics) BlockRendered(kind string) {
	m.rendered.WithLabelValues(kind).Inc()
}

// BlockDropped counts an omitted block. Layout tags come from upstream
// content, so anything unexpected is bucketed as "other".
func (m *BlockMetrics) BlockDropped(layout string) {
	if layout == "" || len(layout) > 40 {
		layout = "other"
	}
	m.dropped.WithLabelValues(layout).Inc()
}
