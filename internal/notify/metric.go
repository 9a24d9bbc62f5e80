package notify

import (
	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/metric"
)

// MetricSink counts emitted events per type.
type MetricSink struct {
	metrics *metric.Metrics
}

// NewMetricSink creates a sink recording events into metrics.
func NewMetricSink(m *metric.Metrics) *MetricSink {
	return &MetricSink{metrics: m}
}

// Transfer implements domain.Sink.
func (s *MetricSink) Transfer(domain.TransferEvent) {
	s.metrics.ObserveEvent(TypeTransfer)
}

// Approval implements domain.Sink.
func (s *MetricSink) Approval(domain.ApprovalEvent) {
	s.metrics.ObserveEvent(TypeApproval)
}

// ApprovalForAll implements domain.Sink.
func (s *MetricSink) ApprovalForAll(domain.ApprovalForAllEvent) {
	s.metrics.ObserveEvent(TypeApprovalForAll)
}
