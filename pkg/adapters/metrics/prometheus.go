package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

const namespace = "stopclean"

// Collector turns pipeline observations into prometheus metrics on a
// private registry. Batch runs export it with WriteTextfile.
type Collector struct {
	registry *prometheus.Registry

	records      *prometheus.CounterVec
	partitionDur prometheus.Summary
	degradations *prometheus.CounterVec
	issueCount   *prometheus.GaugeVec
	passed       prometheus.Gauge
	lastReportTS prometheus.Gauge
	reportsTotal prometheus.Counter
}

var _ ports.Observer = (*Collector)(nil)

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_recoded_total",
		Help:      "Standardized records produced, by partition year",
	}, []string{"year"})
	c.partitionDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "partition_duration_seconds",
		Help:      "Time spent recoding one partition",
	})
	c.degradations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "field_degradations_total",
		Help:      "Raw values degraded to missing, by source field and reason",
	}, []string{"field", "reason"})
	c.issueCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "validation_issue_count",
		Help:      "Count reported by each issue of the latest validation",
	}, []string{"issue"})
	c.passed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "validation_passed",
		Help:      "1 if the latest validation passed, 0 otherwise",
	})
	c.lastReportTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_validation_timestamp_seconds",
		Help:      "Unix timestamp of the latest validation report",
	})
	c.reportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validations_total",
		Help:      "Validation reports produced",
	})

	c.registry.MustRegister(
		c.records, c.partitionDur, c.degradations,
		c.issueCount, c.passed, c.lastReportTS, c.reportsTotal,
	)
	return c
}

// Registry exposes the gatherer, e.g. for tests or an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveDegradation(d domain.Degradation) {
	c.degradations.WithLabelValues(d.Field, string(d.Reason)).Inc()
}

func (c *Collector) ObservePartition(year, rows int, elapsed time.Duration) {
	c.records.WithLabelValues(strconv.Itoa(year)).Add(float64(rows))
	c.partitionDur.Observe(elapsed.Seconds())
}

// ObserveReport replaces the issue gauges with the report's issues.
func (c *Collector) ObserveReport(report *domain.ValidationReport) {
	if report == nil {
		return
	}
	c.issueCount.Reset()
	for name, issue := range report.Issues {
		c.issueCount.WithLabelValues(name).Set(float64(issue.Count))
	}
	if report.Passed {
		c.passed.Set(1)
	} else {
		c.passed.Set(0)
	}
	c.lastReportTS.Set(float64(report.CreatedAt.Unix()))
	c.reportsTotal.Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
