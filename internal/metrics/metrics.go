package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "insights_ingestor"

// Status das execuções
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Metrics reúne as métricas do pipeline de ingestão
type Metrics struct {
	Runs              *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	PagesFetched      *prometheus.CounterVec
	PageCapHits       *prometheus.CounterVec
	RecordsFetched    *prometheus.CounterVec
	RecordsSkipped    *prometheus.CounterVec
	RecordsUpserted   *prometheus.CounterVec
	EnrichmentLookups *prometheus.CounterVec
	RecordsPruned     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registra as métricas no registry informado; testes usam um registry novo
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Ingestion runs by level and final status",
			},
			[]string{"level", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Ingestion run duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"level"},
		),
		PagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_fetched_total",
				Help:      "Insight pages read from the Graph API",
			},
			[]string{"level"},
		),
		PageCapHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "page_cap_hits_total",
				Help:      "Runs that stopped paginating at the page cap",
			},
			[]string{"level"},
		),
		RecordsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_fetched_total",
				Help:      "Raw insight records received",
			},
			[]string{"level"},
		),
		RecordsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_skipped_total",
				Help:      "Records dropped for lacking entity id or dates",
			},
			[]string{"level"},
		),
		RecordsUpserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_upserted_total",
				Help:      "Records written by the upsert sink",
			},
			[]string{"level"},
		),
		EnrichmentLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichment_lookups_total",
				Help:      "Thumbnail lookups by result",
			},
			[]string{"level", "result"},
		),
		RecordsPruned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_pruned_total",
				Help:      "Rows removed by the retention policy",
			},
			[]string{"level"},
		),
		gatherer: reg,
	}
}

// Handler expõe as métricas no formato do Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
