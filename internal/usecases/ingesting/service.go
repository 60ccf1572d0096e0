package ingesting

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/infrastructure/repository"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
	"github.com/vfg2006/insights-ingestor/pkg/utils"
)

const (
	MessageNoData  = "No data returned."
	MessageSuccess = "Data fetched and stored successfully."
)

// Service executa o pipeline: paginação, normalização, miniaturas e gravação
type Service struct {
	cfg        *config.Config
	source     InsightSource
	enricher   *Enricher
	repository repository.InsightRepository
	metrics    *metrics.Metrics
}

func NewService(
	cfg *config.Config,
	source InsightSource,
	resolver CreativeResolver,
	insightRepository repository.InsightRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		enricher:   NewEnricher(resolver, cfg.Ingestion.ThumbnailConcurrency, m),
		repository: insightRepository,
		metrics:    m,
	}
}

// Run executa uma ingestão completa de um nível. Nenhuma chamada externa é feita
// se a configuração ou o período forem inválidos.
func (s *Service) Run(ctx context.Context, level domain.ReportingLevel, window domain.DateWindow) (*domain.IngestionResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := domain.ParseReportingLevel(string(level)); err != nil {
		return nil, err
	}
	if !window.HasRange() && window.Preset == "" {
		window.Preset = s.cfg.Ingestion.DatePreset
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	runID, err := utils.GenerateRunID()
	if err != nil {
		return nil, errors.Wrap(err, "ingest: falha ao gerar id da execução")
	}

	if s.cfg.Ingestion.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Ingestion.RunTimeout)
		defer cancel()
	}

	result := &domain.IngestionResult{
		RunID:     runID,
		Level:     level,
		StartedAt: time.Now(),
	}

	logger := logrus.WithFields(logrus.Fields{
		"run_id": runID,
		"level":  level,
	})
	logger.Info("ingest: iniciando execução")

	status := metrics.StatusError
	defer func() {
		result.FinishedAt = time.Now()
		s.metrics.Runs.WithLabelValues(string(level), status).Inc()
		s.metrics.RunDuration.WithLabelValues(string(level)).Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}()

	insights, err := s.collect(ctx, level, window, result, logger)
	if err != nil {
		logger.WithError(err).Error("ingest: falha ao ler insights")
		return nil, err
	}

	if len(insights) == 0 {
		status = metrics.StatusEmpty
		result.Message = MessageNoData
		result.Data = []*domain.Insight{}
		logger.Info("ingest: nenhum dado retornado")
		return result, nil
	}

	report, err := s.enricher.Enrich(ctx, level, insights)
	if err != nil {
		logger.WithError(err).Warn("ingest: execução cancelada durante o enriquecimento, nada foi gravado")
		return nil, err
	}
	result.Lookups = report.Lookups
	result.Warnings = append(result.Warnings, report.Diagnostics...)

	// cancelado depois do enriquecimento: não grava lote parcial
	if err := ctx.Err(); err != nil {
		logger.WithError(err).Warn("ingest: execução cancelada antes da gravação")
		return nil, err
	}

	stored, err := s.repository.Upsert(ctx, level, insights)
	if err != nil {
		logger.WithError(err).Error("ingest: falha ao gravar insights")
		return nil, err
	}
	s.metrics.RecordsUpserted.WithLabelValues(string(level)).Add(float64(len(stored)))

	status = metrics.StatusSuccess
	result.Message = MessageSuccess
	result.Data = stored

	logger.WithFields(logrus.Fields{
		"fetched":  result.Fetched,
		"skipped":  result.Skipped,
		"stored":   len(stored),
		"pages":    result.Pages,
		"lookups":  result.Lookups,
		"warnings": len(result.Warnings),
	}).Info("ingest: execução concluída")

	return result, nil
}

func (s *Service) collect(
	ctx context.Context,
	level domain.ReportingLevel,
	window domain.DateWindow,
	result *domain.IngestionResult,
	logger *logrus.Entry,
) ([]*domain.Insight, error) {
	onPage := func(page domain.PageProgress) {
		result.Pages = page.Number
		s.metrics.PagesFetched.WithLabelValues(string(level)).Inc()

		if page.CapReached {
			result.PageCapHit = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("limite de %d páginas atingido, resultados podem estar incompletos", page.Number))
			s.metrics.PageCapHits.WithLabelValues(string(level)).Inc()
		}
	}

	insights := make([]*domain.Insight, 0)

	for insight, err := range s.source.StreamInsights(ctx, level, window, onPage) {
		if err != nil {
			return nil, err
		}

		result.Fetched++
		s.metrics.RecordsFetched.WithLabelValues(string(level)).Inc()

		if _, ok := insight.Key(level); !ok {
			result.Skipped++
			s.metrics.RecordsSkipped.WithLabelValues(string(level)).Inc()
			logger.WithFields(logrus.Fields{
				"date_start": insight.DateStart,
				"date_stop":  insight.DateStop,
			}).Warn("ingest: registro sem identificador ou datas, ignorado")
			continue
		}

		insights = append(insights, insight)
	}

	return insights, nil
}

// DailySummary lê os totais diários já gravados
func (s *Service) DailySummary(ctx context.Context, level domain.ReportingLevel, since, until time.Time) ([]*domain.DailySummary, error) {
	if _, err := domain.ParseReportingLevel(string(level)); err != nil {
		return nil, err
	}
	if until.Before(since) {
		return nil, &domain.ConfigError{Field: "date_range", Reason: "end_date anterior a start_date"}
	}

	return s.repository.GetDailySummary(ctx, level, since, until)
}

// Prune aplica a retenção; days <= 0 desativa
func (s *Service) Prune(ctx context.Context, level domain.ReportingLevel, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}

	deleted, err := s.repository.DeleteOlderThan(ctx, level, days)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordsPruned.WithLabelValues(string(level)).Add(float64(deleted))

	logrus.WithFields(logrus.Fields{
		"level":   level,
		"days":    days,
		"deleted": deleted,
	}).Info("ingest: retenção aplicada")

	return deleted, nil
}
