package ingesting

import (
	"context"
	"iter"
	"time"

	"github.com/vfg2006/insights-ingestor/internal/domain"
)

// InsightSource entrega os registros normalizados de um nível, página a página
type InsightSource interface {
	StreamInsights(ctx context.Context, level domain.ReportingLevel, window domain.DateWindow, onPage func(domain.PageProgress)) iter.Seq2[*domain.Insight, error]
}

// CreativeResolver resolve a miniatura de um criativo ou anúncio
type CreativeResolver interface {
	ResolveCreative(ctx context.Context, ref domain.CreativeRef) (*domain.Creative, error)
}

// Ingester é o pipeline completo exposto para a API e o agendador
type Ingester interface {
	// Run busca, normaliza, enriquece e grava os insights de um nível
	Run(ctx context.Context, level domain.ReportingLevel, window domain.DateWindow) (*domain.IngestionResult, error)

	// DailySummary agrega por dia os registros já gravados
	DailySummary(ctx context.Context, level domain.ReportingLevel, since, until time.Time) ([]*domain.DailySummary, error)

	// Prune remove registros mais antigos que a retenção configurada
	Prune(ctx context.Context, level domain.ReportingLevel, days int) (int64, error)
}
