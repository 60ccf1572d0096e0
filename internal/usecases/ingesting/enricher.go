package ingesting

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ThumbnailIndex guarda os criativos resolvidos numa execução; não sobrevive a ela
type ThumbnailIndex map[domain.CreativeRef]*domain.Creative

// Apply completa os registros sem miniatura com o que foi resolvido
func (idx ThumbnailIndex) Apply(level domain.ReportingLevel, insights []*domain.Insight) {
	for _, insight := range insights {
		ref, ok := CreativeRefFor(level, insight)
		if !ok {
			continue
		}
		insight.ApplyCreative(idx[ref])
	}
}

// CreativeRefFor decide o que consultar para um registro sem miniatura
func CreativeRefFor(level domain.ReportingLevel, insight *domain.Insight) (domain.CreativeRef, bool) {
	if insight.HasThumbnail() {
		return domain.CreativeRef{}, false
	}

	if insight.CreativeID != nil && *insight.CreativeID != "" {
		return domain.CreativeRef{CreativeID: *insight.CreativeID}, true
	}

	if level == domain.LevelAd && insight.AdID != nil && *insight.AdID != "" {
		return domain.CreativeRef{AdID: *insight.AdID}, true
	}

	return domain.CreativeRef{}, false
}

// CollectRefs retorna as referências distintas, na ordem em que aparecem
func CollectRefs(level domain.ReportingLevel, insights []*domain.Insight) []domain.CreativeRef {
	seen := make(map[domain.CreativeRef]struct{})
	refs := make([]domain.CreativeRef, 0)

	for _, insight := range insights {
		ref, ok := CreativeRefFor(level, insight)
		if !ok {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	return refs
}

type Enricher struct {
	resolver    CreativeResolver
	concurrency int
	metrics     *metrics.Metrics
}

func NewEnricher(resolver CreativeResolver, concurrency int, m *metrics.Metrics) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Enricher{
		resolver:    resolver,
		concurrency: concurrency,
		metrics:     m,
	}
}

// EnrichmentReport resume as consultas de uma execução
type EnrichmentReport struct {
	Lookups     int
	Failures    int
	Diagnostics []string
}

// Enrich resolve as miniaturas faltantes com no máximo `concurrency` consultas simultâneas.
// Falhas individuais não interrompem o lote; só o cancelamento do contexto é devolvido como erro.
func (e *Enricher) Enrich(ctx context.Context, level domain.ReportingLevel, insights []*domain.Insight) (*EnrichmentReport, error) {
	report := &EnrichmentReport{}

	refs := CollectRefs(level, insights)
	if len(refs) == 0 {
		return report, nil
	}

	var (
		mu    sync.Mutex
		index = make(ThumbnailIndex, len(refs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, ref := range refs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			creative, err := e.resolver.ResolveCreative(gctx, ref)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}

				enrichErr := &domain.EnrichmentError{Ref: ref, Err: err}
				logrus.WithFields(logrus.Fields{
					"level":       level,
					"creative_id": ref.CreativeID,
					"ad_id":       ref.AdID,
					"error":       err.Error(),
				}).Warn("ingest: falha ao obter miniatura, seguindo sem ela")
				e.metrics.EnrichmentLookups.WithLabelValues(string(level), "error").Inc()

				mu.Lock()
				report.Failures++
				report.Diagnostics = append(report.Diagnostics, enrichErr.Error())
				mu.Unlock()
				return nil
			}

			e.metrics.EnrichmentLookups.WithLabelValues(string(level), "ok").Inc()

			mu.Lock()
			index[ref] = creative
			mu.Unlock()
			return nil
		})
		report.Lookups++
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	index.Apply(level, insights)
	sort.Strings(report.Diagnostics)

	logrus.WithFields(logrus.Fields{
		"level":    level,
		"lookups":  report.Lookups,
		"failures": report.Failures,
	}).Debug("ingest: enriquecimento de miniaturas concluído")

	return report, nil
}
