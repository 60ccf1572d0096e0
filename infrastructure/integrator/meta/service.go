package meta

import (
	"context"
	"iter"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

// StreamInsights lê as páginas do nível pedido e entrega cada registro já normalizado
func (s *MetaIntegrator) StreamInsights(
	ctx context.Context,
	level domain.ReportingLevel,
	window domain.DateWindow,
	onPage func(domain.PageProgress),
) iter.Seq2[*domain.Insight, error] {
	if !window.HasRange() && window.Preset == "" {
		window.Preset = s.cfg.Ingestion.DatePreset
	}

	params := metaclient.InsightsParams{
		Level:         level,
		Fields:        level.Fields(),
		Window:        window,
		TimeIncrement: s.cfg.Ingestion.TimeIncrement,
		Limit:         s.cfg.Ingestion.PageLimit,
		MaxPages:      s.cfg.Ingestion.MaxPages,
		OnPage:        onPage,
	}
	if level == domain.LevelAd {
		params.Fields = append(params.Fields, "ad_creative{id,name,image_url,thumbnail_url}")
	}

	table := s.cfg.Ingestion.ConversionTable()

	return func(yield func(*domain.Insight, error) bool) {
		for raw, err := range s.Client.FetchInsights(ctx, params) {
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"level": level,
					"error": err.Error(),
				}).Error("meta: falha ao obter insights da API")
				yield(nil, err)
				return
			}

			if !yield(FactoryInsight(&raw, table), nil) {
				return
			}
		}
	}
}

// ResolveCreative busca a miniatura pelo criativo ou, sem ele, pelo anúncio
func (s *MetaIntegrator) ResolveCreative(ctx context.Context, ref domain.CreativeRef) (*domain.Creative, error) {
	var (
		creative *metadomain.Creative
		err      error
	)

	if ref.CreativeID != "" {
		creative, err = s.Client.GetCreative(ctx, ref.CreativeID)
	} else {
		creative, err = s.Client.GetAdCreative(ctx, ref.AdID)
	}
	if err != nil {
		return nil, err
	}

	return FactoryCreative(creative), nil
}

// FactoryInsight monta o registro normalizado a partir do registro bruto
func FactoryInsight(raw *metadomain.RawInsight, table domain.ConversionTable) *domain.Insight {
	conversions := ExtractConversions(raw.Actions, table)

	custom := make(map[string]int64, len(table.Columns))
	for _, column := range table.ColumnNames() {
		custom[column] = conversions[column]
	}

	insight := &domain.Insight{
		Platform:          domain.PlatformMeta,
		DateStart:         raw.DateStart,
		DateStop:          raw.DateStop,
		AdID:              domain.StringPtr(raw.AdID),
		AdName:            domain.StringPtr(raw.AdName),
		AdSetID:           domain.StringPtr(raw.AdSetID),
		AdSetName:         domain.StringPtr(raw.AdSetName),
		CampaignID:        domain.StringPtr(raw.CampaignID),
		CampaignName:      domain.StringPtr(raw.CampaignName),
		InsightMetrics:    NormalizeMetrics(raw, conversions),
		CustomConversions: custom,
	}

	if raw.AdCreative != nil {
		insight.ApplyCreative(FactoryCreative(raw.AdCreative))
	}

	return insight
}

func FactoryCreative(creative *metadomain.Creative) *domain.Creative {
	if creative == nil {
		return nil
	}

	return &domain.Creative{
		ID:           creative.ID,
		Name:         creative.Name,
		ImageURL:     creative.ImageURL,
		ThumbnailURL: creative.ThumbnailURL,
	}
}
