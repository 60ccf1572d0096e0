package ingesting

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
)

type slowResolver struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
}

func (r *slowResolver) ResolveCreative(ctx context.Context, ref domain.CreativeRef) (*domain.Creative, error) {
	r.calls.Add(1)
	current := r.active.Add(1)
	defer r.active.Add(-1)

	for {
		seen := r.maxSeen.Load()
		if current <= seen || r.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond)
	return &domain.Creative{ID: ref.CreativeID, ThumbnailURL: "https://cdn/" + ref.CreativeID + ".jpg"}, nil
}

func TestEnricher_RespectsConcurrencyLimit(t *testing.T) {
	resolver := &slowResolver{}
	enricher := NewEnricher(resolver, 3, metrics.NewMetrics(prometheus.NewRegistry()))

	insights := make([]*domain.Insight, 0, 20)
	for i := range 20 {
		insights = append(insights, adInsight(fmt.Sprintf("ad-%d", i), fmt.Sprintf("cr-%d", i), ""))
	}
	// criativo repetido gera uma única consulta
	insights = append(insights, adInsight("ad-99", "cr-0", ""))

	report, err := enricher.Enrich(context.Background(), domain.LevelAd, insights)
	require.NoError(t, err)

	assert.Equal(t, 20, report.Lookups)
	assert.Equal(t, int32(20), resolver.calls.Load())
	assert.LessOrEqual(t, resolver.maxSeen.Load(), int32(3))
	assert.Equal(t, "https://cdn/cr-0.jpg", *insights[20].ThumbnailURL)
}

func TestCreativeRefFor(t *testing.T) {
	withThumb := adInsight("ad-1", "cr-1", "https://cdn/1.jpg")
	_, ok := CreativeRefFor(domain.LevelAd, withThumb)
	assert.False(t, ok)

	ref, ok := CreativeRefFor(domain.LevelAd, adInsight("ad-1", "", ""))
	require.True(t, ok)
	assert.Equal(t, domain.CreativeRef{AdID: "ad-1"}, ref)

	campaign := &domain.Insight{CampaignID: domain.StringPtr("camp-1"), AdID: domain.StringPtr("ad-1")}
	_, ok = CreativeRefFor(domain.LevelCampaign, campaign)
	assert.False(t, ok, "fora do nível de anúncio só há consulta pelo criativo")
}
