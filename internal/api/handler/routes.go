package handler

import (
	"net/http"

	"github.com/vfg2006/insights-ingestor/internal/api/handler/router"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting"
)

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Metrics(m *metrics.Metrics) []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: m.Handler(),
		},
	}
}

func Insights(service ingesting.Ingester) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/insights/:level/sync",
			Method:  http.MethodGet,
			Handler: SyncInsights(service),
		},
		{
			Path:    "/v1/insights/:level/daily",
			Method:  http.MethodGet,
			Handler: GetDailySummary(service),
		},
	}
}

// LegacyInsights mantém as rotas usadas pelos clientes antigos
func LegacyInsights(service ingesting.Ingester) []router.Route {
	return []router.Route{
		{
			Path:    "/api/getAdInsights",
			Method:  http.MethodGet,
			Handler: SyncInsightsForLevel(service, domain.LevelAd),
		},
		{
			Path:    "/api/getadSetInsights",
			Method:  http.MethodGet,
			Handler: SyncInsightsForLevel(service, domain.LevelAdSet),
		},
		{
			Path:    "/api/getCampaignInsights",
			Method:  http.MethodGet,
			Handler: SyncInsightsForLevel(service, domain.LevelCampaign),
		},
		{
			Path:    "/api/fetch-meta",
			Method:  http.MethodGet,
			Handler: SyncInsightsForLevel(service, domain.LevelAd),
		},
	}
}

func CronJobs(service SyncTrigger) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(service),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(service),
		},
	}
}
