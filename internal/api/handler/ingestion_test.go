package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/insights-ingestor/internal/api/handler/router"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting/mocks"
	"go.uber.org/mock/gomock"
)

func newTestRouter(service *mocks.MockIngester) router.Router {
	return router.New(
		router.WithRoutes(Insights(service)...),
		router.WithRoutes(LegacyInsights(service)...),
	)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSyncInsights(t *testing.T) {
	adID := "ad-1"
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		url        string
		setup      func(m *mocks.MockIngester)
		wantStatus int
		validate   func(t *testing.T, body map[string]any)
	}{
		{
			name: "sucesso com período explícito",
			url:  "/v1/insights/ad/sync?start_date=2024-05-01&end_date=2024-05-31",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), domain.LevelAd, domain.DateWindow{Since: &since, Until: &until}).
					Return(&domain.IngestionResult{
						RunID:    "run-1",
						Level:    domain.LevelAd,
						Message:  "Data fetched and stored successfully.",
						Data:     []*domain.Insight{{ID: 1, AdID: &adID, DateStart: "2024-05-01", DateStop: "2024-05-01"}},
						Warnings: []string{"falha ao obter miniatura de cr-2: timeout"},
					}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "run-1", body["run_id"])
				assert.Len(t, body["data"], 1)
				assert.Len(t, body["warnings"], 1)
			},
		},
		{
			name: "sem dados retorna lista vazia",
			url:  "/v1/insights/campaign/sync",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), domain.LevelCampaign, domain.DateWindow{}).
					Return(&domain.IngestionResult{Message: "No data returned.", Data: []*domain.Insight{}}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "No data returned.", body["message"])
				assert.Equal(t, []any{}, body["data"])
				assert.NotContains(t, body, "warnings")
			},
		},
		{
			name:       "nível desconhecido",
			url:        "/v1/insights/account/sync",
			setup:      func(m *mocks.MockIngester) {},
			wantStatus: http.StatusBadRequest,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "VAL_001", body["code"])
				assert.NotEmpty(t, body["error"])
			},
		},
		{
			name:       "data malformada",
			url:        "/v1/insights/ad/sync?start_date=01/05/2024&end_date=2024-05-31",
			setup:      func(m *mocks.MockIngester) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "apenas uma das datas",
			url:        "/v1/insights/ad/sync?start_date=2024-05-01",
			setup:      func(m *mocks.MockIngester) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "erro da API vira 502",
			url:  "/v1/insights/adset/sync",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), domain.LevelAdSet, gomock.Any()).
					Return(nil, &domain.UpstreamError{StatusCode: 400, Body: "Invalid parameter"})
			},
			wantStatus: http.StatusBadGateway,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "SRV_003", body["code"])
				assert.Contains(t, body["error"], "Status: 400")
			},
		},
		{
			name: "credencial ausente vira 500",
			url:  "/v1/insights/ad/sync",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, &domain.ConfigError{Field: "META_ACCESS_TOKEN", Reason: "token de acesso não configurado"})
			},
			wantStatus: http.StatusInternalServerError,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "CFG_001", body["code"])
			},
		},
		{
			name: "erro de banco vira 500",
			url:  "/v1/insights/ad/sync",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, &domain.StorageError{Op: "upsert", Table: "ad_insights", Err: errors.New("connection refused")})
			},
			wantStatus: http.StatusInternalServerError,
			validate: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "SRV_002", body["code"])
			},
		},
		{
			name: "tempo limite vira 504",
			url:  "/v1/insights/ad/sync",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, context.DeadlineExceeded)
			},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name: "rota antiga de anúncios",
			url:  "/api/fetch-meta",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), domain.LevelAd, gomock.Any()).
					Return(&domain.IngestionResult{Message: "No data returned.", Data: []*domain.Insight{}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "rota antiga de conjuntos",
			url:  "/api/getadSetInsights",
			setup: func(m *mocks.MockIngester) {
				m.EXPECT().
					Run(gomock.Any(), domain.LevelAdSet, gomock.Any()).
					Return(&domain.IngestionResult{Message: "No data returned.", Data: []*domain.Insight{}}, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockIngester(ctrl)
			tt.setup(service)

			rec := httptest.NewRecorder()
			newTestRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.validate != nil {
				tt.validate(t, decodeBody(t, rec))
			}
		})
	}
}

func TestSyncInsights_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := httptest.NewRecorder()
	newTestRouter(mocks.NewMockIngester(ctrl)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/getAdInsights", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VAL_004", body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestGetDailySummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockIngester(ctrl)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	service.EXPECT().
		DailySummary(gomock.Any(), domain.LevelCampaign, since, until).
		Return([]*domain.DailySummary{
			{Date: "2024-05-01", Spend: 10.5, Leads: 2},
			{Date: "2024-05-02", Spend: 20, Leads: 3},
		}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/v1/insights/campaign/daily?start_date=2024-05-01&end_date=2024-05-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2024-05-01", body["start_date"])
	assert.Len(t, body["data"], 2)
}

type fakeTrigger struct {
	started bool
}

func (f *fakeTrigger) TriggerManualSync() bool   { return f.started }
func (f *fakeTrigger) GetStatus() map[string]any { return map[string]any{"sync_enabled": true} }

func TestCronJobs(t *testing.T) {
	rt := router.New(router.WithRoutes(CronJobs(&fakeTrigger{started: true})...))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cron/run", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sync_enabled")

	busy := router.New(router.WithRoutes(CronJobs(&fakeTrigger{started: false})...))
	rec = httptest.NewRecorder()
	busy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cron/run", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealthcheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthcheckHandler(fakePinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthcheckHandler(fakePinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
