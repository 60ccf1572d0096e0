package metaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*MetaClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Meta: config.Meta{
			URL:         server.URL + "/v22.0",
			AccessToken: "token-de-teste",
			AdAccountID: "123",
		},
		Ingestion: config.Ingestion{ThumbnailWidth: 1920, ThumbnailHeight: 1080},
	}

	return NewClient(cfg, server.Client()).(*MetaClient), server
}

func collect(t *testing.T, seq func(func(metadomain.RawInsight, error) bool)) ([]metadomain.RawInsight, error) {
	t.Helper()

	var records []metadomain.RawInsight
	for record, err := range seq {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func TestMetaClient_FetchInsights_FollowsPaging(t *testing.T) {
	var serverURL string
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v22.0/act_123/insights":
			assert.Equal(t, "token-de-teste", r.URL.Query().Get("access_token"))
			assert.Equal(t, "ad", r.URL.Query().Get("level"))
			assert.Equal(t, "last_30d", r.URL.Query().Get("date_preset"))
			assert.Equal(t, "1", r.URL.Query().Get("time_increment"))
			assert.Equal(t, "500", r.URL.Query().Get("limit"))
			fmt.Fprintf(w, `{"data":[{"ad_id":"1","date_start":"2024-05-01","date_stop":"2024-05-01"},{"ad_id":"2","date_start":"2024-05-01","date_stop":"2024-05-01"}],"paging":{"cursors":{"after":"x"},"next":"%s/page2"}}`, serverURL)
		case "/page2":
			fmt.Fprint(w, `{"data":[{"ad_id":"3","date_start":"2024-05-01","date_stop":"2024-05-01"}],"paging":{"cursors":{"before":"x"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	serverURL = server.URL

	var pages []domain.PageProgress
	records, err := collect(t, client.FetchInsights(context.Background(), InsightsParams{
		Level:         domain.LevelAd,
		Fields:        domain.LevelAd.Fields(),
		Window:        domain.DateWindow{Preset: "last_30d"},
		TimeIncrement: 1,
		Limit:         500,
		MaxPages:      10,
		OnPage:        func(p domain.PageProgress) { pages = append(pages, p) },
	}))

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[2].AdID)
	assert.Equal(t, []domain.PageProgress{{Number: 1, Records: 2}, {Number: 2, Records: 1}}, pages)
}

func TestMetaClient_FetchInsights_StopsAtPageCap(t *testing.T) {
	var calls atomic.Int32
	var serverURL string
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"data":[{"campaign_id":"%d","date_start":"2024-05-01","date_stop":"2024-05-01"}],"paging":{"next":"%s/next/%d"}}`, n, serverURL, n)
	})
	serverURL = server.URL

	var last domain.PageProgress
	records, err := collect(t, client.FetchInsights(context.Background(), InsightsParams{
		Level:    domain.LevelCampaign,
		Window:   domain.DateWindow{Preset: "yesterday"},
		MaxPages: 3,
		OnPage:   func(p domain.PageProgress) { last = p },
	}))

	require.NoError(t, err, "atingir o limite de páginas não é erro")
	assert.Len(t, records, 3)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, last.CapReached)
}

func TestMetaClient_FetchInsights_EmptyData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})

	records, err := collect(t, client.FetchInsights(context.Background(), InsightsParams{
		Level:  domain.LevelAdSet,
		Window: domain.DateWindow{Preset: "last_7d"},
	}))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMetaClient_FetchInsights_TimeRange(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{"since":"2024-05-01","until":"2024-05-07"}`, r.URL.Query().Get("time_range"))
		assert.Empty(t, r.URL.Query().Get("date_preset"))
		fmt.Fprint(w, `{"data":[]}`)
	})

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)

	_, err := collect(t, client.FetchInsights(context.Background(), InsightsParams{
		Level:  domain.LevelAd,
		Window: domain.DateWindow{Since: &since, Until: &until, Preset: "last_30d"},
	}))
	require.NoError(t, err)
}

func TestMetaClient_FetchInsights_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantInMsg  string
	}{
		{
			name:       "erro da Graph API com envelope",
			status:     http.StatusBadRequest,
			body:       `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`,
			wantStatus: http.StatusBadRequest,
			wantInMsg:  "token de acesso expirado",
		},
		{
			name:       "erro sem envelope",
			status:     http.StatusServiceUnavailable,
			body:       `upstream unavailable`,
			wantStatus: http.StatusServiceUnavailable,
			wantInMsg:  "upstream unavailable",
		},
		{
			name:       "payload malformado",
			status:     http.StatusOK,
			body:       `{"data": [`,
			wantStatus: http.StatusOK,
			wantInMsg:  "payload malformado",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			records, err := collect(t, client.FetchInsights(context.Background(), InsightsParams{
				Level:  domain.LevelAd,
				Window: domain.DateWindow{Preset: "last_30d"},
			}))

			assert.Empty(t, records)
			var upstreamErr *domain.UpstreamError
			require.True(t, errors.As(err, &upstreamErr))
			assert.Equal(t, tt.wantStatus, upstreamErr.StatusCode)
			assert.Contains(t, upstreamErr.Error(), tt.wantInMsg)
		})
	}
}

func TestMetaClient_FetchInsights_CanceledContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect(t, client.FetchInsights(ctx, InsightsParams{
		Level:  domain.LevelAd,
		Window: domain.DateWindow{Preset: "last_30d"},
	}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetaClient_GetCreative(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v22.0/777", r.URL.Path)
		assert.Equal(t, "1920", r.URL.Query().Get("thumbnail_width"))
		assert.Equal(t, "1080", r.URL.Query().Get("thumbnail_height"))
		assert.Equal(t, creativeFields, r.URL.Query().Get("fields"))
		fmt.Fprint(w, `{"id":"777","name":"Criativo","thumbnail_url":"https://cdn/thumb.jpg"}`)
	})

	creative, err := client.GetCreative(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/thumb.jpg", creative.ThumbnailURL)
	assert.Equal(t, "Criativo", creative.Name)
}

func TestMetaClient_GetAdCreative(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v22.0/ad-1":
			assert.Equal(t, "creative{"+creativeFields+"}", r.URL.Query().Get("fields"))
			fmt.Fprint(w, `{"id":"ad-1","creative":{"id":"c-1","thumbnail_url":"https://cdn/c1.jpg"}}`)
		case "/v22.0/ad-2":
			fmt.Fprint(w, `{"id":"ad-2"}`)
		}
	})

	creative, err := client.GetAdCreative(context.Background(), "ad-1")
	require.NoError(t, err)
	require.NotNil(t, creative)
	assert.Equal(t, "c-1", creative.ID)

	creative, err = client.GetAdCreative(context.Background(), "ad-2")
	require.NoError(t, err)
	assert.Nil(t, creative)
}

func TestMetaClient_LimiterBeyondDeadline(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"id":"cr-1"}`)
	})

	// o próximo token só sai em uma hora
	client.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, client.Limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.GetCreative(ctx, "cr-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, ctx.Err(), "o erro sai antes do prazo vencer")
	assert.Zero(t, hits.Load())
}
