package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/insights-ingestor/infrastructure/database/postgres"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

func stringPtr(s string) *string {
	return &s
}

func adInsight(adID, date string, spend float64) *domain.Insight {
	return &domain.Insight{
		Platform:          domain.PlatformMeta,
		AdID:              stringPtr(adID),
		DateStart:         date,
		DateStop:          date,
		InsightMetrics:    domain.InsightMetrics{Spend: spend},
		CustomConversions: map[string]int64{"whatsapp_clicks": 1},
	}
}

func TestDedupe(t *testing.T) {
	first := adInsight("1", "2024-05-01", 10)
	replacement := adInsight("1", "2024-05-01", 30)
	other := adInsight("2", "2024-05-01", 20)
	noKey := &domain.Insight{DateStart: "2024-05-01", DateStop: "2024-05-01"}

	result := Dedupe(domain.LevelAd, []*domain.Insight{first, other, nil, noKey, replacement})

	require.Len(t, result, 2)
	assert.Same(t, replacement, result[0], "a última ocorrência da chave vence")
	assert.Same(t, other, result[1])
}

func TestChunk(t *testing.T) {
	insights := make([]*domain.Insight, 7)
	for i := range insights {
		insights[i] = adInsight("x", "2024-05-01", 0)
	}

	chunks := Chunk(insights, 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[2], 1)

	assert.Empty(t, Chunk(nil, 3))
}

func TestInsightColumns(t *testing.T) {
	campaign := InsightColumns(domain.LevelCampaign, nil)
	assert.NotContains(t, campaign, "ad_id")
	assert.NotContains(t, campaign, "thumbnail_url")
	assert.Contains(t, campaign, "campaign_id")

	ad := InsightColumns(domain.LevelAd, []string{"whatsapp_clicks"})
	assert.Contains(t, ad, "thumbnail_url")
	assert.Equal(t, "whatsapp_clicks", ad[len(ad)-1])
}

func TestCustomColumns(t *testing.T) {
	insights := []*domain.Insight{
		{CustomConversions: map[string]int64{"b": 1}},
		{CustomConversions: map[string]int64{"a": 2, "b": 0}},
	}
	assert.Equal(t, []string{"a", "b"}, CustomColumns(insights))
}

func TestBuildUpsertQuery(t *testing.T) {
	columns := InsightColumns(domain.LevelAd, []string{"whatsapp_clicks"})
	batch := []*domain.Insight{adInsight("1", "2024-05-01", 10), adInsight("2", "2024-05-01", 20)}

	query, args, err := BuildUpsertQuery(domain.LevelAd, columns, batch)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO ad_insights")
	assert.Contains(t, query, "ON CONFLICT (ad_id, date_start, date_stop) DO UPDATE SET")
	assert.Contains(t, query, "spend = EXCLUDED.spend")
	assert.Contains(t, query, "whatsapp_clicks = EXCLUDED.whatsapp_clicks")
	assert.Contains(t, query, "updated_at = NOW()")
	assert.Contains(t, query, "RETURNING id, ad_id, date_start, date_stop, updated_at")
	assert.NotContains(t, query, "ad_id = EXCLUDED.ad_id", "colunas da chave não são atualizadas")
	assert.NotContains(t, query, "?")
	assert.Len(t, args, len(columns)*2)
	assert.Equal(t, int64(1), args[len(columns)-1])
}

func TestBuildDailySummaryQuery(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	query, args, err := BuildDailySummaryQuery(domain.LevelCampaign, since, until)
	require.NoError(t, err)

	assert.Contains(t, query, "FROM campaign_insights")
	assert.Contains(t, query, "GROUP BY date_start")
	assert.Contains(t, query, "ORDER BY date_start ASC")
	assert.Equal(t, []interface{}{"2024-05-01", "2024-05-31"}, args)
}

type fakeConn struct {
	postgres.Queryer
	txErr error
	calls int
}

func (f *fakeConn) Close() error                   { return nil }
func (f *fakeConn) Ping(ctx context.Context) error { return nil }
func (f *fakeConn) RunInTransaction(ctx context.Context, fn func(postgres.Queryer) error) error {
	f.calls++
	return f.txErr
}

func TestInsightRepository_Upsert(t *testing.T) {
	t.Run("lote vazio não abre transação", func(t *testing.T) {
		conn := &fakeConn{}
		repo := NewInsightRepository(conn)

		result, err := repo.Upsert(context.Background(), domain.LevelAd, nil)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.Zero(t, conn.calls)
	})

	t.Run("falha do banco vira StorageError com o código do Postgres", func(t *testing.T) {
		conn := &fakeConn{txErr: &pq.Error{Code: "23505", Message: "duplicate key"}}
		repo := NewInsightRepository(conn)

		_, err := repo.Upsert(context.Background(), domain.LevelAd, []*domain.Insight{adInsight("1", "2024-05-01", 1)})

		var storageErr *domain.StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "23505", storageErr.Code)
		assert.Equal(t, "ad_insights", storageErr.Table)
		assert.Equal(t, 1, conn.calls)
	})
}

func newSQLMockRepository(t *testing.T, maxParams int) (*insightRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &insightRepository{conn: &postgres.Connection{DB: db}, maxParams: maxParams}, mock
}

func TestInsightRepository_Upsert_Transaction(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
	returning := []string{"id", "ad_id", "date_start", "date_stop", "updated_at"}

	t.Run("grava o lote e devolve ids por chave", func(t *testing.T) {
		repo, mock := newSQLMockRepository(t, maxBindParams)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO ad_insights").
			WillReturnRows(sqlmock.NewRows(returning).
				AddRow(int64(8), "2", day, day, updatedAt).
				AddRow(int64(7), "1", day, day, updatedAt))
		mock.ExpectCommit()

		result, err := repo.Upsert(context.Background(), domain.LevelAd, []*domain.Insight{
			adInsight("1", "2024-05-01", 1),
			adInsight("2", "2024-05-01", 2),
			adInsight("1", "2024-05-01", 3),
		})

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, int64(7), result[0].ID)
		assert.Equal(t, 3.0, result[0].Spend, "a última ocorrência da chave vence")
		assert.Equal(t, int64(8), result[1].ID)
		assert.Equal(t, updatedAt, result[1].UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falha no segundo bloco desfaz o lote inteiro", func(t *testing.T) {
		// um registro por bloco
		columns := InsightColumns(domain.LevelAd, []string{"whatsapp_clicks"})
		repo, mock := newSQLMockRepository(t, len(columns))

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO ad_insights").
			WillReturnRows(sqlmock.NewRows(returning).AddRow(int64(7), "1", day, day, updatedAt))
		mock.ExpectQuery("INSERT INTO ad_insights").
			WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})
		mock.ExpectRollback()

		result, err := repo.Upsert(context.Background(), domain.LevelAd, []*domain.Insight{
			adInsight("1", "2024-05-01", 1),
			adInsight("2", "2024-05-01", 2),
		})

		assert.Nil(t, result)
		var storageErr *domain.StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "40001", storageErr.Code)
		assert.Equal(t, "upsert", storageErr.Op)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
