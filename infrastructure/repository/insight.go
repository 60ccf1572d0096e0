package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/infrastructure/database/postgres"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/pkg/utils"
)

// maxBindParams é o limite de parâmetros por comando do protocolo do Postgres
const maxBindParams = 65535

type InsightRepository interface {
	Upsert(ctx context.Context, level domain.ReportingLevel, insights []*domain.Insight) ([]*domain.Insight, error)
	GetDailySummary(ctx context.Context, level domain.ReportingLevel, since, until time.Time) ([]*domain.DailySummary, error)
	DeleteOlderThan(ctx context.Context, level domain.ReportingLevel, days int) (int64, error)
}

type insightRepository struct {
	conn      postgres.Conn
	maxParams int
}

func NewInsightRepository(conn postgres.Conn) InsightRepository {
	return &insightRepository{
		conn:      conn,
		maxParams: maxBindParams,
	}
}

// Upsert grava o lote numa única transação. Linhas com a mesma chave natural são
// substituídas; o lote é deduplicado antes (a última ocorrência vence).
func (r *insightRepository) Upsert(ctx context.Context, level domain.ReportingLevel, insights []*domain.Insight) ([]*domain.Insight, error) {
	batch := Dedupe(level, insights)
	if len(batch) == 0 {
		return []*domain.Insight{}, nil
	}

	columns := InsightColumns(level, CustomColumns(batch))
	byKey := make(map[domain.InsightKey]*domain.Insight, len(batch))
	for _, insight := range batch {
		key, _ := insight.Key(level)
		byKey[key] = insight
	}

	err := r.conn.RunInTransaction(ctx, func(q postgres.Queryer) error {
		for _, chunk := range Chunk(batch, r.maxParams/len(columns)) {
			query, args, err := BuildUpsertQuery(level, columns, chunk)
			if err != nil {
				return errors.Wrap(err, "erro ao construir a query")
			}

			if err := r.execUpsert(ctx, q, level, query, args, byKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorageError("upsert", level.Table(), err)
	}

	logrus.WithFields(logrus.Fields{
		"table":   level.Table(),
		"records": len(batch),
	}).Debug("repository: upsert concluído")

	return batch, nil
}

func (r *insightRepository) execUpsert(
	ctx context.Context,
	q postgres.Queryer,
	level domain.ReportingLevel,
	query string,
	args []interface{},
	byKey map[domain.InsightKey]*domain.Insight,
) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			entityID  string
			dateStart time.Time
			dateStop  time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &entityID, &dateStart, &dateStop, &updatedAt); err != nil {
			return errors.Wrap(err, "erro ao escanear retorno do upsert")
		}

		key := domain.InsightKey{
			EntityID:  entityID,
			DateStart: dateStart.Format(time.DateOnly),
			DateStop:  dateStop.Format(time.DateOnly),
		}
		if insight, ok := byKey[key]; ok {
			insight.ID = id
			insight.UpdatedAt = updatedAt
		}
	}

	return rows.Err()
}

func (r *insightRepository) GetDailySummary(ctx context.Context, level domain.ReportingLevel, since, until time.Time) ([]*domain.DailySummary, error) {
	query, args, err := BuildDailySummaryQuery(level, since, until)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorageError("daily_summary", level.Table(), err)
	}
	defer rows.Close()

	summaries := make([]*domain.DailySummary, 0)
	for rows.Next() {
		var (
			date    time.Time
			summary domain.DailySummary
		)
		err := rows.Scan(
			&date,
			&summary.Spend,
			&summary.Impressions,
			&summary.Clicks,
			&summary.Leads,
			&summary.Purchases,
			&summary.PurchaseValue,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear resumo diário: %w", err)
		}

		summary.Date = date.Format(time.DateOnly)
		summary.Spend = utils.RoundWithTwoDecimalPlace(summary.Spend)
		summary.PurchaseValue = utils.RoundWithTwoDecimalPlace(summary.PurchaseValue)
		summaries = append(summaries, &summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return summaries, nil
}

func (r *insightRepository) DeleteOlderThan(ctx context.Context, level domain.ReportingLevel, days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)

	query, args, err := squirrel.
		Delete(level.Table()).
		Where(squirrel.Lt{"date_stop": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapStorageError("delete_older_than", level.Table(), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// Dedupe descarta registros sem chave natural e mantém a última ocorrência de cada chave,
// preservando a ordem da primeira aparição
func Dedupe(level domain.ReportingLevel, insights []*domain.Insight) []*domain.Insight {
	position := make(map[domain.InsightKey]int, len(insights))
	result := make([]*domain.Insight, 0, len(insights))

	for _, insight := range insights {
		if insight == nil {
			continue
		}
		key, ok := insight.Key(level)
		if !ok {
			continue
		}

		if i, seen := position[key]; seen {
			result[i] = insight
			continue
		}
		position[key] = len(result)
		result = append(result, insight)
	}

	return result
}

// CustomColumns une as colunas personalizadas presentes no lote, em ordem estável
func CustomColumns(insights []*domain.Insight) []string {
	seen := make(map[string]struct{})
	for _, insight := range insights {
		for column := range insight.CustomConversions {
			seen[column] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func identityColumns(level domain.ReportingLevel) []string {
	switch level {
	case domain.LevelAd:
		return []string{"ad_id", "ad_name", "adset_id", "adset_name", "campaign_id", "campaign_name"}
	case domain.LevelAdSet:
		return []string{"adset_id", "adset_name", "campaign_id", "campaign_name"}
	default:
		return []string{"campaign_id", "campaign_name"}
	}
}

var metricColumns = []string{
	"impressions", "reach", "clicks", "spend", "ctr", "cpm", "cpc",
	"leads", "purchases", "purchase_value", "cpl", "cpp",
}

var mediaColumns = []string{"creative_id", "creative_name", "image_url", "thumbnail_url"}

// InsightColumns lista as colunas gravadas na tabela do nível
func InsightColumns(level domain.ReportingLevel, custom []string) []string {
	columns := []string{"platform", "date_start", "date_stop"}
	columns = append(columns, identityColumns(level)...)
	columns = append(columns, metricColumns...)
	if level == domain.LevelAd {
		columns = append(columns, mediaColumns...)
	}
	return append(columns, custom...)
}

func insightValues(insight *domain.Insight, columns []string) []interface{} {
	values := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		values = append(values, columnValue(insight, column))
	}
	return values
}

func columnValue(i *domain.Insight, column string) interface{} {
	switch column {
	case "platform":
		return i.Platform
	case "date_start":
		return i.DateStart
	case "date_stop":
		return i.DateStop
	case "ad_id":
		return i.AdID
	case "ad_name":
		return i.AdName
	case "adset_id":
		return i.AdSetID
	case "adset_name":
		return i.AdSetName
	case "campaign_id":
		return i.CampaignID
	case "campaign_name":
		return i.CampaignName
	case "impressions":
		return i.Impressions
	case "reach":
		return i.Reach
	case "clicks":
		return i.Clicks
	case "spend":
		return i.Spend
	case "ctr":
		return i.CTR
	case "cpm":
		return i.CPM
	case "cpc":
		return i.CPC
	case domain.ColumnLeads:
		return i.Leads
	case domain.ColumnPurchases:
		return i.Purchases
	case "purchase_value":
		return i.PurchaseValue
	case "cpl":
		return i.CPL
	case "cpp":
		return i.CPP
	case "creative_id":
		return i.CreativeID
	case "creative_name":
		return i.CreativeName
	case "image_url":
		return i.ImageURL
	case "thumbnail_url":
		return i.ThumbnailURL
	}
	return i.CustomConversions[column]
}

// BuildUpsertQuery monta o INSERT multi-linha com ON CONFLICT na chave natural do nível
func BuildUpsertQuery(level domain.ReportingLevel, columns []string, insights []*domain.Insight) (string, []interface{}, error) {
	conflict := level.ConflictColumns()
	isKey := make(map[string]bool, len(conflict))
	for _, column := range conflict {
		isKey[column] = true
	}

	updates := make([]string, 0, len(columns))
	for _, column := range columns {
		if isKey[column] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	updates = append(updates, "updated_at = NOW()")

	query := squirrel.StatementBuilder.
		Insert(level.Table()).
		Columns(columns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, insight := range insights {
		query = query.Values(insightValues(insight, columns)...)
	}

	query = query.Suffix(fmt.Sprintf(
		"ON CONFLICT (%s) DO UPDATE SET %s RETURNING id, %s, updated_at",
		strings.Join(conflict, ", "),
		strings.Join(updates, ", "),
		strings.Join(conflict, ", "),
	))

	return query.ToSql()
}

func BuildDailySummaryQuery(level domain.ReportingLevel, since, until time.Time) (string, []interface{}, error) {
	return squirrel.
		Select(
			"date_start",
			"COALESCE(SUM(spend), 0)",
			"COALESCE(SUM(impressions), 0)",
			"COALESCE(SUM(clicks), 0)",
			"COALESCE(SUM(leads), 0)",
			"COALESCE(SUM(purchases), 0)",
			"COALESCE(SUM(purchase_value), 0)",
		).
		From(level.Table()).
		Where(squirrel.GtOrEq{"date_start": since.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"date_start": until.Format(time.DateOnly)}).
		GroupBy("date_start").
		OrderBy("date_start ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Chunk divide o lote em fatias de no máximo size registros
func Chunk(insights []*domain.Insight, size int) [][]*domain.Insight {
	if size <= 0 {
		size = 1
	}

	chunks := make([][]*domain.Insight, 0, (len(insights)+size-1)/size)
	for start := 0; start < len(insights); start += size {
		end := start + size
		if end > len(insights) {
			end = len(insights)
		}
		chunks = append(chunks, insights[start:end])
	}
	return chunks
}

func wrapStorageError(op, table string, err error) error {
	storageErr := &domain.StorageError{Op: op, Table: table, Err: err}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		storageErr.Code = string(pqErr.Code)
	}

	return storageErr
}
