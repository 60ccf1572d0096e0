package metaclient

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

const defaultMaxPages = 50

// InsightsParams descreve uma leitura paginada de /{account}/insights
type InsightsParams struct {
	Level         domain.ReportingLevel
	Fields        []string
	Window        domain.DateWindow
	TimeIncrement int
	Limit         int
	MaxPages      int

	// OnPage é chamado uma vez por página decodificada, antes dos registros serem entregues
	OnPage func(domain.PageProgress)
}

// FetchInsights percorre as páginas seguindo paging.next. A sequência é preguiçosa:
// cada página só é pedida quando a anterior foi consumida. Um erro encerra a sequência.
func (c *MetaClient) FetchInsights(ctx context.Context, params InsightsParams) iter.Seq2[metadomain.RawInsight, error] {
	maxPages := params.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return func(yield func(metadomain.RawInsight, error) bool) {
		next := c.insightsURL(params)

		for page := 1; next != ""; page++ {
			body, err := c.get(ctx, next)
			if err != nil {
				yield(metadomain.RawInsight{}, err)
				return
			}

			var resp metadomain.InsightsPage
			if err := json.Unmarshal(body, &resp); err != nil {
				yield(metadomain.RawInsight{}, &domain.UpstreamError{
					StatusCode: 200,
					Body:       truncate(string(body)),
					Err:        fmt.Errorf("payload malformado: %w", err),
				})
				return
			}

			next = resp.NextURL()
			if len(resp.Data) == 0 {
				next = ""
			}

			capReached := next != "" && page >= maxPages
			if params.OnPage != nil {
				params.OnPage(domain.PageProgress{Number: page, Records: len(resp.Data), CapReached: capReached})
			}

			logrus.WithFields(logrus.Fields{
				"level":   params.Level,
				"page":    page,
				"records": len(resp.Data),
			}).Debug("meta: página de insights recebida")

			for _, record := range resp.Data {
				if !yield(record, nil) {
					return
				}
			}

			if capReached {
				logrus.WithFields(logrus.Fields{
					"level":     params.Level,
					"max_pages": maxPages,
				}).Warn("meta: limite de páginas atingido, interrompendo paginação")
				return
			}
		}
	}
}

func (c *MetaClient) insightsURL(params InsightsParams) string {
	values := url.Values{}
	values.Set("access_token", c.Cfg.Meta.AccessToken)
	values.Set("level", string(params.Level))
	values.Set("fields", strings.Join(params.Fields, ","))

	if params.Window.HasRange() {
		values.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
			params.Window.Since.Format(time.DateOnly), params.Window.Until.Format(time.DateOnly)))
	} else if params.Window.Preset != "" {
		values.Set("date_preset", params.Window.Preset)
	}

	if params.TimeIncrement > 0 {
		values.Set("time_increment", strconv.Itoa(params.TimeIncrement))
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}

	return fmt.Sprintf("%s/%s/insights?%s", c.Cfg.Meta.URL, c.Cfg.Meta.AccountPath(), values.Encode())
}
