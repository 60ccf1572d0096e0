package metaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBody limita quanto do corpo de erro é repassado adiante
const maxErrorBody = 2048

type Client interface {
	FetchInsights(ctx context.Context, params InsightsParams) iter.Seq2[metadomain.RawInsight, error]
	GetCreative(ctx context.Context, creativeID string) (*metadomain.Creative, error)
	GetAdCreative(ctx context.Context, adID string) (*metadomain.Creative, error)
	HandleResponse(resp *http.Response) ([]byte, error)
}

type MetaClient struct {
	Cfg        *config.Config
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// NewClient cria o cliente da Graph API. O limitador é compartilhado por todas as
// chamadas feitas por esta instância, inclusive as consultas de miniaturas.
func NewClient(cfg *config.Config, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Meta.HTTPTimeout}
	}

	limit := rate.Inf
	if cfg.Meta.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Meta.RequestsPerSecond)
	}
	burst := cfg.Meta.RequestsBurst
	if burst <= 0 {
		burst = 1
	}

	return &MetaClient{
		Cfg:        cfg,
		HTTPClient: httpClient,
		Limiter:    rate.NewLimiter(limit, burst),
	}
}

// get faz um GET respeitando o limitador e o contexto da execução
func (c *MetaClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Wait recusa de antemão quando a espera passaria do prazo do contexto
		if _, ok := ctx.Deadline(); ok {
			return nil, fmt.Errorf("meta: limitador de requisições: %v: %w", err, context.DeadlineExceeded)
		}
		return nil, &domain.UpstreamError{Err: fmt.Errorf("limitador de requisições: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Err: fmt.Errorf("erro ao criar a requisição: %w", err)}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logrus.WithError(err).Error("meta: erro ao fazer a requisição")
		return nil, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	return c.HandleResponse(resp)
}

// HandleResponse devolve o corpo das respostas 2xx; qualquer outro status vira UpstreamError
func (c *MetaClient) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("erro ao ler resposta: %w", err)}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}

	upstreamErr := &domain.UpstreamError{StatusCode: resp.StatusCode, Body: truncate(string(body))}
	if errResp := metadomain.ParseErrorResponse(body); errResp != nil {
		upstreamErr.Err = errors.New(errResp.Summary())
	} else if containsTokenExpirationMessage(string(body)) {
		upstreamErr.Err = errors.New("token de acesso expirado ou inválido")
	}

	logrus.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"body":        upstreamErr.Body,
	}).Warn("meta: resposta de erro da API")

	return nil, upstreamErr
}

// containsTokenExpirationMessage verifica se a mensagem contém indicação de token expirado
func containsTokenExpirationMessage(message string) bool {
	return strings.Contains(message, "Error validating access token") ||
		strings.Contains(message, "Session has expired") ||
		strings.Contains(message, "The session has been invalidated")
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
