package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

const creativeFields = "id,name,image_url,thumbnail_url"

// GetCreative consulta /{creative_id} com o tamanho de miniatura configurado
func (c *MetaClient) GetCreative(ctx context.Context, creativeID string) (*metadomain.Creative, error) {
	body, err := c.get(ctx, c.objectURL(creativeID, creativeFields))
	if err != nil {
		return nil, err
	}

	var creative metadomain.Creative
	if err := json.Unmarshal(body, &creative); err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Body: truncate(string(body)), Err: fmt.Errorf("payload malformado: %w", err)}
	}

	return &creative, nil
}

// GetAdCreative consulta /{ad_id}?fields=creative{...}; devolve nil se o anúncio não tiver criativo
func (c *MetaClient) GetAdCreative(ctx context.Context, adID string) (*metadomain.Creative, error) {
	body, err := c.get(ctx, c.objectURL(adID, "creative{"+creativeFields+"}"))
	if err != nil {
		return nil, err
	}

	var ad metadomain.AdWithCreative
	if err := json.Unmarshal(body, &ad); err != nil {
		return nil, &domain.UpstreamError{StatusCode: 200, Body: truncate(string(body)), Err: fmt.Errorf("payload malformado: %w", err)}
	}

	return ad.Creative, nil
}

func (c *MetaClient) objectURL(id, fields string) string {
	values := url.Values{}
	values.Set("access_token", c.Cfg.Meta.AccessToken)
	values.Set("fields", fields)

	if c.Cfg.Ingestion.ThumbnailWidth > 0 {
		values.Set("thumbnail_width", strconv.Itoa(c.Cfg.Ingestion.ThumbnailWidth))
	}
	if c.Cfg.Ingestion.ThumbnailHeight > 0 {
		values.Set("thumbnail_height", strconv.Itoa(c.Cfg.Ingestion.ThumbnailHeight))
	}

	return fmt.Sprintf("%s/%s?%s", c.Cfg.Meta.URL, url.PathEscape(id), values.Encode())
}
