package domain

import (
	"time"
)

// PlatformMeta identifica a origem dos registros
const PlatformMeta = "Meta"

// Colunas de conversão padrão, sempre presentes no registro
const (
	ColumnLeads     = "leads"
	ColumnPurchases = "purchases"
)

// InsightMetrics contém as métricas derivadas de um registro bruto
type InsightMetrics struct {
	Impressions   int64   `json:"impressions"`
	Reach         int64   `json:"reach"`
	Clicks        int64   `json:"clicks"`
	Spend         float64 `json:"spend"`
	CTR           float64 `json:"ctr"`
	CPM           float64 `json:"cpm"`
	CPC           float64 `json:"cpc"`
	Leads         int64   `json:"leads"`
	Purchases     int64   `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
	CPL           float64 `json:"cpl"`
	CPP           float64 `json:"cpp"`
}

// Insight é o registro normalizado persistido por nível
type Insight struct {
	ID        int64     `json:"id,omitempty"`
	Platform  string    `json:"platform"`
	DateStart string    `json:"date_start"`
	DateStop  string    `json:"date_stop"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	AdID         *string `json:"ad_id"`
	AdName       *string `json:"ad_name"`
	AdSetID      *string `json:"adset_id"`
	AdSetName    *string `json:"adset_name"`
	CampaignID   *string `json:"campaign_id"`
	CampaignName *string `json:"campaign_name"`

	InsightMetrics

	CustomConversions map[string]int64 `json:"custom_conversions"`

	CreativeID   *string `json:"creative_id"`
	CreativeName *string `json:"creative_name"`
	ImageURL     *string `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// EntityID retorna o identificador da entidade do nível informado
func (i *Insight) EntityID(level ReportingLevel) *string {
	switch level {
	case LevelAd:
		return i.AdID
	case LevelAdSet:
		return i.AdSetID
	case LevelCampaign:
		return i.CampaignID
	}
	return nil
}

// Key retorna a chave natural do registro e false quando ela está incompleta
func (i *Insight) Key(level ReportingLevel) (InsightKey, bool) {
	id := i.EntityID(level)
	if id == nil || *id == "" || i.DateStart == "" || i.DateStop == "" {
		return InsightKey{}, false
	}

	return InsightKey{EntityID: *id, DateStart: i.DateStart, DateStop: i.DateStop}, true
}

func (i *Insight) HasThumbnail() bool {
	return i.ThumbnailURL != nil && *i.ThumbnailURL != ""
}

// ApplyCreative preenche apenas os campos de mídia ainda nulos
func (i *Insight) ApplyCreative(c *Creative) {
	if c == nil {
		return
	}

	if i.CreativeID == nil && c.ID != "" {
		i.CreativeID = StringPtr(c.ID)
	}
	if i.CreativeName == nil && c.Name != "" {
		i.CreativeName = StringPtr(c.Name)
	}
	if i.ImageURL == nil && c.ImageURL != "" {
		i.ImageURL = StringPtr(c.ImageURL)
	}
	if i.ThumbnailURL == nil && c.ThumbnailURL != "" {
		i.ThumbnailURL = StringPtr(c.ThumbnailURL)
	}
}

type InsightKey struct {
	EntityID  string
	DateStart string
	DateStop  string
}

// Creative é o descritor de mídia resolvido para um anúncio
type Creative struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// CreativeRef identifica o que deve ser consultado para obter a miniatura:
// o próprio criativo ou, na falta dele, o anúncio
type CreativeRef struct {
	CreativeID string
	AdID       string
}

func (r CreativeRef) String() string {
	if r.CreativeID != "" {
		return r.CreativeID
	}
	return r.AdID
}

// StringPtr devolve nil para strings vazias
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
