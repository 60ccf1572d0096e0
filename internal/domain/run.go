package domain

import (
	"fmt"
	"time"
)

// DateWindow seleciona o período pedido à API: intervalo explícito ou preset
type DateWindow struct {
	Since  *time.Time
	Until  *time.Time
	Preset string
}

func (w DateWindow) HasRange() bool {
	return w.Since != nil && w.Until != nil
}

func (w DateWindow) Validate() error {
	if (w.Since == nil) != (w.Until == nil) {
		return &ConfigError{Field: "date_range", Reason: "start_date e end_date devem ser informados juntos"}
	}
	if w.HasRange() && w.Until.Before(*w.Since) {
		return &ConfigError{Field: "date_range", Reason: fmt.Sprintf("end_date %s anterior a start_date %s",
			w.Until.Format(time.DateOnly), w.Since.Format(time.DateOnly))}
	}
	if !w.HasRange() && w.Preset == "" {
		return &ConfigError{Field: "INGEST_DATE_PRESET", Reason: "nenhum período informado"}
	}
	return nil
}

// IngestionResult resume uma execução do pipeline
type IngestionResult struct {
	RunID      string         `json:"run_id"`
	Level      ReportingLevel `json:"level"`
	Message    string         `json:"message"`
	Fetched    int            `json:"fetched"`
	Skipped    int            `json:"skipped"`
	Pages      int            `json:"pages"`
	PageCapHit bool           `json:"page_cap_hit"`
	Lookups    int            `json:"lookups"`
	Warnings   []string       `json:"warnings,omitempty"`
	Data       []*Insight     `json:"data"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// DailySummary agrega as métricas de um dia para o painel
type DailySummary struct {
	Date          string  `json:"date"`
	Spend         float64 `json:"spend"`
	Impressions   int64   `json:"impressions"`
	Clicks        int64   `json:"clicks"`
	Leads         int64   `json:"leads"`
	Purchases     int64   `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
}

// PageProgress é reportado a cada página lida da API de insights
type PageProgress struct {
	Number     int
	Records    int
	CapReached bool
}
