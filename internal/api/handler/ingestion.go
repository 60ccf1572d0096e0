package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting"
	"github.com/vfg2006/insights-ingestor/pkg/apiErrors"
	"github.com/vfg2006/insights-ingestor/pkg/log"
	"github.com/vfg2006/insights-ingestor/pkg/utils"
)

type syncResponse struct {
	Message    string            `json:"message"`
	RunID      string            `json:"run_id,omitempty"`
	Level      string            `json:"level,omitempty"`
	Fetched    int               `json:"fetched"`
	Skipped    int               `json:"skipped"`
	Pages      int               `json:"pages"`
	PageCapHit bool              `json:"page_cap_hit,omitempty"`
	Data       []*domain.Insight `json:"data"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// SyncInsights dispara a ingestão do nível informado na rota
func SyncInsights(service ingesting.Ingester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := httprouter.ParamsFromContext(r.Context()).ByName("level")
		syncInsights(w, r, service, level)
	})
}

// SyncInsightsForLevel atende as rotas antigas, que têm o nível fixo
func SyncInsightsForLevel(service ingesting.Ingester, level domain.ReportingLevel) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		syncInsights(w, r, service, string(level))
	})
}

func syncInsights(w http.ResponseWriter, r *http.Request, service ingesting.Ingester, rawLevel string) {
	logger := log.ForContext(r.Context())

	level, err := domain.ParseReportingLevel(rawLevel)
	if err != nil {
		logger.WithFields(log.Fields{
			"level": rawLevel,
			"error": err.Error(),
		}).Warn("insights: nível inválido")
		apiErrors.WriteFromError(w, err)
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		logger.WithFields(log.Fields{
			"level": level,
			"error": err.Error(),
		}).Warn("insights: período inválido")
		apiErrors.WriteFromError(w, err)
		return
	}

	logger.WithField("level", level).Info("insights: iniciando sincronização")

	result, err := service.Run(r.Context(), level, window)
	if err != nil {
		logger.WithFields(log.Fields{
			"level": level,
			"error": err.Error(),
		}).Error("insights: falha na sincronização")
		apiErrors.WriteFromError(w, err)
		return
	}

	logger.WithFields(log.Fields{
		"level":  level,
		"run_id": result.RunID,
		"stored": len(result.Data),
	}).Info("insights: sincronização concluída")

	data := result.Data
	if data == nil {
		data = []*domain.Insight{}
	}

	writeJSON(w, r, http.StatusOK, syncResponse{
		Message:    result.Message,
		RunID:      result.RunID,
		Level:      string(result.Level),
		Fetched:    result.Fetched,
		Skipped:    result.Skipped,
		Pages:      result.Pages,
		PageCapHit: result.PageCapHit,
		Data:       data,
		Warnings:   result.Warnings,
	})
}

// parseWindow lê start_date/end_date; sem nenhum dos dois vale o preset configurado
func parseWindow(r *http.Request) (domain.DateWindow, error) {
	query := r.URL.Query()

	since, err := utils.ParseDate(query.Get("start_date"))
	if err != nil {
		return domain.DateWindow{}, &domain.ConfigError{Field: "start_date", Reason: "formato esperado YYYY-MM-DD"}
	}

	until, err := utils.ParseDate(query.Get("end_date"))
	if err != nil {
		return domain.DateWindow{}, &domain.ConfigError{Field: "end_date", Reason: "formato esperado YYYY-MM-DD"}
	}

	window := domain.DateWindow{Since: since, Until: until, Preset: query.Get("date_preset")}
	if (since == nil) != (until == nil) {
		return domain.DateWindow{}, window.Validate()
	}

	return window, nil
}
