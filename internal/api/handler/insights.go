package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting"
	"github.com/vfg2006/insights-ingestor/pkg/apiErrors"
	"github.com/vfg2006/insights-ingestor/pkg/log"
	"github.com/vfg2006/insights-ingestor/pkg/utils"
)

const defaultSummaryDays = 30

type dailySummaryResponse struct {
	Message   string                 `json:"message"`
	Level     string                 `json:"level"`
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Data      []*domain.DailySummary `json:"data"`
}

// GetDailySummary retorna os totais diários gravados para o painel
func GetDailySummary(service ingesting.Ingester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		level, err := domain.ParseReportingLevel(httprouter.ParamsFromContext(r.Context()).ByName("level"))
		if err != nil {
			apiErrors.WriteFromError(w, err)
			return
		}

		window, err := parseWindow(r)
		if err != nil {
			apiErrors.WriteFromError(w, err)
			return
		}

		since, until := utils.LookbackWindow(time.Now(), defaultSummaryDays)
		if window.HasRange() {
			since, until = *window.Since, *window.Until
		}

		summary, err := service.DailySummary(r.Context(), level, since, until)
		if err != nil {
			logger.WithFields(log.Fields{
				"level": level,
				"error": err.Error(),
			}).Error("insights: falha ao consultar resumo diário")
			apiErrors.WriteFromError(w, err)
			return
		}

		if summary == nil {
			summary = []*domain.DailySummary{}
		}

		message := "Daily summary retrieved."
		if len(summary) == 0 {
			message = "No data returned."
		}

		writeJSON(w, r, http.StatusOK, dailySummaryResponse{
			Message:   message,
			Level:     string(level),
			StartDate: since.Format(time.DateOnly),
			EndDate:   until.Format(time.DateOnly),
			Data:      summary,
		})
	})
}
