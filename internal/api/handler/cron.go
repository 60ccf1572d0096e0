package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/pkg/apiErrors"
)

// SyncTrigger é o agendador de sincronização visto pela API
type SyncTrigger interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// RunCronJob executa manualmente a sincronização de insights
func RunCronJob(service SyncTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("cron: execução manual solicitada")

		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização não disponível", nil)
			return
		}

		if !service.TriggerManualSync() {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Sincronização já em andamento", nil)
			return
		}

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Sincronização iniciada com sucesso",
		})
	}
}

// GetCronStatus retorna o status do agendador
func GetCronStatus(service SyncTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização não disponível", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"insights": service.GetStatus(),
		})
	}
}
