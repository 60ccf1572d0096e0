package apiErrors

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrMethodNotAllowed    = "VAL_004" // Método não suportado
	ErrNotFound            = "VAL_005" // Rota inexistente

	// Erros de configuração
	ErrConfiguration = "CFG_001" // Configuração ausente ou inválida

	// Erros do servidor (5000-5999)
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Erro de comunicação
	ErrTimeout           = "SRV_005" // Tempo limite da execução excedido
	ErrSyncInProgress    = "SRV_006" // Sincronização já em andamento
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrInvalidFormat:       http.StatusBadRequest,
	ErrMethodNotAllowed:    http.StatusMethodNotAllowed,
	ErrNotFound:            http.StatusNotFound,
	ErrConfiguration:       http.StatusInternalServerError,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrDatabaseOperation:   http.StatusInternalServerError,
	ErrExternalService:     http.StatusBadGateway,
	ErrCommunication:       http.StatusServiceUnavailable,
	ErrTimeout:             http.StatusGatewayTimeout,
	ErrSyncInProgress:      http.StatusConflict,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Error   string `json:"error"`             // Mensagem descritiva
	Code    string `json:"code"`              // Código de erro para o cliente
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// StatusFor retorna o status HTTP de um código
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Error:   message,
		Code:    code,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// FromError classifica um erro do pipeline no código de API correspondente
func FromError(err error) APIError {
	if err == nil {
		return APIError{
			Code:  ErrInternalServer,
			Error: "Erro desconhecido",
		}
	}

	var (
		cfgErr      *domain.ConfigError
		upstreamErr *domain.UpstreamError
		storageErr  *domain.StorageError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return APIError{Code: ErrTimeout, Error: "tempo limite da execução excedido"}
	case errors.Is(err, context.Canceled):
		return APIError{Code: ErrCommunication, Error: "execução cancelada"}
	case errors.As(err, &cfgErr):
		code := ErrConfiguration
		if cfgErr.IsRequestError() {
			code = ErrInvalidRequest
		}
		return APIError{Code: code, Error: cfgErr.Error(), Details: map[string]string{"field": cfgErr.Field}}
	case errors.As(err, &upstreamErr):
		return APIError{Code: ErrExternalService, Error: upstreamErr.Error(), Details: map[string]int{"upstream_status": upstreamErr.StatusCode}}
	case errors.As(err, &storageErr):
		details := map[string]string{"table": storageErr.Table}
		if storageErr.Code != "" {
			details["sql_state"] = storageErr.Code
		}
		return APIError{Code: ErrDatabaseOperation, Error: storageErr.Error(), Details: details}
	}

	return APIError{Code: ErrInternalServer, Error: err.Error()}
}

// WriteFromError classifica e escreve o erro na resposta
func WriteFromError(w http.ResponseWriter, err error) {
	apiErr := FromError(err)
	WriteError(w, apiErr.Code, apiErr.Error, apiErr.Details)
}
