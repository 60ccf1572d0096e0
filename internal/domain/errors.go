package domain

import (
	"fmt"
)

// ConfigError indica credenciais ou parâmetros ausentes/inválidos.
// É detectado antes de qualquer chamada de rede.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuração inválida (%s): %s", e.Field, e.Reason)
}

// IsRequestError indica que o problema veio dos parâmetros da requisição e não do ambiente
func (e *ConfigError) IsRequestError() bool {
	switch e.Field {
	case "level", "date_range", "start_date", "end_date":
		return true
	}
	return false
}

// UpstreamError representa uma resposta não-2xx ou um payload malformado da API de insights
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil && e.StatusCode == 0 {
		return fmt.Sprintf("erro na resposta da API: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s: %v", e.StatusCode, e.Body, e.Err)
	}
	return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EnrichmentError é a falha de consulta de miniatura de um único criativo
type EnrichmentError struct {
	Ref CreativeRef
	Err error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("falha ao obter miniatura de %s: %v", e.Ref, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// StorageError representa falha no upsert; nada do lote foi gravado
type StorageError struct {
	Op    string
	Table string
	Code  string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("erro de banco em %s (%s, código %s): %v", e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("erro de banco em %s (%s): %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
