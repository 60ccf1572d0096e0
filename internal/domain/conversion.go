package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// MatchMode define como uma ação é associada a uma conversão personalizada
type MatchMode string

const (
	MatchTargetID   MatchMode = "target_id"
	MatchActionType MatchMode = "action_type"
	MatchAny        MatchMode = "any"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchTargetID, MatchActionType, MatchAny:
		return MatchMode(s), nil
	case "":
		return MatchAny, nil
	}
	return "", &ConfigError{Field: "INGEST_CONVERSION_MATCH", Reason: fmt.Sprintf("modo inválido: %q", s)}
}

// Tipos de ação das conversões padrão
const (
	ActionTypeLead     = "lead"
	ActionTypePurchase = "purchase"
)

var columnNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var reservedColumns = map[string]struct{}{
	"id": {}, "platform": {}, "date_start": {}, "date_stop": {}, "updated_at": {}, "created_at": {},
	"ad_id": {}, "ad_name": {}, "adset_id": {}, "adset_name": {}, "campaign_id": {}, "campaign_name": {},
	"impressions": {}, "reach": {}, "clicks": {}, "spend": {}, "ctr": {}, "cpm": {}, "cpc": {},
	ColumnLeads: {}, ColumnPurchases: {}, "purchase_value": {}, "cpl": {}, "cpp": {},
	"creative_id": {}, "creative_name": {}, "image_url": {}, "thumbnail_url": {},
}

// ConversionTable mapeia identificador de ação para nome de coluna
type ConversionTable struct {
	Columns map[string]string
	Match   MatchMode
}

// ColumnNames retorna as colunas personalizadas em ordem estável
func (t ConversionTable) ColumnNames() []string {
	seen := make(map[string]struct{}, len(t.Columns))
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		if _, ok := seen[column]; ok {
			continue
		}
		seen[column] = struct{}{}
		names = append(names, column)
	}
	sort.Strings(names)
	return names
}

func (t ConversionTable) Validate() error {
	for id, column := range t.Columns {
		if id == "" {
			return &ConfigError{Field: "INGEST_CUSTOM_CONVERSIONS", Reason: "identificador de conversão vazio"}
		}
		if !columnNamePattern.MatchString(column) {
			return &ConfigError{Field: "INGEST_CUSTOM_CONVERSIONS", Reason: fmt.Sprintf("nome de coluna inválido: %q", column)}
		}
		if _, ok := reservedColumns[column]; ok {
			return &ConfigError{Field: "INGEST_CUSTOM_CONVERSIONS", Reason: fmt.Sprintf("coluna reservada: %q", column)}
		}
	}

	if _, err := ParseMatchMode(string(t.Match)); err != nil {
		return err
	}

	return nil
}
