package domain

import "fmt"

// ReportingLevel é o nível de agregação pedido à API de insights
type ReportingLevel string

const (
	LevelAd       ReportingLevel = "ad"
	LevelAdSet    ReportingLevel = "adset"
	LevelCampaign ReportingLevel = "campaign"
)

var reportingLevels = []ReportingLevel{LevelAd, LevelAdSet, LevelCampaign}

func ReportingLevels() []ReportingLevel {
	levels := make([]ReportingLevel, len(reportingLevels))
	copy(levels, reportingLevels)
	return levels
}

func ParseReportingLevel(s string) (ReportingLevel, error) {
	for _, level := range reportingLevels {
		if string(level) == s {
			return level, nil
		}
	}

	return "", &ConfigError{Field: "level", Reason: fmt.Sprintf("nível de relatório inválido: %q", s)}
}

// KeyColumn é a coluna de identidade da entidade no nível
func (l ReportingLevel) KeyColumn() string {
	return string(l) + "_id"
}

func (l ReportingLevel) Table() string {
	return string(l) + "_insights"
}

// ConflictColumns compõe a chave natural usada no upsert
func (l ReportingLevel) ConflictColumns() []string {
	return []string{l.KeyColumn(), "date_start", "date_stop"}
}

// Fields lista os campos pedidos à API para o nível
func (l ReportingLevel) Fields() []string {
	fields := []string{
		"campaign_id", "campaign_name",
		"impressions", "reach", "clicks", "spend", "ctr",
		"actions", "action_values",
		"date_start", "date_stop",
	}

	switch l {
	case LevelAd:
		fields = append(fields, "adset_id", "adset_name", "ad_id", "ad_name")
	case LevelAdSet:
		fields = append(fields, "adset_id", "adset_name")
	}

	return fields
}
