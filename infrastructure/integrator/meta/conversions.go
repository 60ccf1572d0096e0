package meta

import (
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

// ExtractConversions soma as ações nos contadores nomeados. Todas as colunas
// (padrão e personalizadas) existem no resultado, começando em zero.
func ExtractConversions(actions []metadomain.Action, table domain.ConversionTable) map[string]int64 {
	counters := map[string]int64{
		domain.ColumnLeads:     0,
		domain.ColumnPurchases: 0,
	}
	for _, column := range table.Columns {
		counters[column] = 0
	}

	for _, action := range actions {
		value, ok := action.Value.Int64()
		if !ok || value < 0 {
			if !action.Value.IsZero() {
				logrus.WithFields(logrus.Fields{
					"action_type":  action.ActionType,
					"action_value": action.Value.String(),
				}).Warn("meta: valor de ação inválido, ignorando")
			}
			continue
		}

		switch action.ActionType {
		case domain.ActionTypeLead:
			counters[domain.ColumnLeads] += value
		case domain.ActionTypePurchase:
			counters[domain.ColumnPurchases] += value
		}

		if column, ok := matchCustomColumn(action, table); ok {
			counters[column] += value
		}
	}

	return counters
}

func matchCustomColumn(action metadomain.Action, table domain.ConversionTable) (string, bool) {
	if len(table.Columns) == 0 {
		return "", false
	}

	byTarget := func() (string, bool) {
		if action.ActionTargetID.IsZero() {
			return "", false
		}
		column, ok := table.Columns[action.ActionTargetID.String()]
		return column, ok
	}
	byType := func() (string, bool) {
		column, ok := table.Columns[action.ActionType]
		return column, ok
	}

	switch table.Match {
	case domain.MatchTargetID:
		return byTarget()
	case domain.MatchActionType:
		return byType()
	default:
		if column, ok := byTarget(); ok {
			return column, true
		}
		return byType()
	}
}
