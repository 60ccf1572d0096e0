package meta

import (
	"math"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

// NormalizeMetrics converte os contadores brutos em métricas tipadas.
// Nunca falha: valor ausente ou inválido vira zero e razões só são calculadas
// com denominador estritamente positivo.
func NormalizeMetrics(raw *metadomain.RawInsight, conversions map[string]int64) domain.InsightMetrics {
	impressions := parseCount(raw.Impressions, "impressions")
	clicks := parseCount(raw.Clicks, "clicks")
	spend := parseAmount(raw.Spend, "spend")

	leads := nonNegativeInt(conversions[domain.ColumnLeads])
	purchases := nonNegativeInt(conversions[domain.ColumnPurchases])

	return domain.InsightMetrics{
		Impressions:   impressions,
		Reach:         parseCount(raw.Reach, "reach"),
		Clicks:        clicks,
		Spend:         spend,
		CTR:           parseAmount(raw.CTR, "ctr"),
		CPM:           ratio(spend, impressions) * 1000,
		CPC:           ratio(spend, clicks),
		Leads:         leads,
		Purchases:     purchases,
		PurchaseValue: ExtractPurchaseValue(raw.ActionValues),
		CPL:           ratio(spend, leads),
		CPP:           ratio(spend, purchases),
	}
}

// ExtractPurchaseValue soma os valores de compra de action_values
func ExtractPurchaseValue(actionValues []metadomain.Action) float64 {
	total := 0.0
	for _, action := range actionValues {
		if action.ActionType != domain.ActionTypePurchase {
			continue
		}
		total += parseAmount(action.Value, "action_values.purchase")
	}
	return total
}

func ratio(numerator float64, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return sanitize(numerator / float64(denominator))
}

func parseCount(value metadomain.Loose, field string) int64 {
	n, ok := value.Int64()
	if !ok {
		warnUnparseable(value, field)
		return 0
	}
	return nonNegativeInt(n)
}

func parseAmount(value metadomain.Loose, field string) float64 {
	f, ok := value.Float64()
	if !ok {
		warnUnparseable(value, field)
		return 0
	}
	return sanitize(f)
}

func warnUnparseable(value metadomain.Loose, field string) {
	if value.IsZero() {
		return
	}
	logrus.WithFields(logrus.Fields{
		"field": field,
		"value": value.String(),
	}).Warn("meta: valor numérico inválido, usando zero")
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func nonNegativeInt(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
