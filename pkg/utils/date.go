package utils

import "time"

// ParseDate converte YYYY-MM-DD; string vazia retorna nil
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// LookbackWindow retorna o intervalo de `days` dias terminando ontem
func LookbackWindow(now time.Time, days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	until := today.AddDate(0, 0, -1)
	since := today.AddDate(0, 0, -days)

	return since, until
}
