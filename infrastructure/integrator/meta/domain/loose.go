package metadomain

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loose guarda um escalar que a API devolve ora como string, ora como número, ora null
type Loose string

func (l *Loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Loose(strings.TrimSpace(s))
		return nil
	}

	// números, booleanos e objetos viram texto cru e são tratados na conversão
	*l = Loose(data)
	return nil
}

func (l Loose) String() string {
	return string(l)
}

func (l Loose) IsZero() bool {
	return l == ""
}

// Float64 converte o valor; retorna false para vazio, texto inválido ou não finito
func (l Loose) Float64() (float64, bool) {
	if l == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(string(l), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int64 aceita inteiros e decimais ("5.0" vira 5), truncando a parte fracionária
func (l Loose) Int64() (int64, bool) {
	if l == "" {
		return 0, false
	}

	if i, err := strconv.ParseInt(string(l), 10, 64); err == nil {
		return i, true
	}

	f, ok := l.Float64()
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
