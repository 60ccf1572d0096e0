package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const runIDSize = 12

// GenerateRunID identifica uma execução do pipeline nos logs e na resposta
func GenerateRunID() (string, error) {
	return gonanoid.Generate(characters, runIDSize)
}
