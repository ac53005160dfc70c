package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// GenerateID gera um ID hexadecimal aleatório
func GenerateID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// FormatTime formata tempo no padrão do sistema
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ValidateTitulo valida o título de uma demanda
func ValidateTitulo(titulo string) bool {
	if len(titulo) == 0 || len(titulo) > 255 {
		return false
	}
	return true
}
