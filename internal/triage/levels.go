package triage

import (
	"fmt"
	"strings"
)

// Níveis de avaliação da triagem. São os valores canônicos gravados na
// Triagem; rótulos e metadata por tenant vivem no catálogo
// (impacto_nivel/urgencia_nivel/complexidade_nivel).
const (
	NivelBaixo   = "BAIXO"
	NivelMedio   = "MEDIO"
	NivelAlto    = "ALTO"
	NivelCritico = "CRITICO"

	ComplexidadeBaixa = "BAIXA"
	ComplexidadeMedia = "MEDIA"
	ComplexidadeAlta  = "ALTA"
)

var niveisImpactoUrgencia = map[string]bool{
	NivelBaixo: true, NivelMedio: true, NivelAlto: true, NivelCritico: true,
}

var niveisComplexidade = map[string]bool{
	ComplexidadeBaixa: true, ComplexidadeMedia: true, ComplexidadeAlta: true,
}

func normalizarNivel(valor string) string {
	return strings.ToUpper(strings.TrimSpace(valor))
}

// ParseImpacto valida um valor de impacto vindo de comando ou de ação de regra.
func ParseImpacto(valor string) (string, error) {
	n := normalizarNivel(valor)
	if !niveisImpactoUrgencia[n] {
		return "", fmt.Errorf("impacto desconhecido: %q", valor)
	}
	return n, nil
}

// ParseUrgencia valida um valor de urgência.
func ParseUrgencia(valor string) (string, error) {
	n := normalizarNivel(valor)
	if !niveisImpactoUrgencia[n] {
		return "", fmt.Errorf("urgência desconhecida: %q", valor)
	}
	return n, nil
}

// ParseComplexidade valida um valor de complexidade.
func ParseComplexidade(valor string) (string, error) {
	n := normalizarNivel(valor)
	if !niveisComplexidade[n] {
		return "", fmt.Errorf("complexidade desconhecida: %q", valor)
	}
	return n, nil
}
