package triage

import (
	"errors"
	"strings"
)

var (
	// ErrStatusInvalido indica um nome de status que não mapeia para o enum.
	ErrStatusInvalido = errors.New("status de triagem inválido")

	// ErrDemandaNaoEncontrada indica demanda ou triagem ausente para o tenant.
	ErrDemandaNaoEncontrada = errors.New("Demanda não encontrada para triagem")

	// ErrDuplicidadePropria indica tentativa de marcar uma triagem como
	// duplicada dela mesma.
	ErrDuplicidadePropria = errors.New("uma triagem não pode ser duplicada dela mesma")
)

// ErroValidacao carrega TODAS as violações que impedem a evolução para
// discovery, não apenas a primeira, para que o chamador resolva tudo em uma
// única ida e volta.
type ErroValidacao struct {
	Violacoes []string
}

func (e *ErroValidacao) Error() string {
	return "validação falhou: " + strings.Join(e.Violacoes, "; ")
}

// NovoErroValidacao retorna nil quando não há violação.
func NovoErroValidacao(violacoes []string) error {
	if len(violacoes) == 0 {
		return nil
	}
	return &ErroValidacao{Violacoes: violacoes}
}
