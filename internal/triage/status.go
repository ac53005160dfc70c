package triage

import (
	"fmt"
	"strings"

	"demandhub/internal/catalog"
	"demandhub/internal/models"
)

// StatusTriagem é o tipo fechado de status da triagem. Valores chegam dos
// comandos como texto livre e são rejeitados cedo com ErrStatusInvalido
// quando não mapeiam para um dos valores conhecidos.
type StatusTriagem string

const (
	StatusPendenteTriagem StatusTriagem = "PENDENTE_TRIAGEM"
	StatusAguardandoInfo  StatusTriagem = "AGUARDANDO_INFO"
	StatusRetomadoTriagem StatusTriagem = "RETOMADO_TRIAGEM"
	StatusProntoDiscovery StatusTriagem = "PRONTO_DISCOVERY"
	StatusEvoluiuEpico    StatusTriagem = "EVOLUIU_EPICO"
	StatusArquivado       StatusTriagem = "ARQUIVADO_TRIAGEM"
	StatusDuplicado       StatusTriagem = "DUPLICADO"
)

var statusConhecidos = map[StatusTriagem]bool{
	StatusPendenteTriagem: true,
	StatusAguardandoInfo:  true,
	StatusRetomadoTriagem: true,
	StatusProntoDiscovery: true,
	StatusEvoluiuEpico:    true,
	StatusArquivado:       true,
	StatusDuplicado:       true,
}

// ParseStatus converte o texto de um comando para o tipo fechado.
func ParseStatus(valor string) (StatusTriagem, error) {
	s := StatusTriagem(strings.ToUpper(strings.TrimSpace(valor)))
	if !statusConhecidos[s] {
		return "", fmt.Errorf("%w: %q", ErrStatusInvalido, valor)
	}
	return s, nil
}

// Terminal informa se o status não admite novas operações de mudança de
// status (campos não relacionados a status ainda podem ser escritos).
func (s StatusTriagem) Terminal() bool {
	switch s {
	case StatusEvoluiuEpico, StatusArquivado, StatusDuplicado:
		return true
	}
	return false
}

// AplicarTransicao valida e aplica a transição pedida na triagem.
// O grafo observado é permissivo: qualquer status conhecido é aceito; apenas
// nomes desconhecidos falham (já barrados em ParseStatus). A única transição
// com efeito colateral contado é AGUARDANDO_INFO -> RETOMADO_TRIAGEM, que
// incrementa RevisoesTriagem exatamente uma vez.
func AplicarTransicao(tri *models.Triagem, para StatusTriagem) (de StatusTriagem) {
	de = StatusTriagem(tri.StatusTriagem)
	if de == StatusAguardandoInfo && para == StatusRetomadoTriagem {
		tri.RevisoesTriagem++
	}
	tri.StatusTriagem = string(para)
	return de
}

// StatusDemandaSincronizado devolve o slug de status de demanda que deve
// acompanhar o novo status de triagem, quando houver sincronização.
func StatusDemandaSincronizado(s StatusTriagem) (string, bool) {
	switch s {
	case StatusProntoDiscovery:
		return catalog.StatusDemandaTriagem, true
	case StatusArquivado, StatusDuplicado:
		return catalog.StatusDemandaArquivado, true
	}
	return "", false
}
