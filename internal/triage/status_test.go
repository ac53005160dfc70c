package triage

import (
	"errors"
	"testing"

	"demandhub/internal/models"
)

func TestParseStatus(t *testing.T) {
	casos := []struct {
		entrada string
		querido StatusTriagem
		erro    bool
	}{
		{"PENDENTE_TRIAGEM", StatusPendenteTriagem, false},
		{"aguardando_info", StatusAguardandoInfo, false},
		{"  Pronto_Discovery  ", StatusProntoDiscovery, false},
		{"DUPLICADO", StatusDuplicado, false},
		{"EM_ANALISE", "", true},
		{"", "", true},
	}
	for _, c := range casos {
		got, err := ParseStatus(c.entrada)
		if c.erro {
			if err == nil {
				t.Errorf("ParseStatus(%q): esperava erro, obteve %q", c.entrada, got)
			} else if !errors.Is(err, ErrStatusInvalido) {
				t.Errorf("ParseStatus(%q): erro não embrulha ErrStatusInvalido: %v", c.entrada, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): erro inesperado %v", c.entrada, err)
			continue
		}
		if got != c.querido {
			t.Errorf("ParseStatus(%q) = %q, esperava %q", c.entrada, got, c.querido)
		}
	}
}

func TestAplicarTransicaoIncrementaRevisaoUmaVez(t *testing.T) {
	tri := &models.Triagem{StatusTriagem: string(StatusAguardandoInfo)}

	de := AplicarTransicao(tri, StatusRetomadoTriagem)
	if de != StatusAguardandoInfo {
		t.Fatalf("de = %q, esperava AGUARDANDO_INFO", de)
	}
	if tri.RevisoesTriagem != 1 {
		t.Fatalf("RevisoesTriagem = %d após retomada, esperava 1", tri.RevisoesTriagem)
	}

	// repetir a mesma transição de origem diferente não conta revisão
	AplicarTransicao(tri, StatusRetomadoTriagem)
	if tri.RevisoesTriagem != 1 {
		t.Fatalf("RevisoesTriagem = %d após retomada redundante, esperava 1", tri.RevisoesTriagem)
	}

	// ciclo completo conta de novo
	AplicarTransicao(tri, StatusAguardandoInfo)
	AplicarTransicao(tri, StatusRetomadoTriagem)
	if tri.RevisoesTriagem != 2 {
		t.Fatalf("RevisoesTriagem = %d após segundo ciclo, esperava 2", tri.RevisoesTriagem)
	}
}

func TestAplicarTransicaoOutrasNaoContamRevisao(t *testing.T) {
	tri := &models.Triagem{StatusTriagem: string(StatusPendenteTriagem)}
	AplicarTransicao(tri, StatusAguardandoInfo)
	AplicarTransicao(tri, StatusProntoDiscovery)
	AplicarTransicao(tri, StatusArquivado)
	if tri.RevisoesTriagem != 0 {
		t.Fatalf("RevisoesTriagem = %d, transições sem retomada não deviam contar", tri.RevisoesTriagem)
	}
}

func TestStatusDemandaSincronizado(t *testing.T) {
	casos := []struct {
		status StatusTriagem
		slug   string
		tem    bool
	}{
		{StatusProntoDiscovery, "triagem", true},
		{StatusArquivado, "arquivado", true},
		{StatusDuplicado, "arquivado", true},
		{StatusPendenteTriagem, "", false},
		{StatusAguardandoInfo, "", false},
		{StatusRetomadoTriagem, "", false},
		{StatusEvoluiuEpico, "", false},
	}
	for _, c := range casos {
		slug, tem := StatusDemandaSincronizado(c.status)
		if tem != c.tem || slug != c.slug {
			t.Errorf("StatusDemandaSincronizado(%s) = (%q, %v), esperava (%q, %v)", c.status, slug, tem, c.slug, c.tem)
		}
	}
}

func TestTerminal(t *testing.T) {
	terminais := []StatusTriagem{StatusEvoluiuEpico, StatusArquivado, StatusDuplicado}
	for _, s := range terminais {
		if !s.Terminal() {
			t.Errorf("%s devia ser terminal", s)
		}
	}
	abertos := []StatusTriagem{StatusPendenteTriagem, StatusAguardandoInfo, StatusRetomadoTriagem, StatusProntoDiscovery}
	for _, s := range abertos {
		if s.Terminal() {
			t.Errorf("%s não devia ser terminal", s)
		}
	}
}
