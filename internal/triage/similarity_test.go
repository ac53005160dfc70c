package triage

import (
	"testing"

	"demandhub/internal/models"
)

func demandaSim(titulo, descricao, tipo string, produtoID *uint) *models.Demanda {
	return &models.Demanda{Titulo: titulo, Descricao: descricao, Tipo: tipo, ProdutoID: produtoID}
}

func TestSimilaridadeCopiaExataPontua100(t *testing.T) {
	produto := uint(3)
	a := demandaSim("Exportar relatório em PDF", "Permitir exportar o relatório mensal em PDF", "IDEIA", &produto)
	b := demandaSim("Exportar relatório em PDF", "Permitir exportar o relatório mensal em PDF", "IDEIA", &produto)
	if got := Similaridade(a, b); got != 100 {
		t.Fatalf("Similaridade(cópia exata) = %d, esperava 100", got)
	}
}

func TestSimilaridadeConsigoMesma(t *testing.T) {
	a := demandaSim("Login falha no mobile", "Erro 500 ao autenticar pelo aplicativo", "PROBLEMA", nil)
	if got := Similaridade(a, a); got != 100 {
		t.Fatalf("Similaridade(a, a) = %d, esperava 100", got)
	}
}

func TestSimilaridadeSimetrica(t *testing.T) {
	produto := uint(1)
	a := demandaSim("Exportar relatório em PDF", "Relatório mensal em PDF para clientes", "IDEIA", &produto)
	b := demandaSim("Exportação de relatórios", "Exportar dados de clientes em planilha", "IDEIA", &produto)
	ab, ba := Similaridade(a, b), Similaridade(b, a)
	if ab != ba {
		t.Fatalf("Similaridade não simétrica: a->b = %d, b->a = %d", ab, ba)
	}
}

func TestSimilaridadeTextosSemRelacao(t *testing.T) {
	p1, p2 := uint(1), uint(2)
	a := demandaSim("Exportar relatório financeiro", "Gerar planilha de fechamento", "IDEIA", &p1)
	b := demandaSim("Notificações push quebradas", "Dispositivos Android sem alertas", "PROBLEMA", &p2)
	if got := Similaridade(a, b); got >= LimiarHistoricoSimilar {
		t.Fatalf("Similaridade(sem relação) = %d, esperava abaixo de %d", got, LimiarHistoricoSimilar)
	}
}

func TestSimilaridadeProdutoETipoReforcam(t *testing.T) {
	p := uint(5)
	base := demandaSim("Busca lenta", "A busca demora para responder", "PROBLEMA", &p)
	mesmoTudo := demandaSim("Busca lenta", "A busca demora para responder", "PROBLEMA", &p)
	outroProduto := demandaSim("Busca lenta", "A busca demora para responder", "PROBLEMA", nil)

	comTudo := Similaridade(base, mesmoTudo)
	semProduto := Similaridade(base, outroProduto)
	if comTudo <= semProduto {
		t.Fatalf("mesmo produto devia reforçar: com = %d, sem = %d", comTudo, semProduto)
	}
	if comTudo-semProduto != pesoProduto {
		t.Fatalf("diferença de produto = %d, esperava %d", comTudo-semProduto, pesoProduto)
	}
}

func TestSimilaridadeProdutoAmbosNulosConta(t *testing.T) {
	a := demandaSim("Tema escuro", "Suporte a tema escuro na interface", "IDEIA", nil)
	b := demandaSim("Tema escuro", "Suporte a tema escuro na interface", "IDEIA", nil)
	if got := Similaridade(a, b); got != 100 {
		t.Fatalf("ambos sem produto deviam contar como mesmo produto: %d", got)
	}
}

func TestSimilaridadeDemandasVazias(t *testing.T) {
	a := demandaSim("", "", "IDEIA", nil)
	b := demandaSim("", "", "IDEIA", nil)
	if got := Similaridade(a, b); got != 100 {
		t.Fatalf("duas demandas vazias idênticas = %d, esperava 100", got)
	}
}

func TestTokenizar(t *testing.T) {
	tokens := tokenizar("A busca, a BUSCA! é lenta (v2)")
	esperados := []string{"busca", "lenta", "v2"}
	for _, e := range esperados {
		if _, ok := tokens[e]; !ok {
			t.Errorf("token %q ausente em %v", e, tokens)
		}
	}
	if _, ok := tokens["a"]; ok {
		t.Errorf("token de uma letra não devia entrar")
	}
	// "é" é uma única runa, fica de fora
	if _, ok := tokens["é"]; ok {
		t.Errorf("token de uma runa não devia entrar")
	}
}

func TestSobreposicao(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}
	if got := sobreposicao(a, b); got != 0.5 {
		t.Errorf("sobreposicao = %v, esperava 0.5", got)
	}
	if got := sobreposicao(nil, nil); got != 1 {
		t.Errorf("dois conjuntos vazios = %v, esperava 1", got)
	}
	if got := sobreposicao(a, nil); got != 0 {
		t.Errorf("um conjunto vazio = %v, esperava 0", got)
	}
}
