package triage

import (
	"testing"

	"demandhub/internal/models"
)

func idsDoChecklist(itens []models.ItemChecklist) []string {
	ids := make([]string, 0, len(itens))
	for _, it := range itens {
		ids = append(ids, it.ID)
	}
	return ids
}

func contemID(itens []models.ItemChecklist, id string) bool {
	for _, it := range itens {
		if it.ID == id {
			return true
		}
	}
	return false
}

func TestDerivarChecklistBaseline(t *testing.T) {
	itens := DerivarChecklist(nil, nil, nil)
	if len(itens) != 5 {
		t.Fatalf("baseline tem %d itens, esperava 5: %v", len(itens), idsDoChecklist(itens))
	}
	for _, id := range []string{ItemDescricaoClara, ItemProdutoVinculado, ItemImpactoAvaliado, ItemUrgenciaAvaliada, ItemDuplicidadeRevisada} {
		if !contemID(itens, id) {
			t.Errorf("baseline sem item %q", id)
		}
	}
	for _, it := range itens {
		if !it.Obrigatorio {
			t.Errorf("item %q do baseline devia ser obrigatório", it.ID)
		}
		if it.Concluido {
			t.Errorf("item %q derivado já concluído", it.ID)
		}
	}
}

func TestDerivarChecklistCondicionais(t *testing.T) {
	impacto := &models.ItemCatalogo{Slug: "critico", Metadata: `{"requireEvidence":true,"requireStakeholder":true}`}
	complexidade := &models.ItemCatalogo{Slug: "alta", Metadata: `{"requireMetrics":true}`}

	itens := DerivarChecklist(impacto, nil, complexidade)
	if len(itens) != 8 {
		t.Fatalf("checklist com %d itens, esperava 8: %v", len(itens), idsDoChecklist(itens))
	}
	for _, id := range []string{ItemEvidenciaAnexada, ItemMetricasDefinidas, ItemStakeholderIdentificado} {
		if !contemID(itens, id) {
			t.Errorf("item condicional %q ausente", id)
		}
	}
}

func TestDerivarChecklistCondicionaisNaoDuplicam(t *testing.T) {
	// a mesma flag em dois níveis gera o item uma vez só
	impacto := &models.ItemCatalogo{Slug: "alto", Metadata: `{"requireEvidence":true}`}
	urgencia := &models.ItemCatalogo{Slug: "critico", Metadata: `{"requireEvidence":true}`}

	itens := DerivarChecklist(impacto, urgencia, nil)
	vezes := 0
	for _, it := range itens {
		if it.ID == ItemEvidenciaAnexada {
			vezes++
		}
	}
	if vezes != 1 {
		t.Fatalf("evidencia_anexada apareceu %d vezes, esperava 1", vezes)
	}
}

func TestDerivarChecklistItensLivres(t *testing.T) {
	impacto := &models.ItemCatalogo{
		Slug: "alto",
		Metadata: `{"checklist":[
			{"id":"aprovacao_juridico","label":"Aprovação do jurídico","required":true},
			{"id":"descricao_clara","label":"Tentativa de colisão","required":false},
			{"label":"Sem id, descartado"},
			{"id":"nota_interna","label":"Nota interna","required":false,"validator":"persona"}
		]}`,
	}

	itens := DerivarChecklist(impacto, nil, nil)

	if !contemID(itens, "aprovacao_juridico") {
		t.Fatalf("item livre não entrou: %v", idsDoChecklist(itens))
	}
	if !contemID(itens, "nota_interna") {
		t.Fatalf("item livre opcional não entrou: %v", idsDoChecklist(itens))
	}
	// colisão com o baseline: a definição do baseline vence
	for _, it := range itens {
		if it.ID == ItemDescricaoClara && (!it.Obrigatorio || it.Rotulo == "Tentativa de colisão") {
			t.Fatalf("colisão sobrescreveu o baseline: %+v", it)
		}
		if it.ID == "nota_interna" && it.Validador != ValidadorPersona {
			t.Errorf("validador do item livre = %q, esperava persona", it.Validador)
		}
	}
	if len(itens) != 7 {
		t.Fatalf("checklist com %d itens, esperava 7 (5 baseline + 2 livres): %v", len(itens), idsDoChecklist(itens))
	}
}

func TestMesclarConclusao(t *testing.T) {
	existentes := []models.ItemChecklist{
		{ID: ItemDescricaoClara, Concluido: true},
		{ID: ItemImpactoAvaliado, Concluido: false},
		{ID: "item_que_sumiu", Concluido: true},
	}
	novos := DerivarChecklist(nil, nil, nil)
	novos = MesclarConclusao(novos, existentes)

	for _, it := range novos {
		switch it.ID {
		case ItemDescricaoClara:
			if !it.Concluido {
				t.Errorf("conclusão humana de %q perdida na rederivação", it.ID)
			}
		default:
			if it.Concluido {
				t.Errorf("item %q concluído sem marcação humana", it.ID)
			}
		}
	}
}

func TestPendentesObrigatorios(t *testing.T) {
	itens := []models.ItemChecklist{
		{ID: "a", Obrigatorio: true, Concluido: true},
		{ID: "b", Obrigatorio: true, Concluido: false},
		{ID: "c", Obrigatorio: false, Concluido: false},
	}
	pendentes := PendentesObrigatorios(itens)
	if len(pendentes) != 1 || pendentes[0].ID != "b" {
		t.Fatalf("pendentes = %v, esperava apenas b", idsDoChecklist(pendentes))
	}
}

func TestAvaliarValidador(t *testing.T) {
	longa := "Como persona de usuário final, preciso de um relatório com 3 métricas de sucesso bem definidas"
	curta := "muito curto"

	casos := []struct {
		nome      string
		item      models.ItemChecklist
		descricao string
		anexos    int
		querido   bool
	}{
		{"descrição longa satisfaz", models.ItemChecklist{Validador: ValidadorDescricao}, longa, 0, true},
		{"descrição curta não satisfaz", models.ItemChecklist{Validador: ValidadorDescricao}, curta, 0, false},
		{"evidência com anexo", models.ItemChecklist{Validador: ValidadorEvidencia}, longa, 1, true},
		{"evidência sem anexo", models.ItemChecklist{Validador: ValidadorEvidencia}, longa, 0, false},
		{"métricas com dígito", models.ItemChecklist{Validador: ValidadorMetricas}, longa, 0, true},
		{"métricas sem dígito", models.ItemChecklist{Validador: ValidadorMetricas}, "sem numeros aqui", 0, false},
		{"persona presente", models.ItemChecklist{Validador: ValidadorPersona}, longa, 0, true},
		{"persona ausente", models.ItemChecklist{Validador: ValidadorPersona}, "relatório financeiro", 0, false},
		{"validador desconhecido satisfaz", models.ItemChecklist{Validador: "desconhecido"}, curta, 0, true},
		{"sem validador satisfaz", models.ItemChecklist{}, curta, 0, true},
	}
	for _, c := range casos {
		dem := &models.Demanda{Descricao: c.descricao}
		if got := AvaliarValidador(c.item, dem, c.anexos); got != c.querido {
			t.Errorf("%s: AvaliarValidador = %v, esperava %v", c.nome, got, c.querido)
		}
	}
}
