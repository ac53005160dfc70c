package triage

import (
	"strings"
	"unicode"

	"demandhub/internal/models"
)

// Itens fixos do baseline, sempre presentes e obrigatórios.
const (
	ItemDescricaoClara       = "descricao_clara"
	ItemProdutoVinculado     = "produto_vinculado"
	ItemImpactoAvaliado      = "impacto_avaliado"
	ItemUrgenciaAvaliada     = "urgencia_avaliada"
	ItemDuplicidadeRevisada  = "duplicidade_revisada"
)

// Itens condicionais ativados por flags de metadata do catálogo.
const (
	ItemEvidenciaAnexada        = "evidencia_anexada"
	ItemMetricasDefinidas       = "metricas_definidas"
	ItemStakeholderIdentificado = "stakeholder_identificado"
)

// Validadores nomeados reconhecidos. Nomes desconhecidos avaliam como
// satisfeitos. O resultado do validador é informativo: o gate de evolução lê
// apenas a marcação humana de Concluido, nunca o validador.
const (
	ValidadorDescricao = "descricao"
	ValidadorEvidencia = "evidence"
	ValidadorMetricas  = "metrics"
	ValidadorPersona   = "persona"
)

// limiares do validador de descrição clara
const (
	descricaoMinCaracteres = 30
	descricaoMinPalavras   = 5
)

// DerivarChecklist monta o checklist da demanda: baseline fixo, itens
// condicionais pelas flags de metadata dos níveis resolvidos
// (requireEvidence/requireMetrics/requireStakeholder) e itens livres dos
// arrays "checklist" da metadata. Duplicatas por id são descartadas, com a
// definição anterior (baseline) vencendo a colisão.
func DerivarChecklist(impacto, urgencia, complexidade *models.ItemCatalogo) []models.ItemChecklist {
	itens := []models.ItemChecklist{
		{ID: ItemDescricaoClara, Rotulo: "Descrição clara e completa", Obrigatorio: true, Validador: ValidadorDescricao},
		{ID: ItemProdutoVinculado, Rotulo: "Produto corretamente vinculado", Obrigatorio: true},
		{ID: ItemImpactoAvaliado, Rotulo: "Impacto avaliado", Obrigatorio: true},
		{ID: ItemUrgenciaAvaliada, Rotulo: "Urgência avaliada", Obrigatorio: true},
		{ID: ItemDuplicidadeRevisada, Rotulo: "Duplicidades revisadas", Obrigatorio: true},
	}
	vistos := make(map[string]bool, len(itens))
	for _, it := range itens {
		vistos[it.ID] = true
	}

	adicionar := func(item models.ItemChecklist) {
		if item.ID == "" || vistos[item.ID] {
			return
		}
		vistos[item.ID] = true
		itens = append(itens, item)
	}

	niveis := []*models.ItemCatalogo{impacto, urgencia, complexidade}
	for _, nivel := range niveis {
		if nivel == nil {
			continue
		}
		if nivel.MetadataBool("requireEvidence") {
			adicionar(models.ItemChecklist{ID: ItemEvidenciaAnexada, Rotulo: "Evidências anexadas", Obrigatorio: true, Validador: ValidadorEvidencia})
		}
		if nivel.MetadataBool("requireMetrics") {
			adicionar(models.ItemChecklist{ID: ItemMetricasDefinidas, Rotulo: "Métricas de sucesso definidas", Obrigatorio: true, Validador: ValidadorMetricas})
		}
		if nivel.MetadataBool("requireStakeholder") {
			adicionar(models.ItemChecklist{ID: ItemStakeholderIdentificado, Rotulo: "Stakeholder identificado", Obrigatorio: true, Validador: ValidadorPersona})
		}
	}

	for _, nivel := range niveis {
		if nivel == nil {
			continue
		}
		extras, ok := nivel.MetadataMap()["checklist"].([]interface{})
		if !ok {
			continue
		}
		for _, bruto := range extras {
			entrada, ok := bruto.(map[string]interface{})
			if !ok {
				continue
			}
			item := models.ItemChecklist{
				ID:     texto(entrada["id"]),
				Rotulo: texto(entrada["label"]),
			}
			if obrigatorio, ok := entrada["required"].(bool); ok {
				item.Obrigatorio = obrigatorio
			}
			item.Validador = texto(entrada["validator"])
			adicionar(item)
		}
	}

	return itens
}

// MesclarConclusao reaplica a marcação humana de Concluido de um checklist
// existente sobre a lista recém-derivada.
func MesclarConclusao(novos, existentes []models.ItemChecklist) []models.ItemChecklist {
	concluidos := make(map[string]bool, len(existentes))
	for _, it := range existentes {
		if it.Concluido {
			concluidos[it.ID] = true
		}
	}
	for i := range novos {
		if concluidos[novos[i].ID] {
			novos[i].Concluido = true
		}
	}
	return novos
}

// PendentesObrigatorios lista os itens obrigatórios ainda não concluídos.
func PendentesObrigatorios(itens []models.ItemChecklist) []models.ItemChecklist {
	var pendentes []models.ItemChecklist
	for _, it := range itens {
		if it.Obrigatorio && !it.Concluido {
			pendentes = append(pendentes, it)
		}
	}
	return pendentes
}

// AvaliarValidador calcula o sinal informativo do validador nomeado de um
// item. Validadores desconhecidos são sempre satisfeitos. O sinal nunca
// marca o item como concluído: isso exige ação humana.
func AvaliarValidador(item models.ItemChecklist, dem *models.Demanda, numAnexos int) bool {
	switch item.Validador {
	case ValidadorDescricao:
		return len(strings.TrimSpace(dem.Descricao)) >= descricaoMinCaracteres &&
			len(strings.Fields(dem.Descricao)) >= descricaoMinPalavras
	case ValidadorEvidencia:
		return numAnexos > 0
	case ValidadorMetricas:
		return strings.ContainsFunc(dem.Descricao, unicode.IsDigit)
	case ValidadorPersona:
		d := strings.ToLower(dem.Descricao)
		return strings.Contains(d, "persona") || strings.Contains(d, "usuário") || strings.Contains(d, "usuario")
	default:
		return true
	}
}

func texto(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
