package triage

import (
	"strings"

	"demandhub/internal/models"
)

// Contexto é o retrato somente-leitura construído por avaliação. Condições
// referenciam campos por caminho pontilhado (ex.: demand.tipo,
// demand.triagem.impacto). A avaliação nunca muta o contexto.
type Contexto struct {
	TenantID  string
	UsuarioID uint
	valores   map[string]interface{}
}

// NovoContexto monta o retrato da demanda e da visão aninhada de triagem.
func NovoContexto(tenantID string, usuarioID uint, dem *models.Demanda, tri *models.Triagem) *Contexto {
	demanda := map[string]interface{}{
		"id":        dem.ID,
		"titulo":    dem.Titulo,
		"descricao": dem.Descricao,
		"tipo":      dem.Tipo,
		"origem":    dem.Origem,
		"status":    dem.Status,
		"prioridade": dem.Prioridade,
	}
	if dem.ProdutoID != nil {
		demanda["produto_id"] = *dem.ProdutoID
	}
	if tri != nil {
		triagem := map[string]interface{}{
			"status": tri.StatusTriagem,
		}
		if tri.Impacto != nil {
			triagem["impacto"] = *tri.Impacto
		}
		if tri.Urgencia != nil {
			triagem["urgencia"] = *tri.Urgencia
		}
		if tri.Complexidade != nil {
			triagem["complexidade"] = *tri.Complexidade
		}
		demanda["triagem"] = triagem
	}
	return &Contexto{
		TenantID:  tenantID,
		UsuarioID: usuarioID,
		valores: map[string]interface{}{
			"tenant":  map[string]interface{}{"id": tenantID},
			"usuario": map[string]interface{}{"id": usuarioID},
			"demand":  demanda,
		},
	}
}

// Resolver navega o caminho pontilhado. Caminho ausente retorna ok=false
// (indefinido): comparações contra indefinido são falsas, exceto notEquals.
func (c *Contexto) Resolver(caminho string) (interface{}, bool) {
	partes := strings.Split(strings.TrimSpace(caminho), ".")
	var atual interface{} = c.valores
	for _, p := range partes {
		if p == "" {
			return nil, false
		}
		m, ok := atual.(map[string]interface{})
		if !ok {
			return nil, false
		}
		atual, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return atual, true
}
