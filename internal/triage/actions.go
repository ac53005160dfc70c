package triage

import (
	"context"
	"strconv"
	"strings"

	"demandhub/internal/catalog"
	"demandhub/internal/models"

	"github.com/sirupsen/logrus"
)

// Flags indica quais agregados foram mutados pelas ações aplicadas; o
// orquestrador persiste apenas os marcados.
type Flags struct {
	TriagemAlterada bool `json:"triagem_alterada"`
	DemandaAlterada bool `json:"demanda_alterada"`
}

// Aplicador traduz ações de regras casadas em mutações na Triagem e na
// Demanda. Política de falha: toda falha por ação é isolada e não fatal —
// uma ação malformada jamais impede as seguintes nem aborta a orquestração.
// Configuração de regra é conteúdo de admin, não confiável; o ignora-e-segue
// é deliberado e não deve ser "corrigido" para propagar erros.
type Aplicador struct {
	catalogo catalog.Lookup
	logger   *logrus.Logger
}

func NovoAplicador(catalogo catalog.Lookup, logger *logrus.Logger) *Aplicador {
	if logger == nil {
		logger = logrus.New()
	}
	return &Aplicador{catalogo: catalogo, logger: logger}
}

// Aplicar executa as ações dos resultados bem-sucedidos, na ordem de
// declaração das regras, acumulando os dirty-flags.
func (a *Aplicador) Aplicar(ctx context.Context, resultados []ResultadoExecucao, dem *models.Demanda, tri *models.Triagem) Flags {
	var flags Flags
	for _, res := range resultados {
		if !res.Sucesso {
			continue
		}
		for _, acao := range res.Acoes {
			a.aplicarAcao(ctx, acao, dem, tri, &flags)
		}
	}
	return flags
}

// aplicarAcao trata cada tipo de ação com o seu próprio ignora-e-segue
// explícito, em vez de um handler único que mascararia bugs não
// relacionados.
func (a *Aplicador) aplicarAcao(ctx context.Context, acao Acao, dem *models.Demanda, tri *models.Triagem, flags *Flags) {
	valor := paraTexto(acao.Valor)

	switch acao.Tipo {
	case AcaoDefinirImpacto:
		nivel, err := ParseImpacto(valor)
		if err != nil {
			a.logger.Debugf("automacao: SET_IMPACT ignorado: %v", err)
			return
		}
		tri.Impacto = &nivel
		flags.TriagemAlterada = true

	case AcaoDefinirUrgencia:
		nivel, err := ParseUrgencia(valor)
		if err != nil {
			a.logger.Debugf("automacao: SET_URGENCY ignorado: %v", err)
			return
		}
		tri.Urgencia = &nivel
		flags.TriagemAlterada = true

	case AcaoDefinirComplexidade:
		nivel, err := ParseComplexidade(valor)
		if err != nil {
			a.logger.Debugf("automacao: SET_COMPLEXITY ignorado: %v", err)
			return
		}
		tri.Complexidade = &nivel
		flags.TriagemAlterada = true

	case AcaoAtribuirResponsavel:
		id := strings.TrimSpace(valor)
		if id == "" {
			return
		}
		usuarioID, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			a.logger.Debugf("automacao: ASSIGN_OWNER ignorado, id inválido %q", id)
			return
		}
		if err := dem.AtribuirResponsavel(uint(usuarioID)); err != nil {
			a.logger.Debugf("automacao: ASSIGN_OWNER ignorado: %v", err)
			return
		}
		flags.DemandaAlterada = true

	case AcaoAlterarPrioridade:
		item, err := a.catalogo.ObterItemObrigatorio(ctx, dem.TenantID, catalog.CategoriaPrioridade, catalog.Slugify(valor))
		if err != nil {
			a.logger.Debugf("automacao: CHANGE_PRIORITY ignorado: %v", err)
			return
		}
		if err := dem.AlterarPrioridade(item.Slug); err != nil {
			a.logger.Debugf("automacao: CHANGE_PRIORITY ignorado: %v", err)
			return
		}
		flags.DemandaAlterada = true

	case AcaoAlterarStatus:
		item, err := a.catalogo.ObterItemObrigatorio(ctx, dem.TenantID, catalog.CategoriaStatusDemanda, catalog.Slugify(valor))
		if err != nil {
			a.logger.Debugf("automacao: CHANGE_STATUS ignorado: %v", err)
			return
		}
		// escrita redundante é pulada inteira: sem mutação, sem dirty-flag
		if dem.Status == item.Slug {
			return
		}
		if err := dem.AlterarStatus(item.Slug); err != nil {
			a.logger.Debugf("automacao: CHANGE_STATUS ignorado: %v", err)
			return
		}
		flags.DemandaAlterada = true

	default:
		a.logger.Debugf("automacao: tipo de ação desconhecido %q ignorado", acao.Tipo)
	}
}
