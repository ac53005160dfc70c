package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"demandhub/internal/catalog"
	"demandhub/internal/models"
	"demandhub/internal/triage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TriagemService orquestra as operações de triagem: transição de status,
// avaliação, checklist, motor de automação e decisão de persistência.
// Cada invocação é de escopo de requisição e single-thread: carrega os
// agregados, avalia e muta em memória e persiste uma vez. Duas operações
// concorrentes sobre a mesma demanda não são coordenadas aqui; vale o
// last-write-wins da camada de persistência.
type TriagemService struct {
	db       *gorm.DB
	logger   *logrus.Logger
	catalogo catalog.Lookup
	regras   *RegraService
	demandas *DemandaService
	eventos  *PublicadorEventos

	aplicador *triage.Aplicador
}

func NewTriagemService(db *gorm.DB, logger *logrus.Logger, catalogo catalog.Lookup, regras *RegraService, demandas *DemandaService, eventos *PublicadorEventos) *TriagemService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TriagemService{
		db:        db,
		logger:    logger,
		catalogo:  catalogo,
		regras:    regras,
		demandas:  demandas,
		eventos:   eventos,
		aplicador: triage.NovoAplicador(catalogo, logger),
	}
}

// AvaliacaoTriagem carrega os campos de avaliação aplicados diretamente
// pelo comando, sem envolvimento do motor.
type AvaliacaoTriagem struct {
	Impacto      *string `json:"impacto"`
	Urgencia     *string `json:"urgencia"`
	Complexidade *string `json:"complexidade"`
}

// AtualizacaoChecklist marca/desmarca a conclusão humana de um item.
type AtualizacaoChecklist struct {
	ID        string `json:"id" binding:"required"`
	Concluido bool   `json:"concluido"`
}

// TriarRequest é o comando de triagem de uma demanda.
type TriarRequest struct {
	Status    *string                `json:"status"`
	Avaliacao *AvaliacaoTriagem      `json:"avaliacao"`
	Checklist []AtualizacaoChecklist `json:"checklist"`
}

// FalhaTriagem descreve a falha de um item de um lote.
type FalhaTriagem struct {
	DemandaID uint   `json:"demandaId"`
	Erro      string `json:"erro"`
}

// ResultadoLote agrega sucessos e falhas de um lote de triagem.
type ResultadoLote struct {
	Sucesso []uint         `json:"sucesso"`
	Falhas  []FalhaTriagem `json:"falhas"`
}

// SugestaoDuplicada é uma candidata a duplicidade acima do limiar.
type SugestaoDuplicada struct {
	DemandaID    uint   `json:"demanda_id"`
	Titulo       string `json:"titulo"`
	Status       string `json:"status"`
	Similaridade int    `json:"similaridade"`
}

// Triar aplica um comando de triagem: transição de status pela máquina de
// estados, avaliação direta, atualizações de checklist, sincronização do
// status da demanda e, por fim, o motor de automação sobre o contexto
// atualizado. Só os agregados alterados são persistidos; um evento de
// domínio é publicado quando houve mudança de status.
func (s *TriagemService) Triar(ctx context.Context, tenantID string, demandaID uint, req *TriarRequest, usuarioID uint) (*models.Triagem, error) {
	if req == nil {
		req = &TriarRequest{}
	}

	dem, err := s.demandas.ObterPorID(ctx, tenantID, demandaID)
	if err != nil {
		return nil, err
	}
	tri, err := s.obterOuCriarTriagem(ctx, tenantID, dem)
	if err != nil {
		return nil, err
	}

	statusAnterior := triage.StatusTriagem(tri.StatusTriagem)
	triagemAlterada := false
	demandaAlterada := false

	if req.Status != nil {
		para, err := triage.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if para != statusAnterior {
			de := triage.AplicarTransicao(tri, para)
			s.registrarHistorico(ctx, tri.ID, usuarioID, string(de), string(para))
			triagemAlterada = true

			if slug, ok := triage.StatusDemandaSincronizado(para); ok && dem.Status != slug {
				if err := dem.AlterarStatus(slug); err == nil {
					demandaAlterada = true
				}
			}
		}
	}

	if req.Avaliacao != nil {
		if err := s.aplicarAvaliacao(tri, req.Avaliacao); err != nil {
			return nil, err
		}
		triagemAlterada = true
	}

	if s.atualizarChecklist(ctx, dem, tri, req.Checklist) {
		triagemAlterada = true
	}

	if tri.TriadoEm == nil {
		agora := time.Now()
		tri.TriadoEm = &agora
		triagemAlterada = true
	}

	flags := s.executarAutomacao(ctx, tenantID, dem, tri, usuarioID)

	if triagemAlterada || flags.TriagemAlterada {
		if err := s.db.WithContext(ctx).Save(tri).Error; err != nil {
			return nil, fmt.Errorf("falha ao persistir triagem: %w", err)
		}
	}
	if demandaAlterada || flags.DemandaAlterada {
		if err := s.db.WithContext(ctx).Save(dem).Error; err != nil {
			return nil, fmt.Errorf("falha ao persistir demanda: %w", err)
		}
	}

	if tri.StatusTriagem != string(statusAnterior) {
		s.eventos.Publicar(ctx, tenantID, EventoDemandaTriada, dem.ID, map[string]interface{}{
			"triagem_id":    tri.ID,
			"status_antes":  string(statusAnterior),
			"status_depois": tri.StatusTriagem,
			"usuario_id":    usuarioID,
		})
	}

	return tri, nil
}

// TriarLote processa cada demanda de forma independente: a falha de uma não
// aborta o lote, que devolve sucessos e falhas por item.
func (s *TriagemService) TriarLote(ctx context.Context, tenantID string, demandaIDs []uint, req *TriarRequest, usuarioID uint) *ResultadoLote {
	resultado := &ResultadoLote{Sucesso: []uint{}, Falhas: []FalhaTriagem{}}
	for _, id := range demandaIDs {
		if _, err := s.Triar(ctx, tenantID, id, req, usuarioID); err != nil {
			msg := err.Error()
			if errors.Is(err, triage.ErrDemandaNaoEncontrada) {
				msg = triage.ErrDemandaNaoEncontrada.Error()
			}
			resultado.Falhas = append(resultado.Falhas, FalhaTriagem{DemandaID: id, Erro: msg})
			continue
		}
		resultado.Sucesso = append(resultado.Sucesso, id)
	}
	return resultado
}

// EvoluirParaDiscovery valida os pré-requisitos de evolução e, passando,
// transiciona para PRONTO_DISCOVERY, sincroniza a demanda, roda a automação
// e devolve o identificador de discovery gerado. Todas as violações são
// coletadas e devolvidas juntas em um único ErroValidacao.
func (s *TriagemService) EvoluirParaDiscovery(ctx context.Context, tenantID string, demandaID uint, usuarioID uint) (string, error) {
	dem, err := s.demandas.ObterPorID(ctx, tenantID, demandaID)
	if err != nil {
		return "", err
	}
	tri, err := s.obterOuCriarTriagem(ctx, tenantID, dem)
	if err != nil {
		return "", err
	}

	var violacoes []string
	if tri.Impacto == nil {
		violacoes = append(violacoes, "impacto não avaliado")
	}
	if tri.Urgencia == nil {
		violacoes = append(violacoes, "urgência não avaliada")
	}
	if tri.Complexidade == nil {
		violacoes = append(violacoes, "complexidade não avaliada")
	}
	for _, item := range triage.PendentesObrigatorios(tri.ObterChecklist()) {
		violacoes = append(violacoes, fmt.Sprintf("item de checklist pendente: %s", item.Rotulo))
	}

	impactoItem := s.resolverNivel(ctx, tenantID, catalog.CategoriaImpacto, tri.Impacto)
	complexidadeItem := s.resolverNivel(ctx, tenantID, catalog.CategoriaComplexidade, tri.Complexidade)
	exigeEvidencia := (impactoItem != nil && impactoItem.MetadataBool("requireEvidence")) ||
		(complexidadeItem != nil && complexidadeItem.MetadataBool("requireEvidence"))
	if exigeEvidencia {
		anexos, err := s.demandas.ContarAnexos(ctx, dem.ID)
		if err == nil && anexos == 0 {
			violacoes = append(violacoes, "nenhuma evidência anexada")
		}
	}

	if err := triage.NovoErroValidacao(violacoes); err != nil {
		return "", err
	}

	statusAnterior := triage.StatusTriagem(tri.StatusTriagem)
	triagemAlterada := false
	demandaAlterada := false

	// idempotente quando já está em PRONTO_DISCOVERY
	if statusAnterior != triage.StatusProntoDiscovery {
		de := triage.AplicarTransicao(tri, triage.StatusProntoDiscovery)
		s.registrarHistorico(ctx, tri.ID, usuarioID, string(de), string(triage.StatusProntoDiscovery))
		triagemAlterada = true
	}
	if slug, ok := triage.StatusDemandaSincronizado(triage.StatusProntoDiscovery); ok && dem.Status != slug {
		if err := dem.AlterarStatus(slug); err == nil {
			demandaAlterada = true
		}
	}

	flags := s.executarAutomacao(ctx, tenantID, dem, tri, usuarioID)

	if triagemAlterada || flags.TriagemAlterada {
		if err := s.db.WithContext(ctx).Save(tri).Error; err != nil {
			return "", fmt.Errorf("falha ao persistir triagem: %w", err)
		}
	}
	if demandaAlterada || flags.DemandaAlterada {
		if err := s.db.WithContext(ctx).Save(dem).Error; err != nil {
			return "", fmt.Errorf("falha ao persistir demanda: %w", err)
		}
	}

	discoveryID := uuid.NewString()
	s.eventos.Publicar(ctx, tenantID, EventoDemandaEvoluiu, dem.ID, map[string]interface{}{
		"triagem_id":    tri.ID,
		"discovery_id":  discoveryID,
		"status_antes":  string(statusAnterior),
		"status_depois": tri.StatusTriagem,
		"usuario_id":    usuarioID,
	})
	return discoveryID, nil
}

// MarcarDuplicada confirma a duplicidade entre duas triagens: grava o
// registro único do par, transiciona a duplicada para DUPLICADO e arquiva a
// demanda. Auto-duplicidade é rejeitada antes de tocar a persistência.
func (s *TriagemService) MarcarDuplicada(ctx context.Context, tenantID string, triagemID, triagemOriginalID, usuarioID uint) error {
	if triagemID == triagemOriginalID {
		return triage.ErrDuplicidadePropria
	}

	tri, err := s.obterTriagem(ctx, tenantID, triagemID)
	if err != nil {
		return err
	}
	original, err := s.obterTriagem(ctx, tenantID, triagemOriginalID)
	if err != nil {
		return err
	}

	dem, err := s.demandas.ObterPorID(ctx, tenantID, tri.DemandaID)
	if err != nil {
		return err
	}
	demOriginal, err := s.demandas.ObterPorID(ctx, tenantID, original.DemandaID)
	if err != nil {
		return err
	}

	registro := models.DuplicidadeTriagem{
		TenantID:          tenantID,
		TriagemID:         triagemID,
		TriagemOriginalID: triagemOriginalID,
		Similaridade:      triage.Similaridade(dem, demOriginal),
	}
	// unicidade por par: nunca um segundo registro para o mesmo
	err = s.db.WithContext(ctx).
		Where("triagem_id = ? AND triagem_original_id = ?", triagemID, triagemOriginalID).
		FirstOrCreate(&registro).Error
	if err != nil {
		return err
	}

	de := triage.AplicarTransicao(tri, triage.StatusDuplicado)
	s.registrarHistorico(ctx, tri.ID, usuarioID, string(de), string(triage.StatusDuplicado))
	if slug, ok := triage.StatusDemandaSincronizado(triage.StatusDuplicado); ok {
		_ = dem.AlterarStatus(slug)
	}
	if err := s.db.WithContext(ctx).Save(tri).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(dem).Error; err != nil {
		return err
	}

	s.eventos.Publicar(ctx, tenantID, EventoDuplicidadeMarcada, dem.ID, map[string]interface{}{
		"triagem_id":          triagemID,
		"triagem_original_id": triagemOriginalID,
		"similaridade":        registro.Similaridade,
	})
	return nil
}

// SugerirDuplicadas pontua a demanda contra as demais do tenant e devolve as
// candidatas com similaridade >= 50, ordenadas da maior para a menor.
func (s *TriagemService) SugerirDuplicadas(ctx context.Context, tenantID string, demandaID uint, limite int) ([]SugestaoDuplicada, error) {
	return s.buscarSimilares(ctx, tenantID, demandaID, limite, triage.LimiarPossivelDuplicada, nil)
}

// HistoricoSimilaresResolvidas devolve demandas já concluídas parecidas com
// a atual, com o limiar mais frouxo de 40.
func (s *TriagemService) HistoricoSimilaresResolvidas(ctx context.Context, tenantID string, demandaID uint, limite int) ([]SugestaoDuplicada, error) {
	status := []string{"concluida", "resolvida"}
	return s.buscarSimilares(ctx, tenantID, demandaID, limite, triage.LimiarHistoricoSimilar, status)
}

func (s *TriagemService) buscarSimilares(ctx context.Context, tenantID string, demandaID uint, limite, limiar int, statusFiltro []string) ([]SugestaoDuplicada, error) {
	dem, err := s.demandas.ObterPorID(ctx, tenantID, demandaID)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Demanda{}).
		Where("tenant_id = ? AND id <> ?", tenantID, demandaID).
		Order("created_at DESC").
		Limit(500)
	if len(statusFiltro) > 0 {
		q = q.Where("status IN ?", statusFiltro)
	}
	var candidatas []models.Demanda
	if err := q.Find(&candidatas).Error; err != nil {
		return nil, err
	}

	if limite <= 0 {
		limite = 10
	}
	sugestoes := make([]SugestaoDuplicada, 0, limite)
	for i := range candidatas {
		score := triage.Similaridade(dem, &candidatas[i])
		if score < limiar {
			continue
		}
		sugestoes = append(sugestoes, SugestaoDuplicada{
			DemandaID:    candidatas[i].ID,
			Titulo:       candidatas[i].Titulo,
			Status:       candidatas[i].Status,
			Similaridade: score,
		})
	}
	sort.Slice(sugestoes, func(i, j int) bool {
		if sugestoes[i].Similaridade == sugestoes[j].Similaridade {
			return sugestoes[i].DemandaID < sugestoes[j].DemandaID
		}
		return sugestoes[i].Similaridade > sugestoes[j].Similaridade
	})
	if len(sugestoes) > limite {
		sugestoes = sugestoes[:limite]
	}
	return sugestoes, nil
}

// ObterTriagem expõe a triagem do tenant para os handlers.
func (s *TriagemService) ObterTriagem(ctx context.Context, tenantID string, demandaID uint) (*models.Triagem, error) {
	var tri models.Triagem
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND demanda_id = ?", tenantID, demandaID).
		First(&tri).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, triage.ErrDemandaNaoEncontrada
		}
		return nil, err
	}
	return &tri, nil
}

// executarAutomacao roda o motor contra o contexto atualizado. Falhas de
// regra ou de ação são absorvidas (logadas) e nunca abortam o comando.
func (s *TriagemService) executarAutomacao(ctx context.Context, tenantID string, dem *models.Demanda, tri *models.Triagem, usuarioID uint) triage.Flags {
	regras, err := s.regras.BuscarAtivasPorTenant(ctx, tenantID)
	if err != nil {
		s.logger.Warnf("automacao: falha ao carregar regras do tenant %s: %v", tenantID, err)
		return triage.Flags{}
	}
	if len(regras) == 0 {
		return triage.Flags{}
	}

	contexto := triage.NovoContexto(tenantID, usuarioID, dem, tri)
	resultados := triage.AvaliarRegras(regras, contexto, s.logger)
	for _, r := range resultados {
		if !r.Sucesso {
			s.logger.Warnf("automacao: regra %d (%s) falhou: %s", r.RegraID, r.Nome, r.Erro)
		}
	}
	return s.aplicador.Aplicar(ctx, resultados, dem, tri)
}

func (s *TriagemService) obterTriagem(ctx context.Context, tenantID string, id uint) (*models.Triagem, error) {
	var tri models.Triagem
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&tri, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, triage.ErrDemandaNaoEncontrada
		}
		return nil, err
	}
	return &tri, nil
}

// obterOuCriarTriagem materializa a triagem no primeiro toque da demanda
// (uma por demanda), já com o checklist baseline derivado.
func (s *TriagemService) obterOuCriarTriagem(ctx context.Context, tenantID string, dem *models.Demanda) (*models.Triagem, error) {
	var tri models.Triagem
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND demanda_id = ?", tenantID, dem.ID).
		First(&tri).Error
	if err == nil {
		return &tri, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tri = models.Triagem{
		TenantID:      tenantID,
		DemandaID:     dem.ID,
		StatusTriagem: string(triage.StatusPendenteTriagem),
	}
	tri.DefinirChecklist(triage.DerivarChecklist(nil, nil, nil))
	if err := s.db.WithContext(ctx).Create(&tri).Error; err != nil {
		return nil, fmt.Errorf("falha ao criar triagem: %w", err)
	}
	return &tri, nil
}

// aplicarAvaliacao grava os campos de avaliação vindos do comando.
func (s *TriagemService) aplicarAvaliacao(tri *models.Triagem, av *AvaliacaoTriagem) error {
	if av.Impacto != nil {
		nivel, err := triage.ParseImpacto(*av.Impacto)
		if err != nil {
			return err
		}
		tri.Impacto = &nivel
	}
	if av.Urgencia != nil {
		nivel, err := triage.ParseUrgencia(*av.Urgencia)
		if err != nil {
			return err
		}
		tri.Urgencia = &nivel
	}
	if av.Complexidade != nil {
		nivel, err := triage.ParseComplexidade(*av.Complexidade)
		if err != nil {
			return err
		}
		tri.Complexidade = &nivel
	}
	return nil
}

// atualizarChecklist deriva o checklist corrente a partir dos níveis
// resolvidos no catálogo, preserva as conclusões humanas existentes e aplica
// as atualizações do comando. Retorna se a triagem mudou.
func (s *TriagemService) atualizarChecklist(ctx context.Context, dem *models.Demanda, tri *models.Triagem, atualizacoes []AtualizacaoChecklist) bool {
	anterior := tri.Checklist

	impactoItem := s.resolverNivel(ctx, tri.TenantID, catalog.CategoriaImpacto, tri.Impacto)
	urgenciaItem := s.resolverNivel(ctx, tri.TenantID, catalog.CategoriaUrgencia, tri.Urgencia)
	complexidadeItem := s.resolverNivel(ctx, tri.TenantID, catalog.CategoriaComplexidade, tri.Complexidade)

	itens := triage.DerivarChecklist(impactoItem, urgenciaItem, complexidadeItem)
	itens = triage.MesclarConclusao(itens, tri.ObterChecklist())

	for _, atual := range atualizacoes {
		for i := range itens {
			if itens[i].ID == atual.ID {
				itens[i].Concluido = atual.Concluido
			}
		}
	}

	tri.DefinirChecklist(itens)
	return tri.Checklist != anterior
}

// resolverNivel busca o item de catálogo do nível avaliado; ausência no
// catálogo não é erro (tenants podem não configurar metadata).
func (s *TriagemService) resolverNivel(ctx context.Context, tenantID, categoria string, nivel *string) *models.ItemCatalogo {
	if nivel == nil || *nivel == "" {
		return nil
	}
	item, err := s.catalogo.ObterItemObrigatorio(ctx, tenantID, categoria, catalog.Slugify(*nivel))
	if err != nil {
		return nil
	}
	return item
}

func (s *TriagemService) registrarHistorico(ctx context.Context, triagemID, usuarioID uint, de, para string) {
	registro := &models.HistoricoStatusTriagem{
		TriagemID:  triagemID,
		UsuarioID:  usuarioID,
		DeStatus:   de,
		ParaStatus: para,
	}
	if err := s.db.WithContext(ctx).Create(registro).Error; err != nil {
		s.logger.Warnf("triagem: falha ao registrar histórico de status: %v", err)
	}
}
