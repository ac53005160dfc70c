package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"demandhub/internal/models"
	"demandhub/internal/triage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrRegraNaoEncontrada = errors.New("regra não encontrada")

// RegraService gerencia as regras de automação autoradas pelos admins do
// tenant. Regras nunca são removidas fisicamente: exclusão é soft delete
// para preservar auditoria.
type RegraService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRegraService(db *gorm.DB, logger *logrus.Logger) *RegraService {
	if logger == nil {
		logger = logrus.New()
	}
	return &RegraService{db: db, logger: logger}
}

// RegraRequest é o corpo de criação/atualização de uma regra.
type RegraRequest struct {
	Nome      string            `json:"nome" binding:"required"`
	Ativa     *bool             `json:"ativa"`
	Condicoes []triage.Condicao `json:"condicoes"`
	Acoes     []triage.Acao     `json:"acoes"`
}

// Criar registra uma nova regra para o tenant.
func (s *RegraService) Criar(ctx context.Context, tenantID string, criadoPor uint, req *RegraRequest) (*models.RegraAutomacao, error) {
	if req == nil {
		return nil, fmt.Errorf("requisição obrigatória")
	}
	condJSON, err := json.Marshal(req.Condicoes)
	if err != nil {
		return nil, fmt.Errorf("condições inválidas: %w", err)
	}
	acaoJSON, err := json.Marshal(req.Acoes)
	if err != nil {
		return nil, fmt.Errorf("ações inválidas: %w", err)
	}

	ativa := true
	if req.Ativa != nil {
		ativa = *req.Ativa
	}

	regra := &models.RegraAutomacao{
		TenantID:  tenantID,
		Nome:      req.Nome,
		Ativa:     ativa,
		Condicoes: string(condJSON),
		Acoes:     string(acaoJSON),
		CriadoPor: criadoPor,
	}
	if err := s.db.WithContext(ctx).Create(regra).Error; err != nil {
		return nil, err
	}
	return regra, nil
}

// Listar retorna todas as regras não excluídas do tenant.
func (s *RegraService) Listar(ctx context.Context, tenantID string) ([]models.RegraAutomacao, error) {
	var regras []models.RegraAutomacao
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&regras).Error; err != nil {
		return nil, err
	}
	return regras, nil
}

// BuscarAtivasPorTenant retorna as regras ativas na ordem de declaração,
// que é também a ordem de avaliação e execução.
func (s *RegraService) BuscarAtivasPorTenant(ctx context.Context, tenantID string) ([]models.RegraAutomacao, error) {
	var regras []models.RegraAutomacao
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND ativa = ?", tenantID, true).
		Order("id ASC").
		Find(&regras).Error; err != nil {
		return nil, err
	}
	return regras, nil
}

// Atualizar sobrescreve nome, condições, ações e o flag de ativação.
func (s *RegraService) Atualizar(ctx context.Context, tenantID string, id uint, req *RegraRequest) (*models.RegraAutomacao, error) {
	var regra models.RegraAutomacao
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&regra).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegraNaoEncontrada
		}
		return nil, err
	}

	condJSON, err := json.Marshal(req.Condicoes)
	if err != nil {
		return nil, fmt.Errorf("condições inválidas: %w", err)
	}
	acaoJSON, err := json.Marshal(req.Acoes)
	if err != nil {
		return nil, fmt.Errorf("ações inválidas: %w", err)
	}

	regra.Nome = req.Nome
	regra.Condicoes = string(condJSON)
	regra.Acoes = string(acaoJSON)
	if req.Ativa != nil {
		regra.Ativa = *req.Ativa
	}

	if err := s.db.WithContext(ctx).Save(&regra).Error; err != nil {
		return nil, err
	}
	return &regra, nil
}

// Excluir faz o soft delete da regra (DeletedAt), mantendo a linha para
// auditoria do histórico de automações.
func (s *RegraService) Excluir(ctx context.Context, tenantID string, id uint) error {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.RegraAutomacao{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegraNaoEncontrada
	}
	return nil
}
