package services

import (
	"context"
	"errors"
	"fmt"

	"demandhub/internal/models"
	"demandhub/internal/triage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DemandaService cobre o CRUD de demandas consumido pelos handlers e pela
// triagem.
type DemandaService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDemandaService(db *gorm.DB, logger *logrus.Logger) *DemandaService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DemandaService{db: db, logger: logger}
}

// DemandaCreateRequest é o corpo de entrada de uma demanda.
type DemandaCreateRequest struct {
	Titulo    string `json:"titulo" binding:"required"`
	Descricao string `json:"descricao"`
	Tipo      string `json:"tipo"`
	Origem    string `json:"origem"`
	ProdutoID *uint  `json:"produto_id"`
}

// DemandaListRequest filtra e pagina a listagem.
type DemandaListRequest struct {
	Page     int      `form:"page,default=1"`
	PageSize int      `form:"page_size,default=20"`
	Status   []string `form:"status"`
	Tipo     []string `form:"tipo"`
	Busca    string   `form:"busca"`
}

// Criar registra uma demanda nova, com defaults de tipo/origem.
func (s *DemandaService) Criar(ctx context.Context, tenantID string, criadoPor uint, req *DemandaCreateRequest) (*models.Demanda, error) {
	if req == nil {
		return nil, fmt.Errorf("requisição obrigatória")
	}
	if req.Tipo == "" {
		req.Tipo = "IDEIA"
	}
	if req.Origem == "" {
		req.Origem = "portal"
	}

	demanda := &models.Demanda{
		TenantID:    tenantID,
		Titulo:      req.Titulo,
		Descricao:   req.Descricao,
		Tipo:        req.Tipo,
		Origem:      req.Origem,
		ProdutoID:   req.ProdutoID,
		CriadoPorID: criadoPor,
	}
	if err := s.db.WithContext(ctx).Create(demanda).Error; err != nil {
		return nil, fmt.Errorf("falha ao criar demanda: %w", err)
	}
	s.logger.Infof("Demanda %d criada para tenant %s", demanda.ID, tenantID)
	return demanda, nil
}

// ObterPorID carrega a demanda do tenant com produto e anexos.
func (s *DemandaService) ObterPorID(ctx context.Context, tenantID string, id uint) (*models.Demanda, error) {
	var demanda models.Demanda
	err := s.db.WithContext(ctx).
		Preload("Produto").
		Preload("Anexos").
		Where("tenant_id = ?", tenantID).
		First(&demanda, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, triage.ErrDemandaNaoEncontrada
		}
		return nil, err
	}
	return &demanda, nil
}

// Listar pagina as demandas do tenant com filtros opcionais.
func (s *DemandaService) Listar(ctx context.Context, tenantID string, req *DemandaListRequest) ([]models.Demanda, int64, error) {
	if req == nil {
		req = &DemandaListRequest{Page: 1, PageSize: 20}
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	q := s.db.WithContext(ctx).Model(&models.Demanda{}).Where("tenant_id = ?", tenantID)
	if len(req.Status) > 0 {
		q = q.Where("status IN ?", req.Status)
	}
	if len(req.Tipo) > 0 {
		q = q.Where("tipo IN ?", req.Tipo)
	}
	if req.Busca != "" {
		like := "%" + req.Busca + "%"
		q = q.Where("titulo LIKE ? OR descricao LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var demandas []models.Demanda
	err := q.Order("created_at DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&demandas).Error
	if err != nil {
		return nil, 0, err
	}
	return demandas, total, nil
}

// AnexarArquivo registra uma evidência na demanda.
func (s *DemandaService) AnexarArquivo(ctx context.Context, tenantID string, demandaID, usuarioID uint, nome, caminho, mimeType string, tamanho int64) (*models.AnexoDemanda, error) {
	if _, err := s.ObterPorID(ctx, tenantID, demandaID); err != nil {
		return nil, err
	}
	anexo := &models.AnexoDemanda{
		DemandaID:   demandaID,
		UsuarioID:   usuarioID,
		NomeArquivo: nome,
		Caminho:     caminho,
		MimeType:    mimeType,
		Tamanho:     tamanho,
	}
	if err := s.db.WithContext(ctx).Create(anexo).Error; err != nil {
		return nil, err
	}
	return anexo, nil
}

// ContarAnexos conta as evidências anexadas à demanda.
func (s *DemandaService) ContarAnexos(ctx context.Context, demandaID uint) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.AnexoDemanda{}).
		Where("demanda_id = ?", demandaID).
		Count(&total).Error
	return int(total), err
}
