package catalog

import (
	"context"
	"errors"
	"fmt"

	"demandhub/internal/models"

	"gorm.io/gorm"
)

// Categorias de catálogo consumidas pela triagem.
const (
	CategoriaImpacto       = "impacto_nivel"
	CategoriaUrgencia      = "urgencia_nivel"
	CategoriaComplexidade  = "complexidade_nivel"
	CategoriaStatusDemanda = "status_demanda"
	CategoriaPrioridade    = "prioridade_nivel"
)

// Slugs padrão de status de demanda usados na sincronização da triagem.
const (
	StatusDemandaTriagem   = "triagem"
	StatusDemandaArquivado = "arquivado"
)

var ErrItemNaoEncontrado = errors.New("item de catálogo não encontrado")

// Lookup resolve enumerações configuráveis por tenant.
type Lookup interface {
	ObterItemObrigatorio(ctx context.Context, tenantID, categoria, slug string) (*models.ItemCatalogo, error)
	ListarPorCategoria(ctx context.Context, tenantID, categoria string) ([]models.ItemCatalogo, error)
}

// Service é a implementação padrão de Lookup sobre o banco.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ObterItemObrigatorio resolve um slug dentro de uma categoria do tenant.
// Retorna ErrItemNaoEncontrado quando o slug não existe ou está inativo.
func (s *Service) ObterItemObrigatorio(ctx context.Context, tenantID, categoria, slug string) (*models.ItemCatalogo, error) {
	var item models.ItemCatalogo
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND categoria = ? AND slug = ? AND ativo = ?", tenantID, categoria, slug, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrItemNaoEncontrado, categoria, slug)
		}
		return nil, err
	}
	return &item, nil
}

// ListarPorCategoria retorna os itens ativos da categoria ordenados por peso.
func (s *Service) ListarPorCategoria(ctx context.Context, tenantID, categoria string) ([]models.ItemCatalogo, error) {
	var itens []models.ItemCatalogo
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND categoria = ? AND ativo = ?", tenantID, categoria, true).
		Order("peso ASC, id ASC").
		Find(&itens).Error
	if err != nil {
		return nil, err
	}
	return itens, nil
}
