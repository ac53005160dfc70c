package catalog

import (
	"context"
	"errors"
	"testing"

	"demandhub/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ItemCatalogo{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestObterItemObrigatorio(t *testing.T) {
	db := newCatalogTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaPrioridade, Slug: "alta", Rotulo: "Alta", Ativo: true})
	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaPrioridade, Slug: "extinta", Rotulo: "Extinta", Ativo: false})
	db.Create(&models.ItemCatalogo{TenantID: "outra", Categoria: CategoriaPrioridade, Slug: "baixa", Rotulo: "Baixa", Ativo: true})

	item, err := svc.ObterItemObrigatorio(ctx, "acme", CategoriaPrioridade, "alta")
	if err != nil {
		t.Fatalf("ObterItemObrigatorio: %v", err)
	}
	if item.Rotulo != "Alta" {
		t.Errorf("Rotulo = %q, esperava Alta", item.Rotulo)
	}

	// inativo não resolve
	if _, err := svc.ObterItemObrigatorio(ctx, "acme", CategoriaPrioridade, "extinta"); !errors.Is(err, ErrItemNaoEncontrado) {
		t.Errorf("item inativo devia retornar ErrItemNaoEncontrado, obteve %v", err)
	}

	// item de outro tenant não vaza
	if _, err := svc.ObterItemObrigatorio(ctx, "acme", CategoriaPrioridade, "baixa"); !errors.Is(err, ErrItemNaoEncontrado) {
		t.Errorf("item de outro tenant devia retornar ErrItemNaoEncontrado, obteve %v", err)
	}

	// slug inexistente
	if _, err := svc.ObterItemObrigatorio(ctx, "acme", CategoriaPrioridade, "nada"); !errors.Is(err, ErrItemNaoEncontrado) {
		t.Errorf("slug inexistente devia retornar ErrItemNaoEncontrado, obteve %v", err)
	}
}

func TestListarPorCategoria(t *testing.T) {
	db := newCatalogTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaImpacto, Slug: "alto", Peso: 3, Ativo: true})
	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaImpacto, Slug: "baixo", Peso: 1, Ativo: true})
	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaImpacto, Slug: "medio", Peso: 2, Ativo: true})
	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaImpacto, Slug: "oculto", Peso: 0, Ativo: false})
	db.Create(&models.ItemCatalogo{TenantID: "acme", Categoria: CategoriaUrgencia, Slug: "alto", Peso: 1, Ativo: true})

	itens, err := svc.ListarPorCategoria(ctx, "acme", CategoriaImpacto)
	if err != nil {
		t.Fatalf("ListarPorCategoria: %v", err)
	}
	if len(itens) != 3 {
		t.Fatalf("len = %d, esperava 3 ativos da categoria", len(itens))
	}
	// ordenado por peso
	ordem := []string{"baixo", "medio", "alto"}
	for i, slug := range ordem {
		if itens[i].Slug != slug {
			t.Errorf("itens[%d].Slug = %q, esperava %q", i, itens[i].Slug, slug)
		}
	}
}
