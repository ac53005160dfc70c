package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"demandhub/internal/models"
	"demandhub/internal/services"

	"github.com/gin-gonic/gin"
)

func TestDemandaHandler_CriarEListar(t *testing.T) {
	db := newHandlerTestDB(t)
	r, _, _ := montarRouter(t, db, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/demandas", map[string]any{
		"titulo":    "Tema escuro",
		"descricao": "Suporte a tema escuro",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("criar: status %d: %s", w.Code, w.Body.String())
	}
	var dem models.Demanda
	if err := json.Unmarshal(w.Body.Bytes(), &dem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dem.Tipo != "IDEIA" || dem.Origem != "portal" {
		t.Errorf("defaults = %q/%q", dem.Tipo, dem.Origem)
	}

	// sem título -> 400
	w = doJSON(t, r, http.MethodPost, "/api/demandas", map[string]any{"descricao": "sem título"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("sem título: status %d, esperava 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/demandas?page=1&page_size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("listar: status %d", w.Code)
	}
	var resp PaginatedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode lista: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Total = %d, esperava 1", resp.Total)
	}
}

func TestDemandaHandler_Obter(t *testing.T) {
	db := newHandlerTestDB(t)
	r, demandas, _ := montarRouter(t, db, "acme")

	dem, err := demandas.Criar(ctxTest(), "acme", 1, &services.DemandaCreateRequest{Titulo: "Minha"})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/demandas/%d", dem.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("obter: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/demandas/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("inexistente: status %d, esperava 404", w.Code)
	}
}

func TestDemandaHandler_Anexar(t *testing.T) {
	db := newHandlerTestDB(t)
	r, demandas, _ := montarRouter(t, db, "acme")

	dem, err := demandas.Criar(ctxTest(), "acme", 1, &services.DemandaCreateRequest{Titulo: "Com evidência"})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/demandas/%d/anexos", dem.ID), map[string]any{
		"nome":      "metricas.pdf",
		"caminho":   "/uploads/metricas.pdf",
		"mime_type": "application/pdf",
		"tamanho":   2048,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("anexar: status %d: %s", w.Code, w.Body.String())
	}
	var anexo models.AnexoDemanda
	if err := json.Unmarshal(w.Body.Bytes(), &anexo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if anexo.DemandaID != dem.ID || anexo.NomeArquivo != "metricas.pdf" {
		t.Errorf("anexo = %+v", anexo)
	}

	// sem nome -> 400
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/demandas/%d/anexos", dem.ID), map[string]any{
		"caminho": "/uploads/sem-nome.pdf",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("sem nome: status %d, esperava 400", w.Code)
	}

	// demanda inexistente -> 404
	w = doJSON(t, r, http.MethodPost, "/api/demandas/999/anexos", map[string]any{
		"nome":    "x.pdf",
		"caminho": "/uploads/x.pdf",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("inexistente: status %d, esperava 404", w.Code)
	}
}

func TestTenantAusenteRetorna401(t *testing.T) {
	db := newHandlerTestDB(t)
	gin.SetMode(gin.TestMode)

	// router sem middleware que injete o tenant
	r, _, _ := montarRouter(t, db, "")

	w := doJSON(t, r, http.MethodGet, "/api/demandas", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("sem tenant: status %d, esperava 401", w.Code)
	}
}
