package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"demandhub/internal/models"
)

func TestRegraHandler_CRUD(t *testing.T) {
	db := newHandlerTestDB(t)
	r, _, _ := montarRouter(t, db, "acme")

	// cria
	w := doJSON(t, r, http.MethodPost, "/api/regras", map[string]any{
		"nome": "problemas urgentes",
		"condicoes": []map[string]any{
			{"field": "demand.tipo", "operator": "equals", "value": "PROBLEMA"},
		},
		"acoes": []map[string]any{
			{"type": "SET_URGENCY", "value": "ALTO"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("criar: status %d: %s", w.Code, w.Body.String())
	}
	var regra models.RegraAutomacao
	if err := json.Unmarshal(w.Body.Bytes(), &regra); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !regra.Ativa || regra.Nome != "problemas urgentes" {
		t.Errorf("regra = %+v", regra)
	}

	// sem nome -> 400
	w = doJSON(t, r, http.MethodPost, "/api/regras", map[string]any{"acoes": []map[string]any{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("sem nome: status %d, esperava 400", w.Code)
	}

	// lista
	w = doJSON(t, r, http.MethodGet, "/api/regras", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("listar: status %d", w.Code)
	}
	var regras []models.RegraAutomacao
	if err := json.Unmarshal(w.Body.Bytes(), &regras); err != nil {
		t.Fatalf("decode lista: %v", err)
	}
	if len(regras) != 1 {
		t.Fatalf("len(regras) = %d", len(regras))
	}

	// atualiza
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/regras/%d", regra.ID), map[string]any{
		"nome":  "renomeada",
		"ativa": false,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("atualizar: status %d: %s", w.Code, w.Body.String())
	}

	// atualiza inexistente -> 404
	w = doJSON(t, r, http.MethodPut, "/api/regras/999", map[string]any{"nome": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("atualizar inexistente: status %d, esperava 404", w.Code)
	}

	// exclui
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/regras/%d", regra.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("excluir: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/regras/%d", regra.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("excluir de novo: status %d, esperava 404", w.Code)
	}
}

func TestRegraHandler_IsolamentoDeTenant(t *testing.T) {
	db := newHandlerTestDB(t)
	acme, _, _ := montarRouter(t, db, "acme")
	outra, _, _ := montarRouter(t, db, "outra")

	w := doJSON(t, acme, http.MethodPost, "/api/regras", map[string]any{"nome": "da acme"})
	if w.Code != http.StatusCreated {
		t.Fatalf("criar: status %d", w.Code)
	}

	w = doJSON(t, outra, http.MethodGet, "/api/regras", nil)
	var regras []models.RegraAutomacao
	if err := json.Unmarshal(w.Body.Bytes(), &regras); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regras) != 0 {
		t.Fatalf("regras de outro tenant vazaram: %v", regras)
	}
}
