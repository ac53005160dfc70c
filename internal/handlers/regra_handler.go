package handlers

import (
	"errors"
	"net/http"

	"demandhub/internal/services"

	"github.com/gin-gonic/gin"
)

// RegraHandler administra as regras de automação do tenant.
// As condições e ações chegam do admin como JSON e são validadas na
// serialização; a semântica é do interpretador em internal/triage.
type RegraHandler struct {
	service *services.RegraService
}

func NewRegraHandler(service *services.RegraService) *RegraHandler {
	return &RegraHandler{service: service}
}

// Listar devolve as regras do tenant
func (h *RegraHandler) Listar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	regras, err := h.service.Listar(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Falha ao listar regras", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, regras)
}

// Criar registra uma regra nova
func (h *RegraHandler) Criar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	var req services.RegraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	regra, err := h.service.Criar(c.Request.Context(), tenant, usuarioDoContexto(c), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Falha ao criar regra", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, regra)
}

// Atualizar sobrescreve uma regra existente
func (h *RegraHandler) Atualizar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req services.RegraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	regra, err := h.service.Atualizar(c.Request.Context(), tenant, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrRegraNaoEncontrada) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Não encontrado", Message: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Falha ao atualizar regra", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, regra)
}

// Excluir faz o soft delete da regra
func (h *RegraHandler) Excluir(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	if err := h.service.Excluir(c.Request.Context(), tenant, id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrRegraNaoEncontrada) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: "Falha ao excluir regra", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "excluída"})
}

// RegisterRegraRoutes registra as rotas de regras
func RegisterRegraRoutes(r *gin.RouterGroup, handler *RegraHandler) {
	regras := r.Group("/regras")
	{
		regras.GET("", handler.Listar)
		regras.POST("", handler.Criar)
		regras.PUT(":id", handler.Atualizar)
		regras.DELETE(":id", handler.Excluir)
	}
}
