package handlers

import (
	"net/http"

	"demandhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DemandaHandler cobre a entrada e consulta de demandas
type DemandaHandler struct {
	demandaService *services.DemandaService
	logger         *logrus.Logger
}

func NewDemandaHandler(demandaService *services.DemandaService, logger *logrus.Logger) *DemandaHandler {
	return &DemandaHandler{demandaService: demandaService, logger: logger}
}

// Criar registra uma demanda nova
func (h *DemandaHandler) Criar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	var req services.DemandaCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	demanda, err := h.demandaService.Criar(c.Request.Context(), tenant, usuarioDoContexto(c), &req)
	if err != nil {
		h.logger.Errorf("Falha ao criar demanda: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Falha ao criar demanda", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, demanda)
}

// Obter devolve uma demanda do tenant
func (h *DemandaHandler) Obter(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	demanda, err := h.demandaService.ObterPorID(c.Request.Context(), tenant, id)
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, demanda)
}

// Listar pagina as demandas do tenant
func (h *DemandaHandler) Listar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	var req services.DemandaListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	demandas, total, err := h.demandaService.Listar(c.Request.Context(), tenant, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Falha ao listar demandas", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:     demandas,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// AnexoRequest descreve a evidência a registrar na demanda
type AnexoRequest struct {
	Nome     string `json:"nome" binding:"required"`
	Caminho  string `json:"caminho" binding:"required"`
	MimeType string `json:"mime_type"`
	Tamanho  int64  `json:"tamanho"`
}

// Anexar registra uma evidência na demanda
func (h *DemandaHandler) Anexar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req AnexoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	anexo, err := h.demandaService.AnexarArquivo(c.Request.Context(), tenant, id, usuarioDoContexto(c), req.Nome, req.Caminho, req.MimeType, req.Tamanho)
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusCreated, anexo)
}

// RegisterDemandaRoutes registra as rotas de demandas
func RegisterDemandaRoutes(r *gin.RouterGroup, handler *DemandaHandler) {
	demandas := r.Group("/demandas")
	{
		demandas.GET("", handler.Listar)
		demandas.POST("", handler.Criar)
		demandas.GET(":id", handler.Obter)
		demandas.POST(":id/anexos", handler.Anexar)
	}
}
