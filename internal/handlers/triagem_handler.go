package handlers

import (
	"net/http"
	"strconv"

	"demandhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TriagemHandler expõe as operações de triagem
type TriagemHandler struct {
	triagemService *services.TriagemService
	logger         *logrus.Logger
}

func NewTriagemHandler(triagemService *services.TriagemService, logger *logrus.Logger) *TriagemHandler {
	return &TriagemHandler{triagemService: triagemService, logger: logger}
}

// Triar aplica um comando de triagem a uma demanda
func (h *TriagemHandler) Triar(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	demandaID, err := parseID(c, "id")
	if err != nil {
		return
	}

	var req services.TriarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	tri, err := h.triagemService.Triar(c.Request.Context(), tenant, demandaID, &req, usuarioDoContexto(c))
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, tri)
}

// TriarLote triagem em lote; falhas por item não abortam o lote
func (h *TriagemHandler) TriarLote(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}

	var req struct {
		DemandaIDs []uint                `json:"demanda_ids" binding:"required,min=1"`
		Comando    *services.TriarRequest `json:"comando"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	resultado := h.triagemService.TriarLote(c.Request.Context(), tenant, req.DemandaIDs, req.Comando, usuarioDoContexto(c))
	c.JSON(http.StatusOK, resultado)
}

// Evoluir promove a demanda para discovery quando o gate de validação passa
func (h *TriagemHandler) Evoluir(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	demandaID, err := parseID(c, "id")
	if err != nil {
		return
	}

	discoveryID, err := h.triagemService.EvoluirParaDiscovery(c.Request.Context(), tenant, demandaID, usuarioDoContexto(c))
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discovery_id": discoveryID})
}

// MarcarDuplicada confirma a duplicidade entre duas triagens
func (h *TriagemHandler) MarcarDuplicada(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	triagemID, err := parseID(c, "id")
	if err != nil {
		return
	}

	var req struct {
		TriagemOriginalID uint `json:"triagem_original_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida", Message: err.Error()})
		return
	}

	if err := h.triagemService.MarcarDuplicada(c.Request.Context(), tenant, triagemID, req.TriagemOriginalID, usuarioDoContexto(c)); err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "duplicidade registrada"})
}

// SugerirDuplicadas lista candidatas com similaridade acima do limiar
func (h *TriagemHandler) SugerirDuplicadas(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	demandaID, err := parseID(c, "id")
	if err != nil {
		return
	}
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "10"))

	sugestoes, err := h.triagemService.SugerirDuplicadas(c.Request.Context(), tenant, demandaID, limite)
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sugestoes})
}

// HistoricoSimilares lista demandas resolvidas parecidas com a atual
func (h *TriagemHandler) HistoricoSimilares(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	demandaID, err := parseID(c, "id")
	if err != nil {
		return
	}
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "10"))

	sugestoes, err := h.triagemService.HistoricoSimilaresResolvidas(c.Request.Context(), tenant, demandaID, limite)
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sugestoes})
}

// ObterTriagem devolve a triagem corrente de uma demanda
func (h *TriagemHandler) ObterTriagem(c *gin.Context) {
	tenant, ok := tenantDoContexto(c)
	if !ok {
		return
	}
	demandaID, err := parseID(c, "id")
	if err != nil {
		return
	}

	tri, err := h.triagemService.ObterTriagem(c.Request.Context(), tenant, demandaID)
	if err != nil {
		responderErroTriagem(c, err)
		return
	}
	c.JSON(http.StatusOK, tri)
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ID inválido", Message: err.Error()})
		return 0, err
	}
	return uint(id), nil
}

// RegisterTriagemRoutes registra as rotas de triagem
func RegisterTriagemRoutes(r *gin.RouterGroup, handler *TriagemHandler) {
	triagem := r.Group("/demandas")
	{
		triagem.GET(":id/triagem", handler.ObterTriagem)
		triagem.POST(":id/triar", handler.Triar)
		triagem.POST(":id/evoluir", handler.Evoluir)
		triagem.GET(":id/duplicadas", handler.SugerirDuplicadas)
		triagem.GET(":id/similares-resolvidas", handler.HistoricoSimilares)
	}
	r.POST("/triagens/lote", handler.TriarLote)
	r.POST("/triagens/:id/duplicada", handler.MarcarDuplicada)
}
