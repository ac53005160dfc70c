package handlers

import (
	"errors"
	"net/http"

	"demandhub/internal/triage"

	"github.com/gin-gonic/gin"
)

// ErrorResponse estrutura de erro
type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Violacoes []string `json:"violacoes,omitempty"`
	Code      int      `json:"code,omitempty"`
}

// PaginatedResponse estrutura de resposta paginada
type PaginatedResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// SuccessResponse estrutura de sucesso
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// responderErroTriagem mapeia a taxonomia de erros do domínio para HTTP:
// NotFound -> 404, InvalidStatus -> 422, validação -> 422 com a lista
// completa de violações, resto -> 500.
func responderErroTriagem(c *gin.Context, err error) {
	var validacao *triage.ErroValidacao
	switch {
	case errors.Is(err, triage.ErrDemandaNaoEncontrada):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Não encontrado", Message: err.Error()})
	case errors.Is(err, triage.ErrStatusInvalido):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Status inválido", Message: err.Error()})
	case errors.Is(err, triage.ErrDuplicidadePropria):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Duplicidade inválida", Message: err.Error()})
	case errors.As(err, &validacao):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:     "Validação falhou",
			Message:   err.Error(),
			Violacoes: validacao.Violacoes,
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Erro interno", Message: err.Error()})
	}
}

// tenantDoContexto lê o tenant injetado pelo middleware de autenticação.
func tenantDoContexto(c *gin.Context) (string, bool) {
	tenant := c.GetString("tenant_id")
	if tenant == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Message: "tenant ausente no token"})
		return "", false
	}
	return tenant, true
}

func usuarioDoContexto(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
