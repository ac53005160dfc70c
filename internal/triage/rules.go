package triage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"demandhub/internal/models"

	"github.com/sirupsen/logrus"
)

// Operadores de condição suportados.
const (
	OperadorIgual      = "equals"
	OperadorDiferente  = "notEquals"
	OperadorContem     = "contains"
	OperadorMaiorQue   = "greaterThan"
	OperadorMenorQue   = "lessThan"
	OperadorEm         = "in"
)

// Conectores entre condições consecutivas.
const (
	JuntarE  = "AND"
	JuntarOu = "OR"
)

// Tipos de ação executados pelo aplicador.
const (
	AcaoDefinirImpacto      = "SET_IMPACT"
	AcaoDefinirUrgencia     = "SET_URGENCY"
	AcaoDefinirComplexidade = "SET_COMPLEXITY"
	AcaoAtribuirResponsavel = "ASSIGN_OWNER"
	AcaoAlterarPrioridade   = "CHANGE_PRIORITY"
	AcaoAlterarStatus       = "CHANGE_STATUS"
)

// Condicao é uma entrada da lista ordenada de condições de uma regra.
// JuntarCom na condição i define como o resultado dela combina com a
// condição i+1 (dobra da esquerda para a direita, sem precedência).
type Condicao struct {
	Campo     string      `json:"field"`
	Operador  string      `json:"operator"`
	Valor     interface{} `json:"value"`
	JuntarCom string      `json:"joinWithNext"`
}

// Acao é uma entrada da lista ordenada de ações de uma regra.
type Acao struct {
	Tipo  string      `json:"type"`
	Valor interface{} `json:"value"`
}

// ResultadoExecucao descreve o desfecho da avaliação de uma regra: as ações
// a executar quando casou, ou Sucesso=false quando a avaliação falhou.
type ResultadoExecucao struct {
	RegraID uint   `json:"regra_id"`
	Nome    string `json:"nome"`
	Sucesso bool   `json:"sucesso"`
	Acoes   []Acao `json:"acoes,omitempty"`
	Erro    string `json:"erro,omitempty"`
}

// AvaliarRegras avalia as regras ativas do tenant, em ordem de declaração,
// contra um contexto. A avaliação é determinística e não muta o contexto;
// quem muta agregados é o Aplicador. Uma regra que falha (JSON inválido,
// pânico na avaliação) vira um resultado com Sucesso=false e não bloqueia
// as regras seguintes.
func AvaliarRegras(regras []models.RegraAutomacao, ctx *Contexto, logger *logrus.Logger) []ResultadoExecucao {
	if logger == nil {
		logger = logrus.New()
	}
	var resultados []ResultadoExecucao
	for i := range regras {
		regra := &regras[i]
		res, aplicavel := avaliarRegra(regra, ctx, logger)
		if aplicavel {
			resultados = append(resultados, res)
		}
	}
	return resultados
}

// avaliarRegra retorna o resultado e se ele deve entrar na saída (regras que
// simplesmente não casaram não produzem resultado).
func avaliarRegra(regra *models.RegraAutomacao, ctx *Contexto, logger *logrus.Logger) (res ResultadoExecucao, aplicavel bool) {
	res = ResultadoExecucao{RegraID: regra.ID, Nome: regra.Nome}
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("automacao: regra %d (%s) falhou na avaliação: %v", regra.ID, regra.Nome, r)
			res.Sucesso = false
			res.Acoes = nil
			res.Erro = fmt.Sprintf("falha na avaliação: %v", r)
			aplicavel = true
		}
	}()

	var condicoes []Condicao
	if regra.Condicoes != "" {
		if err := json.Unmarshal([]byte(regra.Condicoes), &condicoes); err != nil {
			logger.Warnf("automacao: condições inválidas na regra %d (%s): %v", regra.ID, regra.Nome, err)
			res.Erro = "condições inválidas: " + err.Error()
			return res, true
		}
	}

	if !dobrarCondicoes(condicoes, ctx) {
		return res, false
	}

	var acoes []Acao
	if regra.Acoes != "" {
		if err := json.Unmarshal([]byte(regra.Acoes), &acoes); err != nil {
			logger.Warnf("automacao: ações inválidas na regra %d (%s): %v", regra.ID, regra.Nome, err)
			res.Erro = "ações inválidas: " + err.Error()
			return res, true
		}
	}

	res.Sucesso = true
	res.Acoes = acoes
	return res, true
}

// dobrarCondicoes aplica a dobra esquerda->direita: o resultado da primeira
// condição semeia o acumulador; o conector da condição i combina o acumulado
// com a condição i+1. Regra sem condições sempre casa.
func dobrarCondicoes(condicoes []Condicao, ctx *Contexto) bool {
	if len(condicoes) == 0 {
		return true
	}
	acc := avaliarCondicao(condicoes[0], ctx)
	for i := 1; i < len(condicoes); i++ {
		atual := avaliarCondicao(condicoes[i], ctx)
		if strings.EqualFold(condicoes[i-1].JuntarCom, JuntarOu) {
			acc = acc || atual
		} else {
			acc = acc && atual
		}
	}
	return acc
}

func avaliarCondicao(cond Condicao, ctx *Contexto) bool {
	atual, ok := ctx.Resolver(cond.Campo)
	if !ok {
		// comparações contra indefinido são falsas, exceto notEquals
		return cond.Operador == OperadorDiferente
	}

	switch cond.Operador {
	case OperadorIgual:
		return valoresIguais(atual, cond.Valor)
	case OperadorDiferente:
		return !valoresIguais(atual, cond.Valor)
	case OperadorContem:
		return contem(atual, cond.Valor)
	case OperadorMaiorQue:
		a, okA := paraNumero(atual)
		b, okB := paraNumero(cond.Valor)
		return okA && okB && a > b
	case OperadorMenorQue:
		a, okA := paraNumero(atual)
		b, okB := paraNumero(cond.Valor)
		return okA && okB && a < b
	case OperadorEm:
		lista, ok := cond.Valor.([]interface{})
		if !ok {
			return false
		}
		for _, v := range lista {
			if valoresIguais(atual, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// valoresIguais compara com normalização de caixa para operandos string.
func valoresIguais(a, b interface{}) bool {
	return strings.EqualFold(paraTexto(a), paraTexto(b))
}

// contem é substring para escalares e pertencimento para listas.
func contem(atual, esperado interface{}) bool {
	alvo := strings.ToLower(paraTexto(esperado))
	switch v := atual.(type) {
	case []interface{}:
		for _, item := range v {
			if strings.ToLower(paraTexto(item)) == alvo {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if strings.ToLower(item) == alvo {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(paraTexto(atual)), alvo)
	}
}

func paraTexto(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func paraNumero(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
