package triage

import (
	"math"
	"regexp"
	"strings"

	"demandhub/internal/models"
)

// Limiares de similaridade. São constantes de contrato dos consumidores,
// não parâmetros de configuração.
const (
	// LimiarPossivelDuplicada marca "possível duplicada" nas sugestões.
	LimiarPossivelDuplicada = 50
	// LimiarHistoricoSimilar filtra a busca de demandas resolvidas similares.
	LimiarHistoricoSimilar = 40
)

// pesos dos componentes do score; somam 100 para que demandas idênticas
// pontuem exatamente 100
const (
	pesoTitulo    = 45
	pesoDescricao = 35
	pesoProduto   = 10
	pesoTipo      = 10
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Similaridade pontua de 0 a 100 o quanto duas demandas se parecem,
// combinando sobreposição de tokens do título e da descrição com reforços
// de mesmo produto e mesmo tipo. Função pura; aproximação de simetria é
// garantida pelo coeficiente simétrico de sobreposição.
func Similaridade(a, b *models.Demanda) int {
	score := float64(pesoTitulo)*sobreposicao(tokenizar(a.Titulo), tokenizar(b.Titulo)) +
		float64(pesoDescricao)*sobreposicao(tokenizar(a.Descricao), tokenizar(b.Descricao))

	if mesmoProduto(a, b) {
		score += pesoProduto
	}
	if strings.EqualFold(a.Tipo, b.Tipo) {
		score += pesoTipo
	}

	arredondado := int(math.Round(score))
	if arredondado > 100 {
		return 100
	}
	if arredondado < 0 {
		return 0
	}
	return arredondado
}

func mesmoProduto(a, b *models.Demanda) bool {
	if a.ProdutoID == nil || b.ProdutoID == nil {
		return a.ProdutoID == nil && b.ProdutoID == nil
	}
	return *a.ProdutoID == *b.ProdutoID
}

// tokenizar extrai o conjunto de tokens significativos, minúsculos e sem
// repetição. Palavras de uma letra não discriminam e ficam de fora.
func tokenizar(texto string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range tokenRe.FindAllString(texto, -1) {
		m = strings.ToLower(m)
		if len([]rune(m)) < 2 {
			continue
		}
		out[m] = struct{}{}
	}
	return out
}

// sobreposicao é o coeficiente de Sørensen–Dice entre dois conjuntos de
// tokens: 2|A∩B| / (|A|+|B|). Dois textos vazios contam como idênticos,
// para que a cópia exata de uma demanda pontue 100.
func sobreposicao(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	comuns := 0
	for t := range a {
		if _, ok := b[t]; ok {
			comuns++
		}
	}
	return 2 * float64(comuns) / float64(len(a)+len(b))
}
