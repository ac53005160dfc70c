package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var removeAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normaliza um rótulo humano para a chave estável de catálogo:
// minúsculas, acentos removidos, sequências não alfanuméricas viram um único
// "_", sem "_" nas pontas. "Não Priorizado" -> "nao_priorizado".
func Slugify(valor string) string {
	s := strings.ToLower(strings.TrimSpace(valor))
	if s == "" {
		return ""
	}
	if limpo, _, err := transform.String(removeAcentos, s); err == nil {
		s = limpo
	}
	var b strings.Builder
	b.Grow(len(s))
	anterior := '_'
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			anterior = r
			continue
		}
		if anterior != '_' {
			b.WriteRune('_')
			anterior = '_'
		}
	}
	return strings.Trim(b.String(), "_")
}
