package catalog

import "testing"

func TestSlugify(t *testing.T) {
	casos := []struct {
		entrada string
		querido string
	}{
		{"Crítico", "critico"},
		{"Média", "media"},
		{"Em Análise", "em_analise"},
		{"  espaços  nas  bordas  ", "espacos_nas_bordas"},
		{"Urgência-Alta!", "urgencia_alta"},
		{"já_com_underscore", "ja_com_underscore"},
		{"ABC123", "abc123"},
		{"", ""},
		{"???", ""},
	}
	for _, c := range casos {
		if got := Slugify(c.entrada); got != c.querido {
			t.Errorf("Slugify(%q) = %q, esperava %q", c.entrada, got, c.querido)
		}
	}
}
