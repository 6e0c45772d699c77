package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want string
	}

	tests := []testCase{
		{name: "Accents", in: "Edifício São João", want: "edificio_sao_joao"},
		{name: "Punctuation", in: "  Obra #12 - Fase 2/3 ", want: "obra_12_fase_2_3"},
		{name: "Cedilla", in: "Fundação & Estrutura", want: "fundacao_estrutura"},
		{name: "AlreadySlug", in: "mao_de_obra", want: "mao_de_obra"},
		{name: "Empty", in: "", want: "geral"},
		{name: "OnlySymbols", in: "%%%", want: "geral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in, "geral"))
		})
	}
}
