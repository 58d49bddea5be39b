package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Bebidas", want: Drinks},
		{raw: "  drink ", want: Drinks},
		{raw: "VESTIMENTA", want: Clothing},
		{raw: "clothing", want: Clothing},
		{raw: "Suplemento", want: Supplements},
		{raw: "supplements", want: Supplements},
		{raw: "", want: All},
		{raw: "accesorios", want: All},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"Todos", "Ropa", "Suplementos", "Bebidas"}, List())
}
