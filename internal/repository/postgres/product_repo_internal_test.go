package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchWords(t *testing.T) {
	assert.Equal(t, []string{"luva", "procedimento"}, searchWords("Luva de procedimento M"))
	assert.Equal(t, []string{"soro", "fisiológico", `0,9\%`}, searchWords("Soro Fisiológico 0,9% soro"))
	assert.Empty(t, searchWords("de a M"))
	assert.Len(t, searchWords("um dois três quatro cinco seis sete"), maxSearchWords)
}
