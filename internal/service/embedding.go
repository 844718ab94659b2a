package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding returns a deterministic 28-dimension embedding for the
// given text: a lowercase letter histogram plus total length and word
// count. It exists so recipe search can be ordered by vector distance on
// postgres without an external embedding service.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)

	var dims [28]float32
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			dims[r-'a']++
		}
	}
	dims[26] = float32(len(text))
	dims[27] = float32(len(strings.Fields(text)))

	return pgvector.NewVector(dims[:])
}
