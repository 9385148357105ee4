package email_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"sva/internal/email"
	"sva/internal/port"
)

func summary() port.TriageSummary {
	return port.TriageSummary{
		ExtractionID:    uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001"),
		FileName:        "cotacao_4521.pdf",
		QuotationNumber: "4521",
		HospitalUnit:    "Hospital Central",
		Committed:       2,
		Failed:          1,
		Lines:           []string{"Acme: created, 3 itens", "Beta & Filhos: failed, 1 itens (timeout)"},
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Cotação 4521: 2 pedido(s) em triagem, 1 com falha", email.Subject(summary()))

	s := summary()
	s.Failed = 0
	assert.Equal(t, "Cotação 4521: 2 pedido(s) em triagem", email.Subject(s))
}

func TestTextBody(t *testing.T) {
	body := email.TextBody(summary(), "https://compras.example.org/")

	assert.Contains(t, body, "Unidade: Hospital Central")
	assert.Contains(t, body, "- Acme: created, 3 itens\n")
	assert.Contains(t, body, "Revisar: https://compras.example.org/extractions/6f1c2d3e-0000-4000-8000-000000000001")
}

func TestTextBody_NoFrontend(t *testing.T) {
	assert.NotContains(t, email.TextBody(summary(), ""), "Revisar")
}

func TestHTMLBody_EscapesLines(t *testing.T) {
	body := email.HTMLBody(summary(), "")

	assert.Contains(t, body, "<li>Beta &amp; Filhos: failed, 1 itens (timeout)</li>")
	assert.NotContains(t, body, "Abrir triagem")
}
