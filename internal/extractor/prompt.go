package extractor

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to act as a strict JSON extractor.
const SystemPrompt = "Você é um extrator de dados JSON altamente preciso. Sua prioridade é a integridade dos dados e a correta separação de fornecedores."

// maxPromptText bounds the auxiliary text layer embedded in the prompt.
const maxPromptText = 60000

// BuildQuotationPrompt returns the user prompt for a quotation report. text is
// the recovered text layer, sent as auxiliary context next to the page images.
func BuildQuotationPrompt(fileName, text string) string {
	text = strings.TrimSpace(text)
	raw := "(Documento enviado como imagem - use visão para extrair)"
	if text != "" {
		raw = truncate(text, maxPromptText)
	}

	return fmt.Sprintf(`Extraia os dados deste relatório de produtos confirmados (arquivo %q), organizando por fornecedor.
Para cada bloco de fornecedor, identifique e capture os seguintes campos:

1. Identificação do Pedido: Número da Cotação, Título.
2. Dados do Fornecedor: Nome Fantasia (localizado acima de 'Dados do fornecedor'), CNPJ no formato NN.NNN.NNN/NNNN-NN, E-mail e Número da Ordem de Compra.
3. Logística de Entrega: Prazo de Entrega (em dias).
4. Tabela de Itens: para cada item confirmado, extraia Código do Produto, Descrição, Quantidade, Unidade, Valor Unitário e Valor Total.

Use ponto como separador decimal nos números. Omita campos que não existirem no documento.

DADOS BRUTOS (TEXTO EXTRAÍDO):
---
%s
---

RETORNE APENAS UM JSON VÁLIDO no seguinte formato:
{
  "quotationNumber": "string",
  "quotationTitle": "string",
  "suppliers": [
    {
      "name": "string",
      "cnpj": "string",
      "email": "string",
      "orderNumber": "string",
      "deliveryDeadline": "string",
      "items": [
        {
          "code": "string",
          "description": "string",
          "quantity": number,
          "unit": "string",
          "unitPrice": number,
          "totalValue": number
        }
      ]
    }
  ]
}`, fileName, raw)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
