// Package email formats triage summaries shared by the email senders.
package email

import (
	"fmt"
	"html"
	"strings"

	"sva/internal/port"
)

// Subject returns the subject line of a triage summary.
func Subject(s port.TriageSummary) string {
	subject := fmt.Sprintf("Cotação %s: %d pedido(s) em triagem", s.QuotationNumber, s.Committed)
	if s.Failed > 0 {
		subject += fmt.Sprintf(", %d com falha", s.Failed)
	}
	return subject
}

// ReviewURL links to the extraction in the frontend, or is empty when no
// frontend is configured.
func ReviewURL(frontendURL string, s port.TriageSummary) string {
	if frontendURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/extractions/%s", strings.TrimRight(frontendURL, "/"), s.ExtractionID)
}

// TextBody returns the plain text body of a triage summary.
func TextBody(s port.TriageSummary, frontendURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Arquivo: %s\n", s.FileName)
	if s.HospitalUnit != "" {
		fmt.Fprintf(&b, "Unidade: %s\n", s.HospitalUnit)
	}
	fmt.Fprintf(&b, "Pedidos gravados: %d\nFalhas: %d\n\n", s.Committed, s.Failed)
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	if u := ReviewURL(frontendURL, s); u != "" {
		fmt.Fprintf(&b, "\nRevisar: %s\n", u)
	}
	return b.String()
}

// HTMLBody returns the HTML body of a triage summary.
func HTMLBody(s port.TriageSummary, frontendURL string) string {
	var items strings.Builder
	for _, l := range s.Lines {
		fmt.Fprintf(&items, "    <li>%s</li>\n", html.EscapeString(l))
	}
	link := ""
	if u := ReviewURL(frontendURL, s); u != "" {
		link = fmt.Sprintf(`  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Abrir triagem</a>
  </p>
`, html.EscapeString(u))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Cotação %s</h2>
  <p>Arquivo: %s</p>
  <p>Pedidos gravados: <strong>%d</strong>. Falhas: <strong>%d</strong>.</p>
  <ul>
%s  </ul>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		html.EscapeString(s.QuotationNumber), html.EscapeString(s.FileName), s.Committed, s.Failed,
		items.String(), link, html.EscapeString(s.HospitalUnit))
}
