package email

import (
	"fmt"
	"html"
	"strings"

	"qabot/internal/config"
	"qabot/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { padding: 15px; text-align: center; font-size: 12px; color: #6b7280; }
        .question { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 10px; margin: 8px 0; white-space: pre-wrap; }
        .when { color: #6b7280; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle))
}

// UnansweredDigest generates the periodic digest of questions the bot could
// not answer. dropped counts questions left out because the batch was full.
func (t *Templates) UnansweredDigest(subjectPrefix string, questions []models.UnansweredQuestion, dropped int) (subject, htmlBody, textBody string) {
	total := len(questions) + dropped
	subject = fmt.Sprintf("[%s] %s: %d", t.cfg.SiteTitle, subjectPrefix, total)

	var content, text strings.Builder
	fmt.Fprintf(&content, "<p>%d question(s) could not be answered since the last digest.</p>\n", total)
	fmt.Fprintf(&text, "%d question(s) could not be answered since the last digest.\n\n", total)

	for _, q := range questions {
		when := q.CreatedAt.UTC().Format("2006-01-02 15:04 MST")
		fmt.Fprintf(&content, `<div class="question">%s<br><span class="when">%s</span></div>`+"\n",
			html.EscapeString(q.Question), when)
		fmt.Fprintf(&text, "- [%s] %s\n", when, q.Question)
	}

	if dropped > 0 {
		fmt.Fprintf(&content, "<p>%d more not shown. See the fallback log for the full list.</p>\n", dropped)
		fmt.Fprintf(&text, "\n%d more not shown. See the fallback log for the full list.\n", dropped)
	}

	htmlBody = t.baseHTML(subjectPrefix, content.String())
	textBody = text.String()
	return subject, htmlBody, textBody
}
