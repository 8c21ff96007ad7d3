package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var followUpTemplate = template.Must(template.ParseFS(templateFS, "templates/follow_up.html"))

// RenderFollowUp renders the post-visit follow-up body. Values are HTML-escaped.
func RenderFollowUp(data FollowUpEmailData) (string, error) {
	var body bytes.Buffer
	if err := followUpTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render follow-up template: %w", err)
	}
	return body.String(), nil
}
