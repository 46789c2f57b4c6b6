package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

var parsed = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// RenderHTML renders the named template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Subject returns the subject line for a known template name.
func Subject(name string) string {
	switch name {
	case "verify_email":
		return "Verify your email address"
	case "reset_password":
		return "Reset your password"
	default:
		return "Notification"
	}
}

// TextFallback builds a plain-text body for clients that reject HTML.
func TextFallback(name string, data map[string]any) string {
	switch name {
	case "verify_email":
		return fmt.Sprintf("Hi %v,\n\nVerify your email address by opening this link:\n%v\n", data["Name"], data["VerifyURL"])
	case "reset_password":
		return fmt.Sprintf("Hi %v,\n\nReset your password by opening this link (valid for 1 hour):\n%v\n\nIf you did not request this, you can ignore this email.\n", data["Name"], data["ResetURL"])
	default:
		return ""
	}
}
