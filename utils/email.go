package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

// ============================================================================
// STRUCTS & TYPES
// ============================================================================

type EmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

const resendEndpoint = "https://api.resend.com/emails"

var emailClient = &http.Client{Timeout: 10 * time.Second}

// ============================================================================
// TEMPLATES
// ============================================================================

const changeRequestEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>RSVP change request</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f3f4f6;">
    <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 40px;">
                <h2 style="margin: 0 0 20px 0; color: #1f2937;">💌 New RSVP change request</h2>
                <p style="color: #4b5563; font-size: 16px;">
                    <strong>{{.HouseholdName}}</strong> asked to change their RSVP after the deadline.
                </p>
                <blockquote style="border-left: 4px solid #a78bfa; margin: 20px 0; padding: 10px 20px; color: #374151;">{{.Message}}</blockquote>
                <p style="color: #6b7280; font-size: 14px;">Review it in the admin dashboard: {{.DashboardLink}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`

var changeRequestTmpl = template.Must(template.New("changeRequest").Parse(changeRequestEmailTemplate))

// RenderChangeRequestEmail builds the HTML body sent to the couple
func RenderChangeRequestEmail(householdName, message, dashboardLink string) (string, error) {
	data := struct {
		HouseholdName string
		Message       string
		DashboardLink string
	}{
		HouseholdName: householdName,
		Message:       message,
		DashboardLink: dashboardLink,
	}

	var body bytes.Buffer
	if err := changeRequestTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render change request email: %w", err)
	}
	return body.String(), nil
}

// ============================================================================
// SHARED HELPER (Resend API)
// ============================================================================

// SendResendEmail posts one message to the Resend API
func SendResendEmail(ctx context.Context, apiKey string, emailReq EmailRequest) error {
	if apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY not set")
	}

	jsonData, err := json.Marshal(emailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := emailClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}

	return nil
}
