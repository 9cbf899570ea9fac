// Package notify delivers one-time passwords to account owners.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"
)

// Subject is the subject line of every OTP email.
const Subject = "Your HealthMate OTP"

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/otp.html"))
	textTemplate = template.Must(template.ParseFS(templateFS, "templates/otp.txt"))
)

// otpData feeds both templates.
type otpData struct {
	OTP      string
	ValidFor string
}

func newOTPData(otp string, validFor time.Duration) otpData {
	return otpData{OTP: otp, ValidFor: humanDuration(validFor)}
}

// RenderText renders the plain text body; mostly useful for tests and logs.
func RenderText(otp string, validFor time.Duration) (string, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, newOTPData(otp, validFor)); err != nil {
		return "", fmt.Errorf("notify: render text: %w", err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "a few minutes"
	}
	switch {
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
