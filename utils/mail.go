package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"strings"
)

type OrderEmailItem struct {
	Name      string
	Quantity  int
	Size      string
	Color     string
	UnitPrice float64
	Subtotal  float64
}

type OrderEmailData struct {
	CustomerName string
	OrderNumber  string
	Items        []OrderEmailItem
	Subtotal     float64
	ShippingCost float64
	Total        float64
	LogoURL      string
}

// SendEmail renders the HTML template with the order snapshot and
// delivers it over SMTP.
func SendEmail(emailTo string, emailSubject string, data OrderEmailData, templatePath string) error {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	from := os.Getenv("FROM_EMAIL")
	headers := []string{
		"From: " + from,
		"To: " + emailTo,
		"Subject: " + emailSubject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + body.String()

	auth := smtp.PlainAuth("", from, os.Getenv("FROM_EMAIL_PASSWORD"), os.Getenv("FROM_EMAIL_SMTP"))
	if err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, from, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
