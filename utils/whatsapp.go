package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
)

// SendWhatsAppTemplate sends a pre-approved template through the
// WhatsApp Business Cloud API. params fill the template body variables
// in order.
func SendWhatsAppTemplate(phone, templateName string, params []string) error {
	token := os.Getenv("WHATSAPP_TOKEN")
	phoneID := os.Getenv("WHATSAPP_PHONE_ID")
	if token == "" || phoneID == "" {
		return fmt.Errorf("whatsapp credentials are not set")
	}

	parameters := make([]map[string]string, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]string{"type": "text", "text": p})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "template",
		"template": map[string]any{
			"name":     templateName,
			"language": map[string]string{"code": "es"},
			"components": []map[string]any{
				{"type": "body", "parameters": parameters},
			},
		},
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", phoneID))

	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("whatsapp send failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var response map[string]any
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return fmt.Errorf("failed to parse whatsapp response: %w", err)
	}
	if _, ok := response["messages"]; !ok {
		return fmt.Errorf("no message id in whatsapp response: %v", response)
	}
	return nil
}
