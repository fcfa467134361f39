package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

var GlobalEmailService *EmailService

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

type SubscriptionStartedData struct {
	Name         string
	PlanName     string
	Duration     int
	Price        float64
	TotalCredits int64
	ExpiresAt    time.Time
}

type ExpiryWarningData struct {
	Name       string
	PlanName   string
	DaysLeft   int
	ExpiryDate time.Time
}

func InitEmailService(apiKey, from string) error {
	service, err := NewEmailService(apiKey, from)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}

func NewEmailService(apiKey, from string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("could not parse email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      from,
		templates: templates,
	}, nil
}

func (s *EmailService) SendSubscriptionStartedEmail(to string, data SubscriptionStartedData) error {
	return s.send(to, fmt.Sprintf("Your %s plan is active", data.PlanName), "subscription_started", data)
}

func (s *EmailService) SendSubscriptionExpiryWarning(to string, data ExpiryWarningData) error {
	return s.send(to, fmt.Sprintf("Your %s plan expires in %d days", data.PlanName, data.DaysLeft), "expiry_warning", data)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("could not render template %s: %v", templateName, err)
	}

	payload := emailPayload{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}
