package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"gopkg.in/gomail.v2"

	"techpals/config"
)

// Embedded email templates
var emailTemplates = map[string]string{
	"booking_assigned": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body>
    <h2>Your booking has been assigned</h2>
    <p>Hello {{.Name}},</p>
    <p>Your booking for <strong>{{.ServiceName}}</strong> has been assigned to team <strong>{{.GroupName}}</strong>.</p>
    <p>Team due date: {{.DueDate}}</p>
    <p>&copy; {{.Year}} TechPals</p>
</body>
</html>`,
	"report_submitted": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body>
    <h2>Your booking has been completed</h2>
    <p>Hello {{.Name}},</p>
    <p>Team <strong>{{.GroupName}}</strong> has submitted the closing report for your <strong>{{.ServiceName}}</strong> booking.</p>
    <p>&copy; {{.Year}} TechPals</p>
</body>
</html>`,
	"due_reminder": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body>
    <h2>Due date reminder</h2>
    <p>Hello {{.Name}},</p>
    <p>{{.What}} is due on {{.DueDate}}.</p>
    <p>&copy; {{.Year}} TechPals</p>
</body>
</html>`,
}

// Mailer sends notification emails. With no SMTP host configured every
// send is a logged no-op, which keeps notifications non-fatal everywhere.
type Mailer struct {
	Logger *log.Logger
}

func NewMailer(logger *log.Logger) *Mailer {
	return &Mailer{Logger: logger}
}

type MailData struct {
	Subject     string
	Name        string
	ServiceName string
	GroupName   string
	What        string
	DueDate     string
	Year        int
}

func (m *Mailer) Send(to, templateName string, data MailData) error {
	if config.AppConfig.SMTPHost == "" {
		m.Logger.Printf("SMTP not configured, skipping %q mail to %s", templateName, to)
		return nil
	}

	tmplText, ok := emailTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateName)
	}

	data.Year = time.Now().Year()

	tmpl, err := template.New(templateName).Parse(tmplText)
	if err != nil {
		return fmt.Errorf("failed to parse mail template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render mail template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.AppConfig.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", data.Subject)
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
