package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
)

// SMTPSender delivers one-time codes over SMTP.
type SMTPSender struct {
	host      string
	port      string
	user      string
	password  string
	fromEmail string
}

func NewSMTPSender(host, port, user, password string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		fromEmail: user,
	}
}

// SendCode sends the verification code email. Designed to be called in a
// goroutine; the context is accepted for interface compatibility, net/smtp
// does not support cancellation.
func (s *SMTPSender) SendCode(ctx context.Context, toEmail, code string) error {
	body, err := renderCodeTemplate(code)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: Your verification code\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, toEmail, body,
	))

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

var codeTemplate = template.Must(template.New("code").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Verify your email address</h2>
    <p>Enter this code to finish setting up your account:</p>
    <p style="font-size: 32px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p>The code expires in 10 minutes. If you didn't sign up, you can safely ignore this email.</p>
</body>
</html>
`))

func renderCodeTemplate(code string) (string, error) {
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
