// Package mail sends transactional email over SMTP. Delivery is
// best-effort: callers run it in the background and only log failures.
package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var confirmTmpl = template.Must(template.New("confirm").Parse(`
<p>Hello {{.Username}},</p>
<p>Please confirm your email address by following the link below:</p>
<p><a href="{{.Host}}api/users/confirmed_email/{{.Token}}">Confirm email</a></p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>A password reset was requested for your account.</p>
<p>Your reset token: <b>{{.Token}}</b></p>
<p>The token expires in 30 minutes. If you did not request a reset, ignore this message.</p>
`))

type Sender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSender(host string, port int, username, password, from, fromName string) *Sender {
	return &Sender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (s *Sender) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering mail body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

func (s *Sender) SendConfirmation(to, username, host, token string) error {
	return s.send(to, "Confirm your email", confirmTmpl, map[string]string{
		"Username": username,
		"Host":     host,
		"Token":    token,
	})
}

func (s *Sender) SendPasswordReset(to, token string) error {
	return s.send(to, "Password reset", resetTmpl, map[string]string{
		"Token": token,
	})
}
