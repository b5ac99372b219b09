package services

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var proposalEmailTemplate = template.Must(template.New("proposal").Parse(`<p>Olá {{.ClientName}},</p>
<p>Segue a proposta <strong>{{.Title}}</strong> preparada por {{.Agency}}.</p>
<p><a href="{{.Link}}">Clique aqui para visualizar o PDF</a> (link válido por 7 dias).</p>`))

type proposalEmailData struct {
	ClientName string
	Title      string
	Agency     string
	Link       string
}

// Mailer delivers transactional email.
type Mailer interface {
	SendProposal(to, clientName, title, agency, link string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *smtpMailer) SendProposal(to, clientName, title, agency, link string) error {
	var body bytes.Buffer
	data := proposalEmailData{ClientName: clientName, Title: title, Agency: agency, Link: link}
	if err := proposalEmailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render proposal email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Proposta: %s", title))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send proposal email: %w", err)
	}
	return nil
}
