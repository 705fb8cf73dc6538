package mail

import (
	"fmt"
	"net/smtp"
)

// SMTPMailer sends the subscription confirmation through a plain SMTP relay.
type SMTPMailer struct {
	From     string
	Password string
	Host     string
	Port     string
}

func NewSMTPMailer(from, password, host, port string) *SMTPMailer {
	return &SMTPMailer{From: from, Password: password, Host: host, Port: port}
}

func (m *SMTPMailer) SendPaymentConfirmation(to string, displayName string) error {
	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)

	greeting := "Olá"
	if displayName != "" {
		greeting = "Olá, " + displayName
	}

	subject := "🎉 Assinatura Confirmada - TreinoRun"
	body := fmt.Sprintf("%s!\n\nSua assinatura foi confirmada. Bons treinos!\n", greeting)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, message)
}
