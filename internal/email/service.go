package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
		send: smtp.SendMail,
	}
}

// SendOrderConfirmation mails the confirmation of a completed order
func (s *Service) SendOrderConfirmation(to string, o Order) error {
	subject := fmt.Sprintf("Order confirmation #%s", o.Number)
	return s.deliver(to, subject, BuildOrderConfirmationBody(o))
}

// SendOrderCancellation mails the notice of a canceled order
func (s *Service) SendOrderCancellation(to string, o Order) error {
	subject := fmt.Sprintf("Order #%s canceled", o.Number)
	return s.deliver(to, subject, BuildOrderCancellationBody(o))
}

func (s *Service) deliver(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient for %q", subject)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, nil, s.from, []string{to}, []byte(msg))
}
