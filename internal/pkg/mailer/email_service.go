package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendProcessingCompleted(toEmail, documentID, fileName string) error
	SendProcessingFailed(toEmail, documentID, fileName, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendProcessingCompleted(toEmail, documentID, fileName string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your document is ready")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Document processed</h2>
			<p><b>%s</b> has finished processing and its extracted data is available.</p>
			<p>Document ID: <code>%s</code></p>
		</div>
	`, fileName, documentID)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send completion mail to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}

func (s *emailService) SendProcessingFailed(toEmail, documentID, fileName, reason string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Document processing failed")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Processing failed</h2>
			<p>We could not process <b>%s</b>.</p>
			<p>Reason: %s</p>
			<p>Document ID: <code>%s</code></p>
			<p>You can retry the upload at any time.</p>
		</div>
	`, fileName, reason, documentID)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure mail to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
