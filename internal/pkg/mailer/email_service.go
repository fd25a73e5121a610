package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendTierConfirmation(toEmail, tierName string, monthlyCost float64) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendTierConfirmation(toEmail, tierName string, monthlyCost float64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your VisionVoice plan has changed")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Plan updated</h2>
			<p>Your account is now on the <strong>%s</strong> plan ($%.0f/mo).</p>
			<p><a href="%s">Back to VisionVoice</a></p>
			<p>If you didn't make this change, please contact support.</p>
		</div>
	`, tierName, monthlyCost, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send tier confirmation to %s: %v\n", toEmail, err)
		return err
	}
	return nil
}
