package mailer

import (
	"fmt"

	logrus "github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"netops_dashboard/internal/config"
)

// Sender delivers an email. Swapped out in tests.
type Sender func(to, subject, htmlBody string) error

// Send is the active delivery function. Defaults to SMTP via gomail.
var Send Sender = smtpSend

func smtpSend(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", config.App.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(config.App.SMTPHost, config.App.SMTPPort, config.App.SMTPUser, config.App.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		logrus.WithError(err).Error("mailer: failed to send email")
		return err
	}
	return nil
}

// SendActivationEmail mails the account activation link.
func SendActivationEmail(to, link string) error {
	body := fmt.Sprintf(`<p>Welcome to the network operations dashboard.</p>
<p>Activate your account: <a href="%s">%s</a></p>
<p>The link expires in 24 hours.</p>`, link, link)
	return Send(to, "Activate your account", body)
}

// SendTwoFACode mails a login verification code.
func SendTwoFACode(to, code string) error {
	body := fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code)
	return Send(to, "Your 2FA Code", body)
}
