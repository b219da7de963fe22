package service

import (
	"errors"
	"fmt"

	"phonebook/contacts-api/internal/model"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer abstracts SMTP delivery so handlers can be tested without a mail
// server. The real implementation is SMTPMailer.
type Mailer interface {
	SendVerificationMail(t *model.VerificationToken, sendTo string) error
	SendResetMail(t *model.VerificationToken, sendTo string) error
}

type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) SendVerificationMail(t *model.VerificationToken, sendTo string) error {
	link := actionLink("verify", t)

	return m.send(sendTo,
		"Verify your email address",
		fmt.Sprintf("Click <a href='%v'>here</a> to verify your account.<br><br>This link will expire in 30 minutes", link),
	)
}

func (m *SMTPMailer) SendResetMail(t *model.VerificationToken, sendTo string) error {
	link := actionLink("reset-password", t)

	return m.send(sendTo,
		"Reset your password",
		fmt.Sprintf("Click <a href='%v'>here</a> to choose a new password.<br><br>This link will expire in 30 minutes. If you didn't request this, ignore this email", link),
	)
}

func (m *SMTPMailer) send(sendTo, subject, body string) error {
	from := viper.GetString("mail.sender_address")
	if sendTo == from {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	return d.DialAndSend(msg)
}

func actionLink(action string, t *model.VerificationToken) string {
	var s string
	if viper.GetBool("host.ssl.enabled") {
		s = "s"
	}

	return fmt.Sprintf("http%v://%v/%v?user_id=%v&token=%v",
		s, viper.GetString("host.domain"), action, t.UserID, t.Token)
}
