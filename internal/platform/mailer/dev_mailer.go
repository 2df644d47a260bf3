package mailer

import (
	"github.com/diverkids/diverkids-api/pkg/logger"
)

// DevMailer logs mail instead of sending it. Used when EMAIL_DEV_MODE is on
// so local setups work without a MailerSend account.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, _ string) (string, error) {
	logger.Info("dev mailer: email suppressed",
		"to", toEmail, "name", toName, "subject", subject, "text", text)
	return "dev", nil
}

func (d *DevMailer) SendWelcome(toEmail, toName string) error {
	_, err := d.Send(toEmail, toName, "¡Bienvenido a DiverKids!", "", "")
	return err
}

func (d *DevMailer) SendPasswordReset(toEmail, resetLink string) error {
	_, err := d.Send(toEmail, "", "Recuperación de Contraseña - DiverKids", resetLink, "")
	return err
}

func (d *DevMailer) SendContactNotification(adminEmail, name, email, _, _ string) error {
	_, err := d.Send(adminEmail, "", "Nuevo mensaje de contacto - "+name, email, "")
	return err
}

var _ Service = (*DevMailer)(nil)
