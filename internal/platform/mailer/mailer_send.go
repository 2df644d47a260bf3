package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type Mailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	m := &Mailer{
		Enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or MAILER_FROM_EMAIL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Header.Get("X-Message-Id"), nil
}

func (m *Mailer) SendWelcome(toEmail, toName string) error {
	subject := "¡Bienvenido a DiverKids!"
	text := fmt.Sprintf("Hola %s,\n\nGracias por registrarte en DiverKids. "+
		"Con tu cuenta puedes reservar paquetes de animación, rentar disfraces y gestionar tus eventos.\n\n"+
		"Saludos,\nEl equipo de DiverKids", toName)
	html := fmt.Sprintf(`<h2>Hola %s,</h2>
<p>Gracias por registrarte en DiverKids. Con tu cuenta puedes:</p>
<ul>
  <li>Reservar paquetes de animación</li>
  <li>Rentar disfraces para tus eventos</li>
  <li>Gestionar tus reservas</li>
</ul>
<p>Saludos,<br>El equipo de DiverKids</p>`, toName)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}

func (m *Mailer) SendPasswordReset(toEmail, resetLink string) error {
	subject := "Recuperación de Contraseña - DiverKids"
	text := fmt.Sprintf("Recibimos una solicitud para restablecer tu contraseña.\n\n"+
		"Abre este enlace para crear una nueva: %s\n\n"+
		"El enlace expira en 1 hora. Si no solicitaste este cambio, ignora este email.", resetLink)
	html := fmt.Sprintf(`<p>Recibimos una solicitud para restablecer tu contraseña.</p>
<p><a href="%s">Restablecer Contraseña</a></p>
<p style="font-size:12px">Este enlace expirará en 1 hora. Si no solicitaste este cambio, ignora este email.</p>`, resetLink)
	_, err := m.Send(toEmail, "", subject, text, html)
	return err
}

func (m *Mailer) SendContactNotification(adminEmail, name, email, phone, message string) error {
	if phone == "" {
		phone = "No proporcionado"
	}
	subject := "Nuevo mensaje de contacto - " + name
	text := fmt.Sprintf("Nombre: %s\nEmail: %s\nTeléfono: %s\n\n%s", name, email, phone, message)
	html := fmt.Sprintf(`<h3>Nuevo Mensaje de Contacto</h3>
<p><strong>Nombre:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Teléfono:</strong> %s</p>
<p><strong>Mensaje:</strong></p>
<p>%s</p>`, name, email, phone, message)
	_, err := m.Send(adminEmail, "", subject, text, html)
	return err
}

var _ Service = (*Mailer)(nil)
