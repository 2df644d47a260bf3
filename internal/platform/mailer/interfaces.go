package mailer

// Service sends transactional email. Every call is best-effort from the
// caller's point of view: failures are logged, never surfaced to clients.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendWelcome(toEmail, toName string) error
	SendPasswordReset(toEmail, resetLink string) error
	SendContactNotification(adminEmail, name, email, phone, message string) error
}
