package utils

import (
	"fmt"
	"os"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends reminder mail for investments stuck in pending. Delivery goes
// through Mailjet when API keys are present, otherwise SMTP. Failures are
// logged and swallowed: mail must never affect the ledger.
type Mailer struct {
	FromEmail string
	FromName  string
}

func NewMailer(fromEmail, fromName string) *Mailer {
	return &Mailer{FromEmail: fromEmail, FromName: fromName}
}

func (m *Mailer) SendPendingInvestmentReminder(toEmail, name, amount, currency string) {
	subject := "Ваш депозит ожидает подтверждения"
	body := fmt.Sprintf(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <table width="100%%" cellpadding="0" cellspacing="0" border="0" style="max-width:600px;background:#f3f2f0;border-radius:28px;padding:32px;">
    <tr>
      <td style="text-align:left;">
        <h1 style="margin:0 0 12px 0;font-family:Arial,sans-serif;font-size:28px;color:#111;">Депозит в обработке</h1>
        <p style="margin:0 0 24px 0;font-family:Arial,sans-serif;font-size:18px;color:#222;">Здравствуйте, %s! Ваш депозит %s %s ещё не подтверждён администратором. Мы сообщим, как только он будет зачислен.</p>
        <div style="text-align:center;font-family:Arial,sans-serif;font-size:13px;color:#aaa;">Если у вас возникли вопросы, свяжитесь с поддержкой.</div>
      </td>
    </tr>
  </table>
</body>`, name, amount, currency)

	apiKey := os.Getenv("MAILJET_API_KEY")
	secretKey := os.Getenv("MAILJET_SECRET_KEY")
	if apiKey != "" && secretKey != "" {
		m.sendMailjet(apiKey, secretKey, toEmail, name, subject, body)
		return
	}
	m.sendSMTP(toEmail, subject, body)
}

func (m *Mailer) sendMailjet(apiKey, secretKey, toEmail, toName, subject, body string) {
	mj := mailjet.NewMailjetClient(apiKey, secretKey)
	messages := &mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{
		{
			From:     &mailjet.RecipientV31{Email: m.FromEmail, Name: m.FromName},
			To:       &mailjet.RecipientsV31{{Email: toEmail, Name: toName}},
			Subject:  subject,
			HTMLPart: body,
		},
	}}
	if _, err := mj.SendMailV31(messages); err != nil {
		logrus.Errorf("Ошибка при отправке письма через Mailjet: %s", err)
		return
	}
	logrus.Infof("Письмо отправлено через Mailjet: %s", toEmail)
}

func (m *Mailer) sendSMTP(toEmail, subject, body string) {
	password := os.Getenv("SMTP_APP_PASSWORD")
	if password == "" {
		logrus.Warn("SMTP_APP_PASSWORD не установлен, письмо не отправлено")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.FromEmail)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Reply-To", m.FromEmail)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer("smtp.gmail.com", 587, m.FromEmail, password)
	if err := d.DialAndSend(msg); err != nil {
		logrus.Errorf("Ошибка при отправке письма: %s", err)
		return
	}
	logrus.Infof("Письмо отправлено: %s", toEmail)
}
