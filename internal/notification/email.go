package notification

import (
	"fmt"
	"html"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"pricewatch/internal/misc"
)

// EmailSender sends price-drop alerts over SMTP with STARTTLS, as a
// multipart message with plain-text and HTML alternatives.
type EmailSender struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
}

func (e *EmailSender) Send(a Alert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.Sender)
	m.SetHeader("To", e.Recipient)
	m.SetHeader("Subject", fmt.Sprintf("Price Drop Alert: %s", misc.StringLimit(a.ProductName, 50)))
	m.SetBody("text/plain", plainBody(a))
	m.AddAlternative("text/html", htmlBody(a))

	d := gomail.NewDialer(e.Host, e.Port, e.Sender, e.Password)
	if err := d.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "error sending email via %s:%d", e.Host, e.Port)
	}
	return nil
}

func savings(a Alert) (amount float64, percent float64) {
	amount = a.OldPrice - a.NewPrice
	if a.OldPrice > 0 {
		percent = amount / a.OldPrice * 100
	}
	return amount, percent
}

func plainBody(a Alert) string {
	amount, percent := savings(a)
	return fmt.Sprintf(`PRICE DROP ALERT!

Product: %s
Site: %s

Old Price: $%.2f
NEW PRICE: $%.2f
Target Price: $%.2f

You save: $%.2f (%.1f%% off)

View product: %s
`, a.ProductName, a.Site, a.OldPrice, a.NewPrice, a.TargetPrice, amount, percent, a.ProductURL)
}

func htmlBody(a Alert) string {
	amount, percent := savings(a)
	name := html.EscapeString(a.ProductName)
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif;">
  <h1>Price Drop Alert!</h1>
  <h2>%s</h2>
  <p><strong>Site:</strong> %s</p>
  <p><strong>Target price:</strong> $%.2f</p>
  <p><s>Was: $%.2f</s> &rarr; <strong>Now: $%.2f</strong></p>
  <p><strong>You save: $%.2f (%.1f%% off)</strong></p>
  <p><a href="%s">View product</a></p>
</body>
</html>`, name, html.EscapeString(a.Site), a.TargetPrice, a.OldPrice, a.NewPrice, amount, percent, a.ProductURL)
}
