// Package notification delivers price-drop alerts over the configured
// channels. Channels fail independently; a dead SMTP server never blocks
// the desktop toast and vice versa.
package notification

// Alert is everything a channel needs to render a price-drop message.
type Alert struct {
	ProductName string
	ProductURL  string
	Site        string
	OldPrice    float64
	NewPrice    float64
	TargetPrice float64
}

// Result reports which channels actually delivered.
type Result struct {
	EmailSent   bool
	DesktopSent bool
}

func (r Result) Any() bool {
	return r.EmailSent || r.DesktopSent
}

type Notifier struct {
	Email   *EmailSender
	Desktop *DesktopSender
	Logger  logger
}

type logger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// Enabled reports whether any channel is configured.
func (n Notifier) Enabled() bool {
	return n.Email != nil || n.Desktop != nil
}

// Notify dispatches the alert to every configured channel and reports
// per-channel success. Delivery errors are logged, never returned: the
// caller's price/history updates must not depend on them.
func (n Notifier) Notify(a Alert) Result {
	var res Result
	if n.Email != nil {
		if err := n.Email.Send(a); err != nil {
			n.Logger.Errorf("Notify: Error sending email for product: %s, err: %v", a.ProductName, err)
		} else {
			n.Logger.Infof("Notify: Email sent for product: %s", a.ProductName)
			res.EmailSent = true
		}
	}
	if n.Desktop != nil {
		if err := n.Desktop.Send(a); err != nil {
			n.Logger.Errorf("Notify: Error sending desktop notification for product: %s, err: %v", a.ProductName, err)
		} else {
			n.Logger.Infof("Notify: Desktop notification sent for product: %s", a.ProductName)
			res.DesktopSent = true
		}
	}
	return res
}
