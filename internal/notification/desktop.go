package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/pkg/errors"

	"pricewatch/internal/misc"
)

// DesktopSender raises an OS-level toast. Best effort: unsupported
// platforms surface an error that the Notifier only logs.
type DesktopSender struct{}

func (d *DesktopSender) Send(a Alert) error {
	title := fmt.Sprintf("Price Drop: %s", misc.StringLimit(a.ProductName, 30))
	amount, _ := savings(a)
	message := fmt.Sprintf("$%.2f -> $%.2f\nSave $%.2f (target $%.2f)",
		a.OldPrice, a.NewPrice, amount, a.TargetPrice)
	if err := beeep.Notify(title, message, ""); err != nil {
		return errors.Wrap(err, "error sending desktop notification")
	}
	return nil
}
