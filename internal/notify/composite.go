package notify

import (
	"context"
	"fmt"
	"strings"

	"smartrfq/desk/internal/models"
)

// CompositeNotifier fans a notice out to several notifiers.
type CompositeNotifier struct {
	notifiers []Notifier
}

// NewCompositeNotifier returns the concrete type so AddNotifier can be called.
func NewCompositeNotifier(notifiers ...Notifier) *CompositeNotifier {
	return &CompositeNotifier{notifiers: notifiers}
}

func (c *CompositeNotifier) AddNotifier(n Notifier) {
	if n != nil {
		c.notifiers = append(c.notifiers, n)
	}
}

// Notify delivers to every notifier and collects their errors. The notice is
// also recorded in the request collector carried by ctx, if any.
func (c *CompositeNotifier) Notify(ctx context.Context, recipient string, notice models.Notice) error {
	if col := CollectorFrom(ctx); col != nil {
		col.add(notice)
	}

	var allErrors []string
	for _, n := range c.notifiers {
		if err := n.Notify(ctx, recipient, notice); err != nil {
			allErrors = append(allErrors, err.Error())
		}
	}
	if len(allErrors) > 0 {
		return fmt.Errorf("composite notify failed: [ %s ]", strings.Join(allErrors, "; "))
	}
	return nil
}
