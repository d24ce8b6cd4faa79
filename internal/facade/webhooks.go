package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// RegisterWebhook records an out-of-process HTTP sink. eventTypes empty
// means "deliver every event type". Delivery itself is handled by the
// webhooks dispatcher, a thin consumer of the event bus — registration
// here is pure bookkeeping.
func (f *Facade) RegisterWebhook(ctx context.Context, url string, eventTypes []string) (store.Webhook, error) {
	if url == "" {
		return store.Webhook{}, validationError("url is required", nil)
	}
	w := store.Webhook{
		ID:         idgen.New("whk"),
		URL:        url,
		EventTypes: eventTypes,
		CreatedAt:  f.now(),
	}
	if err := f.store.CreateWebhook(ctx, w); err != nil {
		return store.Webhook{}, internalError("create webhook", err)
	}
	return w, nil
}

// ListWebhooks returns every registered webhook.
func (f *Facade) ListWebhooks(ctx context.Context) ([]store.Webhook, error) {
	webhooks, err := f.store.ListWebhooks(ctx)
	if err != nil {
		return nil, internalError("list webhooks", err)
	}
	return webhooks, nil
}

// DeleteWebhook removes a webhook registration.
func (f *Facade) DeleteWebhook(ctx context.Context, id string) error {
	if err := f.store.DeleteWebhook(ctx, id); err != nil {
		return internalError("delete webhook", err)
	}
	return nil
}

// ListWebhookDeliveries returns delivery history for one webhook.
func (f *Facade) ListWebhookDeliveries(ctx context.Context, webhookID string, limit int) ([]store.WebhookDelivery, error) {
	deliveries, err := f.store.ListWebhookDeliveries(ctx, webhookID, limit)
	if err != nil {
		return nil, internalError("list webhook deliveries", err)
	}
	return deliveries, nil
}
