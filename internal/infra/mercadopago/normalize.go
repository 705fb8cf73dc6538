package mercadopago

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type EventType string

const (
	EventPayment      EventType = "payment"
	EventSubscription EventType = "subscription"
	EventTest         EventType = "test"
	EventUnhandled    EventType = "unhandled"
)

// Event is the canonical shape every notification collapses into. Only the
// resource type and its opaque id survive; everything else comes from the
// provider's read API afterwards.
type Event struct {
	Type EventType
	ID   string
}

// testNotificationID is the fixed id the provider uses when the merchant
// fires a test notification from the dashboard.
const testNotificationID = "123456"

// Normalize maps any of the historical notification shapes into one Event.
// A non-nil error means the body was not parseable JSON; the caller should
// acknowledge and log, never bounce the delivery back to the provider.
func Normalize(raw []byte) (Event, error) {
	trimmed := bytes.TrimSpace(raw)

	// The provider occasionally sends a bare test string instead of JSON.
	if string(trimmed) == "test" || string(trimmed) == `"test"` {
		return Event{Type: EventTest}, nil
	}

	var payload struct {
		ID     any    `json:"id"`
		Type   string `json:"type"`
		Action string `json:"action"`
		Entity string `json:"entity"`
		Topic  string `json:"topic"`
		Data   struct {
			ID any `json:"id"`
		} `json:"data"`
	}
	// UseNumber keeps numeric ids exact; payment ids are large enough to
	// lose digits through a float64 round-trip.
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Event{Type: EventUnhandled}, fmt.Errorf("unparseable webhook payload: %w", err)
	}

	topID := idToString(payload.ID)
	dataID := idToString(payload.Data.ID)

	if payload.Type == "test" || topID == testNotificationID {
		return Event{Type: EventTest}, nil
	}

	// Legacy "action" payloads: action carries the entity, e.g. "payment.updated".
	if strings.HasPrefix(payload.Action, "payment.") && dataID != "" {
		return Event{Type: EventPayment, ID: dataID}, nil
	}

	// Preapproval (subscription) payloads under their various field names.
	if payload.Entity == "preapproval" ||
		payload.Topic == "preapproval" ||
		payload.Type == "subscription_preapproval" ||
		payload.Type == "preapproval" {
		if dataID != "" {
			return Event{Type: EventSubscription, ID: dataID}, nil
		}
		if topID != "" {
			return Event{Type: EventSubscription, ID: topID}, nil
		}
	}

	// Already-canonical payloads pass through unchanged.
	if payload.Type == string(EventPayment) && dataID != "" {
		return Event{Type: EventPayment, ID: dataID}, nil
	}
	if payload.Type == string(EventSubscription) && dataID != "" {
		return Event{Type: EventSubscription, ID: dataID}, nil
	}

	return Event{Type: EventUnhandled}, nil
}

func idToString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
