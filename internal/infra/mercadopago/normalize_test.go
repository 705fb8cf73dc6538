package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHistoricalShapes(t *testing.T) {
	// The three shapes observed in production must collapse into the same
	// canonical event.
	cases := []struct {
		name string
		body string
		want Event
	}{
		{
			name: "legacy action payload",
			body: `{"action":"payment.updated","api_version":"v1","data":{"id":"99911122233"},"date_created":"2024-01-10T12:00:00Z","type":"payment"}`,
			want: Event{Type: EventPayment, ID: "99911122233"},
		},
		{
			name: "preapproval entity payload",
			body: `{"entity":"preapproval","action":"updated","data":{"id":"preapproval-abc"}}`,
			want: Event{Type: EventSubscription, ID: "preapproval-abc"},
		},
		{
			name: "canonical payment payload",
			body: `{"type":"payment","data":{"id":99911122233}}`,
			want: Event{Type: EventPayment, ID: "99911122233"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Normalize([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ev)
		})
	}
}

func TestNormalizeLargeNumericIDKeepsEveryDigit(t *testing.T) {
	// 17 significant digits exceed float64 precision; the id must survive
	// exactly or the follow-up resource fetch hits the wrong payment.
	ev, err := Normalize([]byte(`{"type":"payment","data":{"id":10000000000000001}}`))
	require.NoError(t, err)
	assert.Equal(t, Event{Type: EventPayment, ID: "10000000000000001"}, ev)
}

func TestNormalizeSubscriptionVariants(t *testing.T) {
	for _, body := range []string{
		`{"type":"subscription_preapproval","data":{"id":"sub-1"}}`,
		`{"topic":"preapproval","id":"sub-1"}`,
		`{"type":"subscription","data":{"id":"sub-1"}}`,
	} {
		ev, err := Normalize([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, Event{Type: EventSubscription, ID: "sub-1"}, ev, body)
	}
}

func TestNormalizeTestSentinels(t *testing.T) {
	for _, body := range []string{
		`test`,
		`"test"`,
		`{"type":"test"}`,
		`{"id":"123456"}`,
		`{"id":123456}`,
	} {
		ev, err := Normalize([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, EventTest, ev.Type, body)
	}
}

func TestNormalizeUnhandled(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"plan.updated","data":{"id":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventUnhandled, ev.Type)

	// Missing nested id makes a payment payload unusable.
	ev, err = Normalize([]byte(`{"type":"payment"}`))
	require.NoError(t, err)
	assert.Equal(t, EventUnhandled, ev.Type)
}

func TestNormalizeMalformedJSON(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"payment"`))
	assert.Error(t, err)
	assert.Equal(t, EventUnhandled, ev.Type)
}

func TestNormalizeSubscriptionStatus(t *testing.T) {
	assert.Equal(t, "authorized", NormalizeSubscriptionStatus("authorized"))
	assert.Equal(t, "authorized", NormalizeSubscriptionStatus("active"))
	assert.Equal(t, "authorized", NormalizeSubscriptionStatus(" Active "))
	assert.Equal(t, "cancelled", NormalizeSubscriptionStatus("canceled"))
	assert.Equal(t, "cancelled", NormalizeSubscriptionStatus("cancelled"))
	assert.Equal(t, "paused", NormalizeSubscriptionStatus("paused"))
	assert.Equal(t, "pending", NormalizeSubscriptionStatus("pending"))
	assert.Equal(t, "something_else", NormalizeSubscriptionStatus("Something_Else"))
}
