package dispatch

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrserve/internal/domain"
)

func TestNavigateTypes(t *testing.T) {
	tests := []struct {
		content domain.Content
		wantURI string
	}{
		{domain.PhoneContent{PhoneNumber: "+15551234567"}, "tel:+15551234567"},
		{domain.SMSContent{PhoneNumber: "+1"}, "sms:+1"},
		{domain.EmailContent{To: "a@b.c"}, "mailto:a@b.c"},
		{domain.GeoContent{Latitude: 1, Longitude: 2}, "geo:1,2"},
	}
	for _, tt := range tests {
		action, err := Dispatch(tt.content)
		require.NoError(t, err)
		assert.Equal(t, KindNavigate, action.Kind)
		assert.Equal(t, tt.wantURI, action.URI)
		assert.Nil(t, action.Content)
	}
}

func TestPresentTypes(t *testing.T) {
	contents := []domain.Content{
		domain.URLContent{URL: "https://example.com"},
		domain.TextContent{Text: "hello"},
		domain.WiFiContent{SSID: "Office", Encryption: "WPA2"},
		domain.VCardContent{FullName: "Ada"},
		domain.EventContent{Title: "Meet", Start: time.Now()},
	}
	for _, c := range contents {
		action, err := Dispatch(c)
		require.NoError(t, err)
		assert.Equal(t, KindPresent, action.Kind)
		assert.Equal(t, c.ContentType(), action.ContentType)
		assert.Equal(t, c, action.Content)
		assert.Empty(t, action.URI)
	}
}

func TestEventCarriesCalendarLink(t *testing.T) {
	action, err := Dispatch(domain.EventContent{
		Title: "Meet",
		Start: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, action.CalendarLink, "calendar.google.com")
}

func TestInvalidContentSurfaces(t *testing.T) {
	bad := domain.GeoContent{Latitude: math.Inf(1), Longitude: 0}
	_, err := Dispatch(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidContent)
}
