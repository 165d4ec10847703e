package codec

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrserve/internal/domain"
)

func TestEncodePhone(t *testing.T) {
	wire, err := Encode(domain.PhoneContent{PhoneNumber: "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, "tel:+15551234567", wire)
}

func TestEncodeWiFi(t *testing.T) {
	tests := []struct {
		name    string
		content domain.WiFiContent
		want    string
	}{
		{
			name:    "open network",
			content: domain.WiFiContent{SSID: "Cafe", Encryption: "None"},
			want:    "WIFI:T:nopass;S:Cafe;P:;H:false;;",
		},
		{
			name:    "wpa2 with password",
			content: domain.WiFiContent{SSID: "Office", Password: "secret123", Encryption: "WPA2"},
			want:    "WIFI:T:WPA2;S:Office;P:secret123;H:false;;",
		},
		{
			name:    "hidden network",
			content: domain.WiFiContent{SSID: "Lab", Password: "pw", Encryption: "WPA", Hidden: true},
			want:    "WIFI:T:WPA;S:Lab;P:pw;H:true;;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := Encode(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wire)
		})
	}
}

func TestEncodeEmail(t *testing.T) {
	wire, err := Encode(domain.EmailContent{
		To:      "hi@example.com",
		Subject: "hello there",
		Body:    "line one & two",
	})
	require.NoError(t, err)
	assert.Equal(t, "mailto:hi@example.com?subject=hello%20there&body=line%20one%20%26%20two", wire)

	wire, err = Encode(domain.EmailContent{To: "hi@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "mailto:hi@example.com", wire)
}

func TestEncodeSMS(t *testing.T) {
	wire, err := Encode(domain.SMSContent{PhoneNumber: "+321", Body: "see you at 5"})
	require.NoError(t, err)
	assert.Equal(t, "sms:+321?body=see%20you%20at%205", wire)
}

func TestEncodeGeo(t *testing.T) {
	wire, err := Encode(domain.GeoContent{Latitude: 51.5007, Longitude: -0.1246, Label: "Big Ben"})
	require.NoError(t, err)
	assert.Equal(t, "geo:51.5007,-0.1246?q=Big%20Ben", wire)
}

func TestEncodeGeoRejectsNonFinite(t *testing.T) {
	_, err := Encode(domain.GeoContent{Latitude: math.NaN(), Longitude: 0})
	require.ErrorIs(t, err, domain.ErrInvalidContent)

	_, err = Encode(domain.GeoContent{Latitude: 0, Longitude: math.Inf(-1)})
	require.ErrorIs(t, err, domain.ErrInvalidContent)
}

func TestEncodeEventTimed(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 30, 45, 0, time.UTC)
	end := time.Date(2026, 3, 14, 11, 0, 12, 0, time.UTC)
	wire, err := Encode(domain.EventContent{
		Title:    "Standup",
		Location: "Room 4",
		Start:    start,
		End:      end,
	})
	require.NoError(t, err)
	// Seconds are zeroed regardless of the input timestamps.
	assert.Contains(t, wire, "DTSTART:20260314T093000")
	assert.Contains(t, wire, "DTEND:20260314T110000")
	assert.Contains(t, wire, "SUMMARY:Standup")
	assert.Contains(t, wire, "LOCATION:Room 4")
	assert.True(t, strings.HasPrefix(wire, "BEGIN:VCALENDAR"))
	assert.True(t, strings.HasSuffix(wire, "END:VCALENDAR"))
}

func TestEncodeEventAllDay(t *testing.T) {
	day := time.Date(2026, 12, 24, 15, 4, 5, 0, time.UTC)
	wire, err := Encode(domain.EventContent{Title: "Holiday", AllDay: true, Start: day, End: day})
	require.NoError(t, err)
	assert.Contains(t, wire, "DTSTART;VALUE=DATE:20261224")
	assert.Contains(t, wire, "DTEND;VALUE=DATE:20261224")
	assert.NotContains(t, wire, "T15")
}

func TestEncodeVCard(t *testing.T) {
	wire, err := Encode(domain.VCardContent{
		FullName: "Ada Lovelace",
		Phones:   []string{"+1", "+2"},
		Emails:   []string{"ada@example.com"},
		Website:  "https://example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, wire, "VERSION:3.0")
	assert.Contains(t, wire, "FN:Ada Lovelace")
	assert.Equal(t, 2, strings.Count(wire, "TEL:"))
	assert.Equal(t, 1, strings.Count(wire, "EMAIL:"))
	// Empty fields emit nothing.
	assert.NotContains(t, wire, "ORG:")
	assert.NotContains(t, wire, "NOTE:")
}

func TestEncodeURLAndText(t *testing.T) {
	wire, err := Encode(domain.URLContent{URL: "https://example.com/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", wire)

	wire, err = Encode(domain.TextContent{Text: "plain payload"})
	require.NoError(t, err)
	assert.Equal(t, "plain payload", wire)
}

func TestDefaultAction(t *testing.T) {
	navigate := map[domain.ContentType]bool{
		domain.ContentPhone:       true,
		domain.ContentSMS:         true,
		domain.ContentEmail:       true,
		domain.ContentGeolocation: true,
	}
	for _, ct := range domain.ContentTypes() {
		want := ActionPresent
		if navigate[ct] {
			want = ActionNavigate
		}
		assert.Equal(t, want, DefaultAction(ct), "content type %s", ct)
	}
}

func TestCalendarLink(t *testing.T) {
	link := CalendarLink(domain.EventContent{
		Title: "Launch",
		Start: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, link, "calendar.google.com")
	assert.Contains(t, link, "text=Launch")
	assert.Contains(t, link, "dates=20260501T100000%2F20260501T120000")
}
