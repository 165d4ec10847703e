// Package codec maps typed QR content onto the wire strings embedded in the
// rendered symbol, and knows the default hand-off action per content type.
package codec

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"qrserve/internal/domain"
)

// Action is the default client behavior after a successful resolution.
type Action string

const (
	// ActionNavigate means the client follows the URI immediately.
	ActionNavigate Action = "navigate"
	// ActionPresent means the client renders an interactive hand-off view
	// and waits for an explicit continue signal.
	ActionPresent Action = "present"
)

// DefaultAction returns the hand-off behavior for a content type. The switch
// is exhaustive over domain.ContentTypes; unknown values fall back to
// ActionPresent, which is the safe direction (never auto-navigate blind).
func DefaultAction(t domain.ContentType) Action {
	switch t {
	case domain.ContentEmail, domain.ContentPhone, domain.ContentSMS, domain.ContentGeolocation:
		return ActionNavigate
	case domain.ContentURL, domain.ContentEvent, domain.ContentVCard,
		domain.ContentWiFi, domain.ContentText:
		return ActionPresent
	default:
		return ActionPresent
	}
}

// Encode produces the wire string for a content variant. Invalid payloads
// (non-finite coordinates, unknown variants) fail with ErrInvalidContent.
func Encode(c domain.Content) (string, error) {
	switch v := c.(type) {
	case domain.URLContent:
		return v.URL, nil
	case domain.TextContent:
		return v.Text, nil
	case domain.EventContent:
		return encodeEvent(v), nil
	case domain.VCardContent:
		return encodeVCard(v), nil
	case domain.WiFiContent:
		return encodeWiFi(v), nil
	case domain.EmailContent:
		return encodeEmail(v), nil
	case domain.PhoneContent:
		return "tel:" + v.PhoneNumber, nil
	case domain.SMSContent:
		return encodeSMS(v), nil
	case domain.GeoContent:
		return encodeGeo(v)
	default:
		return "", fmt.Errorf("%w: cannot encode %T", domain.ErrInvalidContent, c)
	}
}

func encodeWiFi(v domain.WiFiContent) string {
	security := v.Encryption
	if security == "None" {
		security = "nopass"
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;", security, v.SSID, v.Password, v.Hidden)
}

func encodeEmail(v domain.EmailContent) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(v.To)
	params := make([]string, 0, 2)
	if v.Subject != "" {
		params = append(params, "subject="+percentEncode(v.Subject))
	}
	if v.Body != "" {
		params = append(params, "body="+percentEncode(v.Body))
	}
	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

func encodeSMS(v domain.SMSContent) string {
	s := "sms:" + v.PhoneNumber
	if v.Body != "" {
		s += "?body=" + percentEncode(v.Body)
	}
	return s
}

func encodeGeo(v domain.GeoContent) (string, error) {
	if math.IsNaN(v.Latitude) || math.IsInf(v.Latitude, 0) ||
		math.IsNaN(v.Longitude) || math.IsInf(v.Longitude, 0) {
		return "", fmt.Errorf("%w: coordinates not finite", domain.ErrInvalidContent)
	}
	s := fmt.Sprintf("geo:%g,%g", v.Latitude, v.Longitude)
	if v.Label != "" {
		s += "?q=" + percentEncode(v.Label)
	}
	return s, nil
}

func encodeEvent(v domain.EventContent) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"SUMMARY:" + v.Title,
	}
	if v.Description != "" {
		lines = append(lines, "DESCRIPTION:"+v.Description)
	}
	if v.Location != "" {
		lines = append(lines, "LOCATION:"+v.Location)
	}
	if v.AllDay {
		lines = append(lines, "DTSTART;VALUE=DATE:"+v.Start.Format("20060102"))
		if !v.End.IsZero() {
			lines = append(lines, "DTEND;VALUE=DATE:"+v.End.Format("20060102"))
		}
	} else {
		lines = append(lines, "DTSTART:"+formatEventTime(v.Start))
		if !v.End.IsZero() {
			lines = append(lines, "DTEND:"+formatEventTime(v.End))
		}
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")
	return strings.Join(lines, "\n")
}

// formatEventTime concatenates date and time with seconds zeroed.
func formatEventTime(t time.Time) string {
	return t.Format("20060102T1504") + "00"
}

func encodeVCard(v domain.VCardContent) string {
	lines := []string{"BEGIN:VCARD", "VERSION:3.0", "FN:" + v.FullName}
	if v.Organization != "" {
		lines = append(lines, "ORG:"+v.Organization)
	}
	if v.Title != "" {
		lines = append(lines, "TITLE:"+v.Title)
	}
	for _, p := range v.Phones {
		if p != "" {
			lines = append(lines, "TEL:"+p)
		}
	}
	for _, e := range v.Emails {
		if e != "" {
			lines = append(lines, "EMAIL:"+e)
		}
	}
	if v.Website != "" {
		lines = append(lines, "URL:"+v.Website)
	}
	if v.Address != "" {
		lines = append(lines, "ADR:"+v.Address)
	}
	if v.Note != "" {
		lines = append(lines, "NOTE:"+v.Note)
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// CalendarLink derives the secondary "add to calendar" URL for an event. It
// is not part of the wire string.
func CalendarLink(v domain.EventContent) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", v.Title)
	if v.Description != "" {
		q.Set("details", v.Description)
	}
	if v.Location != "" {
		q.Set("location", v.Location)
	}
	end := v.End
	if end.IsZero() {
		end = v.Start
	}
	if v.AllDay {
		q.Set("dates", v.Start.Format("20060102")+"/"+end.Format("20060102"))
	} else {
		q.Set("dates", formatEventTime(v.Start)+"/"+formatEventTime(end))
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

// percentEncode escapes a query value the way URI schemes like mailto: and
// sms: expect, with spaces as %20 rather than +.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
