package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// ContentType enumerates the closed set of payload kinds a QR record may carry.
type ContentType string

const (
	ContentURL         ContentType = "url"
	ContentEvent       ContentType = "event"
	ContentVCard       ContentType = "vcard"
	ContentWiFi        ContentType = "wifi"
	ContentText        ContentType = "text"
	ContentEmail       ContentType = "email"
	ContentPhone       ContentType = "phone"
	ContentSMS         ContentType = "sms"
	ContentGeolocation ContentType = "geolocation"
)

// ContentTypes lists every supported content type.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentURL, ContentEvent, ContentVCard, ContentWiFi, ContentText,
		ContentEmail, ContentPhone, ContentSMS, ContentGeolocation,
	}
}

// Content is the tagged union over payload variants. Adding a variant means
// extending the switches in UnmarshalContent, ValidateContent and the codec;
// the compiler has no open-world escape hatch here on purpose.
type Content interface {
	ContentType() ContentType
}

// URLContent links to an external website.
type URLContent struct {
	URL string `json:"url"`
}

func (URLContent) ContentType() ContentType { return ContentURL }

// TextContent carries free-form text.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) ContentType() ContentType { return ContentText }

// EventContent describes a calendar event. All-day events ignore the
// time-of-day portion of Start/End.
type EventContent struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	AllDay      bool      `json:"all_day"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func (EventContent) ContentType() ContentType { return ContentEvent }

// VCardContent describes a contact card.
type VCardContent struct {
	FullName     string   `json:"full_name"`
	Organization string   `json:"organization,omitempty"`
	Title        string   `json:"title,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	Website      string   `json:"website,omitempty"`
	Address      string   `json:"address,omitempty"`
	Note         string   `json:"note,omitempty"`
}

func (VCardContent) ContentType() ContentType { return ContentVCard }

// WiFiContent carries network join credentials. Encryption is one of
// "WPA", "WPA2", "WEP" or "None".
type WiFiContent struct {
	SSID       string `json:"ssid"`
	Password   string `json:"password,omitempty"`
	Encryption string `json:"encryption"`
	Hidden     bool   `json:"hidden"`
}

func (WiFiContent) ContentType() ContentType { return ContentWiFi }

// EmailContent pre-fills an outgoing mail.
type EmailContent struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

func (EmailContent) ContentType() ContentType { return ContentEmail }

// PhoneContent dials a number.
type PhoneContent struct {
	PhoneNumber string `json:"phone_number"`
}

func (PhoneContent) ContentType() ContentType { return ContentPhone }

// SMSContent pre-fills a text message.
type SMSContent struct {
	PhoneNumber string `json:"phone_number"`
	Body        string `json:"body,omitempty"`
}

func (SMSContent) ContentType() ContentType { return ContentSMS }

// GeoContent points at coordinates with an optional label.
type GeoContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

func (GeoContent) ContentType() ContentType { return ContentGeolocation }

// MarshalContent serializes a content variant for jsonb storage.
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	return json.Marshal(c)
}

// UnmarshalContent decodes stored or client-supplied content for the given
// type tag. Unknown tags are rejected.
func UnmarshalContent(t ContentType, data []byte) (Content, error) {
	switch t {
	case ContentURL:
		var v URLContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentEvent:
		var v EventContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentVCard:
		var v VCardContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentWiFi:
		var v WiFiContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentText:
		var v TextContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentEmail:
		var v EmailContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentPhone:
		var v PhoneContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentSMS:
		var v SMSContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	case ContentGeolocation:
		var v GeoContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidContent, t)
	}
}

// ValidateContent applies the type-specific required-field checks. Failures
// wrap ErrInvalidContent and name the offending field.
func ValidateContent(c Content) error {
	switch v := c.(type) {
	case URLContent:
		if strings.TrimSpace(v.URL) == "" {
			return fieldError("url", "required")
		}
		if _, err := url.ParseRequestURI(v.URL); err != nil {
			return fieldError("url", "malformed")
		}
	case TextContent:
		if strings.TrimSpace(v.Text) == "" {
			return fieldError("text", "required")
		}
	case EventContent:
		if strings.TrimSpace(v.Title) == "" {
			return fieldError("title", "required")
		}
		if v.Start.IsZero() {
			return fieldError("start", "required")
		}
		if !v.End.IsZero() && v.End.Before(v.Start) {
			return fieldError("end", "before start")
		}
	case VCardContent:
		if strings.TrimSpace(v.FullName) == "" {
			return fieldError("full_name", "required")
		}
	case WiFiContent:
		if strings.TrimSpace(v.SSID) == "" {
			return fieldError("ssid", "required")
		}
		switch v.Encryption {
		case "WPA", "WPA2", "WEP", "None":
		default:
			return fieldError("encryption", "unsupported")
		}
	case EmailContent:
		if strings.TrimSpace(v.To) == "" {
			return fieldError("to", "required")
		}
	case PhoneContent:
		if strings.TrimSpace(v.PhoneNumber) == "" {
			return fieldError("phone_number", "required")
		}
	case SMSContent:
		if strings.TrimSpace(v.PhoneNumber) == "" {
			return fieldError("phone_number", "required")
		}
	case GeoContent:
		if !isFinite(v.Latitude) || !isFinite(v.Longitude) {
			return fieldError("coordinates", "not finite")
		}
	default:
		return fmt.Errorf("%w: unknown content variant %T", ErrInvalidContent, c)
	}
	return nil
}

func fieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidContent, field, reason)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
