package domain

import (
	"fmt"
	"time"
)

// QRType distinguishes direct-payload codes from server-mediated ones.
type QRType string

const (
	QRStatic  QRType = "static"
	QRDynamic QRType = "dynamic"
)

// ECLevel is the QR error-correction level.
type ECLevel string

const (
	ECLow      ECLevel = "L"
	ECMedium   ECLevel = "M"
	ECQuartile ECLevel = "Q"
	ECHigh     ECLevel = "H"
)

// Logo upload caps. A logo larger than either bound is rejected before the
// record is created.
const (
	MaxLogoBytes = 1 << 20 // 1 MiB
	MaxLogoDim   = 512     // px per side
)

// Design holds the visual attributes handed to the image renderer. Logo is
// the raw PNG bytes of the center overlay, bounded by MaxLogoBytes and
// MaxLogoDim; it serializes as base64 inside the design jsonb.
type Design struct {
	Foreground  string  `json:"foreground"`
	Background  string  `json:"background"`
	ECLevel     ECLevel `json:"ec_level"`
	CornerStyle string  `json:"corner_style,omitempty"`
	Logo        []byte  `json:"logo,omitempty"`
}

// DefaultDesign is applied when the client sends no design block.
func DefaultDesign() Design {
	return Design{Foreground: "#000000", Background: "#ffffff", ECLevel: ECMedium}
}

// QRCode is one generated code. Static records are immutable after creation;
// dynamic records additionally track visits and carry the access-gate
// settings. Dynamic-only fields on a static record are ignored.
type QRCode struct {
	ID          string
	UserID      string
	Type        QRType
	ContentType ContentType
	Content     Content
	Design      Design

	PasswordEnabled  bool
	Password         string
	ScheduleEnabled  bool
	ScheduleStart    *time.Time
	ScheduleEnd      *time.Time
	DailyStart       string // "HH:MM", empty means no daily bound
	DailyEnd         string
	CountdownEnabled bool
	CountdownSeconds int

	Visits        int64
	LastVisitedAt *time.Time
	CreatedAt     time.Time
}

// Countdown duration bounds in seconds.
const (
	MinCountdownSeconds = 1
	MaxCountdownSeconds = 60
)

// Validate checks the record invariants shared by create paths.
func (q *QRCode) Validate() error {
	if q.Content == nil {
		return fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	if q.Content.ContentType() != q.ContentType {
		return fmt.Errorf("%w: content tagged %q but typed %q",
			ErrInvalidContent, q.Content.ContentType(), q.ContentType)
	}
	if err := ValidateContent(q.Content); err != nil {
		return err
	}
	switch q.Design.ECLevel {
	case ECLow, ECMedium, ECQuartile, ECHigh:
	default:
		return fieldError("ec_level", "unsupported")
	}
	if len(q.Design.Logo) > MaxLogoBytes {
		return fieldError("logo", "too large")
	}
	if q.Type == QRDynamic {
		if q.PasswordEnabled && q.Password == "" {
			return fieldError("password", "required when enabled")
		}
		if q.CountdownEnabled &&
			(q.CountdownSeconds < MinCountdownSeconds || q.CountdownSeconds > MaxCountdownSeconds) {
			return fieldError("countdown_seconds", "out of range")
		}
		if q.ScheduleEnabled {
			if q.ScheduleStart != nil && q.ScheduleEnd != nil && q.ScheduleEnd.Before(*q.ScheduleStart) {
				return fieldError("schedule_end", "before schedule_start")
			}
			for _, hm := range []string{q.DailyStart, q.DailyEnd} {
				if hm != "" && !validHHMM(hm) {
					return fieldError("daily window", "must be HH:MM")
				}
			}
		}
	}
	return nil
}

func validHHMM(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}
