package domain

import "time"

// Scan is one recorded resolution of a dynamic code. Country is resolved
// from the visitor IP when a GeoIP database is configured, empty otherwise.
type Scan struct {
	QRID      string
	ScannedAt time.Time
	Country   string
	Referer   string
}
