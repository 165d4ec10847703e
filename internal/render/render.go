// Package render turns a wire string plus design attributes into a scannable
// PNG. Symbol encoding itself is go-qrcode's job; this layer applies colors,
// error-correction level and the optional center logo.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"

	"qrserve/internal/domain"
)

const (
	// DefaultSize is the rendered side length in pixels.
	DefaultSize = 512
	// logoFraction caps the overlay at a quarter of the symbol so enough
	// modules survive for error correction to compensate.
	logoFraction = 4
)

// Render produces the PNG for a record's wire string and design.
func Render(wire string, design domain.Design, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	qr, err := qrcode.New(wire, recoveryLevel(design.ECLevel))
	if err != nil {
		return nil, fmt.Errorf("encode symbol: %w", err)
	}

	fg, err := ParseHexColor(design.Foreground, color.Black)
	if err != nil {
		return nil, err
	}
	bg, err := ParseHexColor(design.Background, color.White)
	if err != nil {
		return nil, err
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg

	if len(design.Logo) == 0 {
		return qr.PNG(size)
	}

	logo, err := png.Decode(bytes.NewReader(design.Logo))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if b := logo.Bounds(); b.Dx() > domain.MaxLogoDim || b.Dy() > domain.MaxLogoDim {
		return nil, fmt.Errorf("logo exceeds %dpx bound", domain.MaxLogoDim)
	}

	composed := Overlay(qr.Image(size), logo)
	var buf bytes.Buffer
	if err := png.Encode(&buf, composed); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Overlay centers the logo on the symbol, scaling it down to the permitted
// fraction by nearest-neighbor sampling when needed.
func Overlay(symbol image.Image, logo image.Image) image.Image {
	bounds := symbol.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, symbol, bounds.Min, draw.Src)

	maxSide := bounds.Dx() / logoFraction
	lb := logo.Bounds()
	w, h := lb.Dx(), lb.Dy()
	if w > maxSide || h > maxSide {
		scale := float64(maxSide) / float64(max(w, h))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		logo = resample(logo, w, h)
		lb = logo.Bounds()
	}

	offset := image.Pt(
		bounds.Min.X+(bounds.Dx()-w)/2,
		bounds.Min.Y+(bounds.Dy()-h)/2,
	)
	draw.Draw(out, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))},
		logo, lb.Min, draw.Over)
	return out
}

func resample(src image.Image, w, h int) image.Image {
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			sy := sb.Min.Y + y*sb.Dy()/h
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func recoveryLevel(level domain.ECLevel) qrcode.RecoveryLevel {
	switch level {
	case domain.ECLow:
		return qrcode.Low
	case domain.ECQuartile:
		return qrcode.High
	case domain.ECHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// ParseHexColor parses #RGB and #RRGGBB notations, returning the fallback
// for an empty string.
func ParseHexColor(s string, fallback color.Color) (color.Color, error) {
	if s == "" {
		return fallback, nil
	}
	if s[0] != '#' {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		rv, err := hexNibble(hex[0])
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		gv, err := hexNibble(hex[1])
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		bv, err := hexNibble(hex[2])
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		r, g, b = rv*17, gv*17, bv*17
	case 6:
		for i, dst := range []*uint8{&r, &g, &b} {
			hi, err := hexNibble(hex[i*2])
			if err != nil {
				return nil, fmt.Errorf("invalid color %q", s)
			}
			lo, err := hexNibble(hex[i*2+1])
			if err != nil {
				return nil, fmt.Errorf("invalid color %q", s)
			}
			*dst = hi<<4 | lo
		}
	default:
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func hexNibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("bad hex digit %q", c)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
