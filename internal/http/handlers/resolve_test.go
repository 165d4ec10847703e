package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrserve/internal/domain"
)

type resolveBody struct {
	State            string `json:"state"`
	CountdownSeconds int    `json:"countdown_seconds"`
	Action           *struct {
		Kind        string          `json:"kind"`
		URI         string          `json:"uri"`
		ContentType string          `json:"content_type"`
		Content     json.RawMessage `json:"content"`
	} `json:"action"`
}

func TestResolveDynamicWiFi(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":         "dynamic",
		"content_type": "wifi",
		"content":      map[string]any{"ssid": "Office", "password": "secret123", "encryption": "WPA2"},
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res resolveBody
	decodeBody(t, rec, &res)
	assert.Equal(t, "redirect", res.State)
	require.NotNil(t, res.Action)
	assert.Equal(t, "present", res.Action.Kind)
	assert.Equal(t, "wifi", res.Action.ContentType)

	var wifi struct {
		SSID string `json:"ssid"`
	}
	require.NoError(t, json.Unmarshal(res.Action.Content, &wifi))
	assert.Equal(t, "Office", wifi.SSID)

	// Visit counted and scan row recorded with the resolved country.
	rec = e.do(t, http.MethodGet, "/v1/qrcodes/"+out.QRCode.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dto qrCodeBody
	decodeBody(t, rec, &dto)
	assert.Equal(t, int64(1), dto.Visits)

	scans, err := e.store.Scans().ListByCode(context.Background(), out.QRCode.ID, 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "DE", scans[0].Country)
}

func TestResolveNavigatesPhone(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":         "dynamic",
		"content_type": "phone",
		"content":      map[string]string{"phone_number": "+49301234567"},
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res resolveBody
	decodeBody(t, rec, &res)
	require.NotNil(t, res.Action)
	assert.Equal(t, "navigate", res.Action.Kind)
	assert.Equal(t, "tel:+49301234567", res.Action.URI)
}

func TestResolveUnknownToken(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/r/nope1234", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveStaticRecordNotServed(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":         "static",
		"content_type": "text",
		"content":      map[string]string{"text": "hi"},
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolvePasswordFlow(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":             "dynamic",
		"content_type":     "url",
		"content":          map[string]string{"url": "https://example.com"},
		"password_enabled": true,
		"password":         "open sesame",
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res resolveBody
	decodeBody(t, rec, &res)
	assert.Equal(t, "password_required", res.State)
	assert.Nil(t, res.Action)

	rec = e.do(t, http.MethodPost, "/r/"+out.QRCode.ID+"/password", "", map[string]string{
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, e.attempts.recorded, 1)

	rec = e.do(t, http.MethodPost, "/r/"+out.QRCode.ID+"/password", "", map[string]string{
		"password": "open sesame",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &res)
	assert.Equal(t, "redirect", res.State)
	assert.Len(t, e.attempts.resets, 1)
}

func TestResolvePasswordThrottled(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":             "dynamic",
		"content_type":     "url",
		"content":          map[string]string{"url": "https://example.com"},
		"password_enabled": true,
		"password":         "open sesame",
	})

	e.attempts.allowed = false
	e.attempts.wait = 4 * time.Second

	rec := e.do(t, http.MethodPost, "/r/"+out.QRCode.ID+"/password", "", map[string]string{
		"password": "open sesame",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("Retry-After"))
}

func TestResolveScheduleBlocked(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	future := time.Now().Add(24 * time.Hour)
	out := createCode(t, e, token, map[string]any{
		"type":             "dynamic",
		"content_type":     "url",
		"content":          map[string]string{"url": "https://example.com"},
		"schedule_enabled": true,
		"schedule_start":   future.Format(time.RFC3339),
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	var res resolveBody
	decodeBody(t, rec, &res)
	assert.Equal(t, "not_yet_active", res.State)

	past := time.Now().Add(-24 * time.Hour)
	out = createCode(t, e, token, map[string]any{
		"type":             "dynamic",
		"content_type":     "url",
		"content":          map[string]string{"url": "https://example.com"},
		"schedule_enabled": true,
		"schedule_end":     past.Format(time.RFC3339),
	})

	rec = e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	decodeBody(t, rec, &res)
	assert.Equal(t, "expired", res.State)

	// Blocked scans leave no trace in the analytics.
	scans, err := e.store.Scans().ListByCode(context.Background(), out.QRCode.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestResolveCountdown(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":              "dynamic",
		"content_type":      "url",
		"content":           map[string]string{"url": "https://example.com"},
		"countdown_enabled": true,
		"countdown_seconds": 5,
	})

	rec := e.do(t, http.MethodGet, "/r/"+out.QRCode.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res resolveBody
	decodeBody(t, rec, &res)
	assert.Equal(t, "countdown", res.State)
	assert.Equal(t, 5, res.CountdownSeconds)
	// The action ships with the countdown so the client needs no second call.
	require.NotNil(t, res.Action)
	assert.Equal(t, "present", res.Action.Kind)
}

func TestResolvePasswordOnUnprotectedRecord(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "maker@example.com", 5, domain.UserRoleUser)

	out := createCode(t, e, token, map[string]any{
		"type":         "dynamic",
		"content_type": "text",
		"content":      map[string]string{"text": "open"},
	})

	rec := e.do(t, http.MethodPost, "/r/"+out.QRCode.ID+"/password", "", map[string]string{
		"password": "anything",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
