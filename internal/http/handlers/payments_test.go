package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrserve/internal/domain"
)

func TestSubmitProofAndApprove(t *testing.T) {
	e := newEnv(t)
	buyer, buyerToken := e.addUser(t, "buyer@example.com", 2, domain.UserRoleUser)
	_, adminToken := e.addUser(t, "admin@example.com", 0, domain.UserRoleAdmin)

	rec := e.do(t, http.MethodPost, "/v1/payments/proofs", buyerToken, map[string]string{
		"plan": "basic",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID        string `json:"id"`
		UploadURL string `json:"upload_url"`
		Status    string `json:"status"`
	}
	decodeBody(t, rec, &created)
	assert.True(t, strings.HasPrefix(created.UploadURL, "https://storage.test/put/proofs/"))
	assert.Equal(t, "pending", created.Status)

	rec = e.do(t, http.MethodGet, "/v1/admin/proofs", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Proofs []struct {
			ID       string `json:"id"`
			UserID   string `json:"user_id"`
			ImageURL string `json:"image_url"`
		} `json:"proofs"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Proofs, 1)
	assert.Equal(t, buyer.ID, list.Proofs[0].UserID)
	assert.True(t, strings.HasPrefix(list.Proofs[0].ImageURL, "https://storage.test/get/"))

	rec = e.do(t, http.MethodPost, "/v1/admin/proofs/"+created.ID+"/review", adminToken, map[string]string{
		"decision": "approve",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Approval adds the plan quota to the existing balance and sets expiry.
	rec = e.do(t, http.MethodGet, "/v1/me", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Plan               string  `json:"plan"`
		Quota              int     `json:"quota"`
		SubscriptionExpiry *string `json:"subscription_expiry"`
	}
	decodeBody(t, rec, &me)
	assert.Equal(t, "basic", me.Plan)
	assert.Equal(t, 52, me.Quota)
	assert.NotNil(t, me.SubscriptionExpiry)

	// A settled proof cannot be reviewed twice.
	rec = e.do(t, http.MethodPost, "/v1/admin/proofs/"+created.ID+"/review", adminToken, map[string]string{
		"decision": "approve",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReviewReject(t *testing.T) {
	e := newEnv(t)
	_, buyerToken := e.addUser(t, "buyer@example.com", 2, domain.UserRoleUser)
	_, adminToken := e.addUser(t, "admin@example.com", 0, domain.UserRoleAdmin)

	rec := e.do(t, http.MethodPost, "/v1/payments/proofs", buyerToken, map[string]string{
		"plan": "premium",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = e.do(t, http.MethodPost, "/v1/admin/proofs/"+created.ID+"/review", adminToken, map[string]string{
		"decision": "reject",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/me", buyerToken, nil)
	var me struct {
		Plan  string `json:"plan"`
		Quota int    `json:"quota"`
	}
	decodeBody(t, rec, &me)
	assert.Equal(t, "free", me.Plan)
	assert.Equal(t, 2, me.Quota)
}

func TestSubmitProofRejectsFreePlan(t *testing.T) {
	e := newEnv(t)
	_, token := e.addUser(t, "buyer@example.com", 2, domain.UserRoleUser)

	for _, plan := range []string{"free", "platinum"} {
		rec := e.do(t, http.MethodPost, "/v1/payments/proofs", token, map[string]string{"plan": plan})
		assert.Equal(t, http.StatusBadRequest, rec.Code, plan)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newEnv(t)
	_, userToken := e.addUser(t, "user@example.com", 2, domain.UserRoleUser)

	rec := e.do(t, http.MethodGet, "/v1/admin/proofs", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/admin/proofs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
