package deform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/adapters/httpclient"
	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCampaignID = "campaign-1"

type capturedRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, req capturedRequest)) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, req)
	}))
	t.Cleanup(server.Close)

	httpClient, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)

	client, err := NewClient(httpClient, server.URL+"/", testCampaignID, "https://puzzlemania.0g.ai")
	require.NoError(t, err)
	return client
}

func TestExchangeTokenSendsUserLoginMutation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		assert.Equal(t, "UserLogin", req.OperationName)
		assert.Equal(t, "UserLogin", r.Header.Get("x-apollo-operation-name"))
		assert.Equal(t, "https://puzzlemania.0g.ai", r.Header.Get("Origin"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, map[string]any{"externalAuthToken": "privy-token"}, req.Variables["data"])
		assert.Contains(t, req.Query, "userLogin(data: $data)")

		_, _ = w.Write([]byte(`{"data":{"userLogin":"platform-token"}}`))
	})

	token, err := client.ExchangeToken(context.Background(), "privy-token")
	require.NoError(t, err)
	assert.Equal(t, "platform-token", token)
}

func TestExchangeTokenFailsWithoutToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"invalid external token"}]}`))
	})

	_, err := client.ExchangeToken(context.Background(), "privy-token")
	assert.ErrorContains(t, err, "invalid external token")
}

func TestFetchPointsReadsCampaignSpot(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		assert.Equal(t, "UserMe", req.OperationName)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		assert.Equal(t, testCampaignID, req.Variables["campaignId"])

		_, _ = w.Write([]byte(`{"data":{"userMe":{"campaignSpot":{"points":1250,"records":[]}}}}`))
	})

	points, err := client.FetchPoints(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, float64(1250), points)
}

func TestFetchPointsNullPointsIsZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		_, _ = w.Write([]byte(`{"data":{"userMe":{"campaignSpot":{"points":null}}}}`))
	})

	points, err := client.FetchPoints(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Zero(t, points)
}

func TestFetchActivitiesDecodesRecords(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		assert.Equal(t, "Campaign", req.OperationName)
		assert.Equal(t, "Campaign", r.Header.Get("x-apollo-operation-name"))

		_, _ = w.Write([]byte(`{"data":{"campaign":{"activities":[
			{"id":"ci","title":"Daily Check-in","createdAt":"2026-01-01T00:00:00.000Z","records":[
				{"id":"r1","status":"COMPLETED","createdAt":"2026-03-01T08:15:30.123Z"}
			]},
			{"id":"t1","title":"Join Discord","createdAt":"2026-01-02T00:00:00Z","records":[]}
		]}}}`))
	})

	activities, err := client.FetchActivities(context.Background(), "session-token")
	require.NoError(t, err)
	require.Len(t, activities, 2)

	checkIn := activities[0]
	assert.Equal(t, "ci", checkIn.ID)
	assert.Equal(t, "Daily Check-in", checkIn.Title)
	require.Len(t, checkIn.Records, 1)
	assert.Equal(t, "COMPLETED", checkIn.Records[0].Status)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 15, 30, 123_000_000, time.UTC), checkIn.Records[0].CreatedAt)
	assert.Empty(t, activities[1].Records)
}

func TestFetchActivitiesMissingCampaign(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		_, _ = w.Write([]byte(`{"data":{"campaign":null}}`))
	})

	_, err := client.FetchActivities(context.Background(), "session-token")
	assert.ErrorIs(t, err, domain.ErrCampaignUnavailable)
}

func TestFetchActivitiesServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.FetchActivities(context.Background(), "session-token")
	require.Error(t, err)
	status, ok := httpclient.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status.StatusCode)
}

func TestVerifyActivityReturnsRecord(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		assert.Equal(t, "VerifyActivity", req.OperationName)
		assert.Equal(t, map[string]any{"activityId": "ci"}, req.Variables["data"])

		_, _ = w.Write([]byte(`{"data":{"verifyActivity":{"record":{"id":"r9","activityId":"ci","status":"COMPLETED","createdAt":"2026-03-01T09:00:00Z"}}}}`))
	})

	result, err := client.VerifyActivity(context.Background(), "session-token", "ci")
	require.NoError(t, err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "r9", result.Record.ID)
	assert.Equal(t, "COMPLETED", result.Record.Status)
	assert.Empty(t, result.Errors)
}

func TestVerifyActivityKeepsGraphQLErrorsFromRejectedRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Activity Already Checked In"}]}`))
	})

	result, err := client.VerifyActivity(context.Background(), "session-token", "ci")
	require.NoError(t, err)
	assert.Nil(t, result.Record)
	assert.Equal(t, []string{"Activity Already Checked In"}, result.Errors)
}

func TestVerifyActivityRateLimited(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request, req capturedRequest) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Too many requests"}]}`))
	})

	_, err := client.VerifyActivity(context.Background(), "session-token", "ci")
	assert.ErrorIs(t, err, retry.ErrRateLimited)
}

func TestNewClientRequiresCampaignID(t *testing.T) {
	t.Parallel()

	httpClient, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)

	_, err = NewClient(httpClient, "https://api.deform.cc/", " ", "")
	assert.ErrorContains(t, err, "campaign id is required")
}
