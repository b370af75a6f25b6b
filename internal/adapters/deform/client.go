package deform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/adapters/httpclient"
	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	http       *resty.Client
	endpoint   string
	campaignID string
	origin     string
}

var _ ports.CampaignBackend = (*Client)(nil)

type graphQLRequest struct {
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
	Query         string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (r graphQLResponse[T]) errorMessages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}
	return messages
}

type recordPayload struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type activityPayload struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt string          `json:"createdAt"`
	Records   []recordPayload `json:"records"`
}

type userLoginData struct {
	UserLogin string `json:"userLogin"`
}

type userMeData struct {
	UserMe *struct {
		CampaignSpot *struct {
			Points *float64 `json:"points"`
		} `json:"campaignSpot"`
	} `json:"userMe"`
}

type campaignData struct {
	Campaign *struct {
		Activities []activityPayload `json:"activities"`
	} `json:"campaign"`
}

type verifyActivityData struct {
	VerifyActivity *struct {
		Record *recordPayload `json:"record"`
	} `json:"verifyActivity"`
}

func NewClient(httpClient *resty.Client, endpoint, campaignID, origin string) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("backend url must use http or https")
	}
	if strings.TrimSpace(campaignID) == "" {
		return nil, errors.New("campaign id is required")
	}

	return &Client{
		http:       httpClient,
		endpoint:   endpoint,
		campaignID: campaignID,
		origin:     strings.TrimSuffix(origin, "/"),
	}, nil
}

func (c *Client) ExchangeToken(ctx context.Context, externalToken string) (string, error) {
	variables := map[string]any{"data": map[string]string{"externalAuthToken": externalToken}}

	resp, err := post[userLoginData](ctx, c, operationUserLogin, "", variables, userLoginMutation)
	if err != nil {
		return "", err
	}
	if resp.Data == nil || resp.Data.UserLogin == "" {
		return "", fmt.Errorf("user login returned no token: %s", strings.Join(resp.errorMessages(), "; "))
	}

	return resp.Data.UserLogin, nil
}

func (c *Client) FetchPoints(ctx context.Context, token string) (float64, error) {
	resp, err := post[userMeData](ctx, c, operationUserMe, token, c.campaignVariables(), userMeQuery)
	if err != nil {
		return 0, err
	}
	if resp.Data == nil || resp.Data.UserMe == nil || resp.Data.UserMe.CampaignSpot == nil {
		return 0, fmt.Errorf("user me returned no campaign spot: %s", strings.Join(resp.errorMessages(), "; "))
	}
	if resp.Data.UserMe.CampaignSpot.Points == nil {
		return 0, nil
	}

	return *resp.Data.UserMe.CampaignSpot.Points, nil
}

func (c *Client) FetchActivities(ctx context.Context, token string) ([]domain.Activity, error) {
	resp, err := post[campaignData](ctx, c, operationCampaign, token, c.campaignVariables(), campaignQuery)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Campaign == nil {
		if messages := resp.errorMessages(); len(messages) > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrCampaignUnavailable, strings.Join(messages, "; "))
		}
		return nil, domain.ErrCampaignUnavailable
	}

	activities := make([]domain.Activity, 0, len(resp.Data.Campaign.Activities))
	for _, payload := range resp.Data.Campaign.Activities {
		activities = append(activities, toActivity(payload))
	}

	return activities, nil
}

// VerifyActivity runs the mutation used for both the daily check-in and task
// claims. GraphQL errors come back in the result, not as an error, because the
// server reports duplicate check-ins that way.
func (c *Client) VerifyActivity(ctx context.Context, token, activityID string) (ports.VerifyResult, error) {
	variables := map[string]any{"data": map[string]string{"activityId": activityID}}

	resp, err := post[verifyActivityData](ctx, c, operationVerifyActivity, token, variables, verifyActivityMutation)
	if err != nil {
		return ports.VerifyResult{}, err
	}

	result := ports.VerifyResult{Errors: resp.errorMessages()}
	if resp.Data != nil && resp.Data.VerifyActivity != nil && resp.Data.VerifyActivity.Record != nil {
		record := toRecord(*resp.Data.VerifyActivity.Record)
		result.Record = &record
	}

	return result, nil
}

func (c *Client) campaignVariables() map[string]any {
	return map[string]any{"campaignId": c.campaignID}
}

func (c *Client) headers(operation, token string) map[string]string {
	headers := map[string]string{
		"Content-Type":            "application/json",
		"x-apollo-operation-name": operation,
	}
	if c.origin != "" {
		headers["Origin"] = c.origin
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

// post sends one GraphQL operation. A 429 or an undecodable non-2xx response is
// an error; a non-2xx body carrying GraphQL errors is returned as a response.
func post[T any](ctx context.Context, c *Client, operation, token string, variables any, query string) (graphQLResponse[T], error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers(operation, token)).
		SetBody(graphQLRequest{OperationName: operation, Variables: variables, Query: query}).
		Post(c.endpoint)
	if err != nil {
		return graphQLResponse[T]{}, fmt.Errorf("%s: %w", operation, err)
	}

	var decoded graphQLResponse[T]
	decodeErr := json.Unmarshal(resp.Body(), &decoded)

	if statusErr := httpclient.CheckResponse(operation, resp); statusErr != nil {
		if status, ok := httpclient.AsStatusError(statusErr); ok && status.StatusCode != http.StatusTooManyRequests && decodeErr == nil && len(decoded.Errors) > 0 {
			return decoded, nil
		}
		return graphQLResponse[T]{}, statusErr
	}
	if decodeErr != nil {
		return graphQLResponse[T]{}, fmt.Errorf("decode %s response: %w", operation, decodeErr)
	}

	return decoded, nil
}

func toActivity(payload activityPayload) domain.Activity {
	records := make([]domain.ActivityRecord, 0, len(payload.Records))
	for _, record := range payload.Records {
		records = append(records, toRecord(record))
	}

	return domain.Activity{
		ID:        payload.ID,
		Title:     payload.Title,
		CreatedAt: parseTime(payload.CreatedAt),
		Records:   records,
	}
}

func toRecord(payload recordPayload) domain.ActivityRecord {
	return domain.ActivityRecord{
		ID:        payload.ID,
		Status:    payload.Status,
		CreatedAt: parseTime(payload.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed.UTC()
}
