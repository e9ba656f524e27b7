// Package maps is a small client for the Google Places API (New), used to
// guide the admin when setting the business address.
package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"
	defaultTimeout = 10 * time.Second
	errorBodyLimit = 4 << 10

	autocompleteFieldMask = "suggestions.placePrediction.placeId,suggestions.placePrediction.text"
	placeResolveFieldMask = "id,formattedAddress,location,addressComponents"

	// DefaultRegion and DefaultLanguage bias suggestions to Romanian addresses.
	DefaultRegion   = "RO"
	DefaultLanguage = "ro"
)

var errAPIKeyRequired = errors.New("google maps api key is required")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// AutocompleteRequest is the places:autocomplete body. SessionToken groups
// keystrokes of one lookup for billing and may be empty.
type AutocompleteRequest struct {
	Input               string   `json:"input"`
	IncludedRegionCodes []string `json:"includedRegionCodes,omitempty"`
	LanguageCode        string   `json:"languageCode,omitempty"`
	SessionToken        string   `json:"sessionToken,omitempty"`
}

type AutocompleteSuggestion struct {
	PlaceID     string
	Description string
}

type PlaceDetails struct {
	PlaceID           string
	FormattedAddress  string
	Location          LatLng
	AddressComponents []AddressComponent
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type AddressComponent struct {
	LongName  string   `json:"longText"`
	ShortName string   `json:"shortText"`
	Types     []string `json:"types"`
}

// Component returns the long name of the first component tagged kind, such
// as "locality" or "administrative_area_level_1".
func (p *PlaceDetails) Component(kind string) string {
	if p == nil {
		return ""
	}
	for _, comp := range p.AddressComponents {
		if slices.Contains(comp.Types, kind) {
			return comp.LongName
		}
	}
	return ""
}

// apiError is Google's error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]AutocompleteSuggestion, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	req.Input = strings.TrimSpace(req.Input)
	if req.Input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}
	if len(req.IncludedRegionCodes) == 0 {
		req.IncludedRegionCodes = []string{DefaultRegion}
	}
	if req.LanguageCode == "" {
		req.LanguageCode = DefaultLanguage
	}

	type prediction struct {
		PlaceID string `json:"placeId"`
		Text    struct {
			Text string `json:"text"`
		} `json:"text"`
	}
	out, err := call[struct {
		Suggestions []struct {
			Prediction *prediction `json:"placePrediction"`
		} `json:"suggestions"`
	}](ctx, c, http.MethodPost, c.baseURL+"/places:autocomplete", req, autocompleteFieldMask)
	if err != nil {
		return nil, err
	}

	suggestions := make([]AutocompleteSuggestion, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		// query predictions carry no place id and cannot be resolved
		if s.Prediction == nil || s.Prediction.PlaceID == "" {
			continue
		}
		suggestions = append(suggestions, AutocompleteSuggestion{
			PlaceID:     s.Prediction.PlaceID,
			Description: s.Prediction.Text.Text,
		})
	}
	return suggestions, nil
}

func (c *Client) ResolvePlace(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place ID is required")
	}

	endpoint := c.baseURL + "/places/" + url.PathEscape(placeID) + "?" + url.Values{"languageCode": {DefaultLanguage}}.Encode()
	out, err := call[struct {
		ID                string             `json:"id"`
		FormattedAddress  string             `json:"formattedAddress"`
		Location          LatLng             `json:"location"`
		AddressComponents []AddressComponent `json:"addressComponents"`
	}](ctx, c, http.MethodGet, endpoint, nil, placeResolveFieldMask)
	if err != nil {
		return nil, err
	}
	return &PlaceDetails{
		PlaceID:           out.ID,
		FormattedAddress:  out.FormattedAddress,
		Location:          out.Location,
		AddressComponents: out.AddressComponents,
	}, nil
}

// call sends body as JSON (when non-nil) and decodes a 200 response into T.
func call[T any](ctx context.Context, c *Client, method, endpoint string, body any, fieldMask string) (*T, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode places request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build places request")
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "places request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode places response")
	}
	return &out, nil
}

func upstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	detail := strings.TrimSpace(string(raw))
	var env apiError
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		detail = env.Error.Status + ": " + env.Error.Message
	}
	cause := fmt.Errorf("places status %d: %s", resp.StatusCode, detail)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "place not found")
	case http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "invalid place lookup")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "places request failed")
	}
}
