package sciseed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vaccine_slot_notifier/internal/domain/slot"
)

const (
	DefaultBaseURL = "https://api-cache.vaccines.sciseed.jp/"
	DefaultItemID  = "3"
	dateLayout     = "2006-01-02"
)

var ErrSourceUnavailable = fmt.Errorf("reservation source unavailable")

type reservationFrameResponse struct {
	ReservationFrame []slot.Slot `json:"reservation_frame"`
}

// Client queries the public reservation frame endpoint of one organization.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	organizationID string
	itemID         string
	loc            *time.Location
}

func NewClient(httpClient *http.Client, baseURL, organizationID, itemID string, loc *time.Location) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation API base URL %q: %w", baseURL, err)
	}
	if itemID == "" {
		itemID = DefaultItemID
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        u,
		organizationID: organizationID,
		itemID:         itemID,
		loc:            loc,
	}, nil
}

// FetchSlots returns every reservation frame whose start date lies between
// from and to (dates evaluated in the client's location).
func (c *Client) FetchSlots(ctx context.Context, from, to time.Time) ([]slot.Slot, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{
		Path: fmt.Sprintf("public/%s/reservation_frame", url.PathEscape(c.organizationID)),
	})
	q := url.Values{}
	q.Set("item_id", c.itemID)
	q.Set("start_date_after", from.In(c.loc).Format(dateLayout))
	q.Set("start_date_before", to.In(c.loc).Format(dateLayout))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrSourceUnavailable, resp.StatusCode, endpoint.Path)
	}

	var body reservationFrameResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrSourceUnavailable, err)
	}
	if body.ReservationFrame == nil {
		return []slot.Slot{}, nil
	}
	return body.ReservationFrame, nil
}
