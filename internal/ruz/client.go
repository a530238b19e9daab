// Package ruz is a client for the university RUZ schedule API
package ruz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

const apiDateLayout = "2006.01.02"

// Client implements schedule.Directory and schedule.Resolver over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a RUZ client. The timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// flexID accepts identifiers encoded either as JSON strings or numbers
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = flexID(n.String())
	return nil
}

type searchResult struct {
	ID          flexID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type lesson struct {
	Date       string `json:"date"`
	DayOfWeek  string `json:"dayOfWeekString"`
	Begin      string `json:"beginLesson"`
	End        string `json:"endLesson"`
	Discipline string `json:"discipline"`
	KindOfWork string `json:"kindOfWork"`
	Auditorium string `json:"auditorium"`
	Building   string `json:"building"`
	Lecturer   string `json:"lecturer_title"`
	Group      string `json:"group"`
	Stream     string `json:"stream"`
	SubGroup   string `json:"subGroup"`
	URL        string `json:"url1"`
}

// ResolveGroup returns the id of the group whose label matches name exactly
func (c *Client) ResolveGroup(ctx context.Context, name string) (string, error) {
	name = schedule.NormalizeGroupName(name)
	if name == "" {
		return "", schedule.ErrNotFound
	}

	results, err := c.search(ctx, name, "group")
	if err != nil {
		return "", err
	}

	for _, r := range results {
		if schedule.NormalizeGroupName(r.Label) == name {
			return string(r.ID), nil
		}
	}
	return "", schedule.ErrNotFound
}

// ResolveTeacher returns all people matching name
func (c *Client) ResolveTeacher(ctx context.Context, name string) ([]schedule.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	results, err := c.search(ctx, name, "person")
	if err != nil {
		return nil, err
	}

	teachers := make([]schedule.Teacher, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		teachers = append(teachers, schedule.Teacher{ID: string(r.ID), Name: r.Label})
	}
	return teachers, nil
}

// FormatSchedule fetches lessons for the query range and renders them
func (c *Client) FormatSchedule(ctx context.Context, q schedule.Query) (string, error) {
	if q.SubjectID == "" {
		return "", schedule.ErrNotFound
	}
	days := q.Days
	if days < 1 {
		days = 1
	}
	finish := q.Start.AddDate(0, 0, days-1)

	params := url.Values{}
	params.Set("start", q.Start.Format(apiDateLayout))
	params.Set("finish", finish.Format(apiDateLayout))
	params.Set("lng", "1")
	path := fmt.Sprintf("/schedule/%s/%s", schedule.SubjectType(q.Role), url.PathEscape(q.SubjectID))

	var lessons []lesson
	if err := c.get(ctx, path, params, &lessons); err != nil {
		return "", err
	}

	return render(lessons, q, days), nil
}

func (c *Client) search(ctx context.Context, term, kind string) ([]searchResult, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("type", kind)

	var results []searchResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	c.logger.Debug("RUZ search",
		zap.String("term", term),
		zap.String("type", kind),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s: %w", path, schedule.ErrTimeout)
		}
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return schedule.ErrNotFound
	case resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", path, schedule.ErrTimeout)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s: %w", path, schedule.ErrTimeout)
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
