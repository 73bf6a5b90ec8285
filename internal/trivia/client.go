package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the public Open Trivia Database.
const DefaultBaseURL = "https://opentdb.com"

// StatusError is a non-2xx answer from the trivia API.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("trivia api %s: unexpected status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is(err, domain.ErrRateLimited) match HTTP 429.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// ResponseCodeError is a well-formed API answer carrying a nonzero response_code.
type ResponseCodeError struct {
	Code int
}

func (e *ResponseCodeError) Error() string {
	switch e.Code {
	case 1:
		return "no results found"
	case 2:
		return "invalid parameter"
	case 3:
		return "token not found"
	case 4:
		return "token empty"
	default:
		return "api error: response code " + strconv.Itoa(e.Code)
	}
}

type rawQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []rawQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// Client talks to the trivia HTTP API. It performs a single request per call.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Questions requests a batch of questions. Category and difficulty are left out of the
// query when empty or "any".
func (c *Client) Questions(ctx context.Context, settings domain.QuizSettings, timeout time.Duration) (questionsResponse, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(settings.Amount))
	if settings.Category != "" && settings.Category != domain.AnyCategory {
		query.Set("category", settings.Category)
	}
	if settings.Difficulty != "" && settings.Difficulty != domain.DifficultyAny {
		query.Set("difficulty", string(settings.Difficulty))
	}

	var resp questionsResponse
	err := c.getJSON(ctx, "/api.php", query, timeout, &resp)
	return resp, err
}

// Categories lists the API's categories.
func (c *Client) Categories(ctx context.Context, timeout time.Duration) ([]domain.Category, error) {
	var resp categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", nil, timeout, &resp); err != nil {
		return nil, err
	}
	return resp.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, timeout time.Duration, dst any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trivia api %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Path: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
