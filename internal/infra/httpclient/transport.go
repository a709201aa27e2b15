package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

const (
	assessPath      = "/api/v1/assess"
	defaultFileName = "assessment.pdf"
	maxErrorBody    = 64 << 10
)

// Transport talks to the live assessment service.
type Transport struct {
	baseURL string
	client  *http.Client
}

// New builds a Transport for baseURL (e.g. http://localhost:8000). A nil
// client gets a 30s timeout.
func New(baseURL string, client *http.Client) *Transport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Transport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Submit kirim github_url + file sebagai multipart ke POST /api/v1/assess
func (t *Transport) Submit(ctx context.Context, s domain.Submission) (domain.SubmitResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("github_url", s.GithubURL); err != nil {
		return domain.SubmitResponse{}, err
	}
	name := s.FileName
	if name == "" {
		name = defaultFileName
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return domain.SubmitResponse{}, err
	}
	if _, err := io.Copy(fw, s.File); err != nil {
		return domain.SubmitResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.SubmitResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+assessPath, &buf)
	if err != nil {
		return domain.SubmitResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.SubmitResponse{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.SubmitResponse{}, errorFromResponse(resp)
	}
	var out domain.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.SubmitResponse{}, &domain.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode submit response: %w", err)}
	}
	return out, nil
}

// Poll does GET /api/v1/assess/{id}. 202 means still processing; 200 carries
// the terminal envelope; every other status is a transport error.
func (t *Transport) Poll(ctx context.Context, id domain.JobID) (domain.PollResponse, error) {
	u := t.baseURL + assessPath + "/" + url.PathEscape(string(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PollResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.PollResponse{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return domain.PollResponse{Ready: false, JobID: id, Status: domain.StatusProcessing}, nil
	case http.StatusOK:
		var out domain.PollResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return domain.PollResponse{}, &domain.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode poll response: %w", err)}
		}
		out.Ready = true
		if out.JobID == "" {
			out.JobID = id
		}
		return out, nil
	default:
		return domain.PollResponse{}, errorFromResponse(resp)
	}
}

// errorFromResponse pulls {"detail": "..."} out of an error body when present.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	te := &domain.TransportError{StatusCode: resp.StatusCode}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch d := payload.Detail.(type) {
		case string:
			te.Detail = d
		case nil:
		default:
			// validation errors come back as a list of objects
			if b, err := json.Marshal(d); err == nil {
				te.Detail = string(b)
			}
		}
	}
	return te
}
