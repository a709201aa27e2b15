package middleware

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var (
	jobIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	repoSegPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateGithubURL accepts https://github.com/<owner>/<repo>[.git][/...].
func ValidateGithubURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("Please enter a GitHub repository URL.")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return fmt.Errorf("only github.com repositories are supported")
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("URL must point to a repository (github.com/<owner>/<repo>)")
	}
	for _, seg := range parts[:2] {
		if !repoSegPattern.MatchString(seg) || seg == "." || seg == ".." {
			return fmt.Errorf("invalid characters in repository path")
		}
	}
	return nil
}

// ValidatePDFName checks the uploaded file name; empty names are allowed.
func ValidatePDFName(name string) error {
	if name == "" {
		return nil
	}
	if strings.ToLower(path.Ext(name)) != ".pdf" {
		return fmt.Errorf("Only PDF files are accepted.")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateJobID validates job ID format
func ValidateJobID(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("job ID cannot be empty")
	}
	if !jobIDPattern.MatchString(jobID) {
		return fmt.Errorf("invalid job ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
