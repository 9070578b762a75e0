package ai

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Category buckets a provider failure into a user-actionable group.
type Category string

const (
	CategoryRateLimited             Category = "rate_limited"
	CategorySystemPromptUnsupported Category = "system_prompt_unsupported"
	CategoryModelNotFound           Category = "model_not_found"
	CategoryContextTooLong          Category = "context_too_long"
	CategoryBadRequest              Category = "bad_request"
	CategoryUnknown                 Category = "unknown"
)

// Classified carries the category plus the fixed user-facing text and the
// HTTP status the response should mirror.
type Classified struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Status   int      `json:"-"`
}

type statusCoder interface {
	StatusCode() int
}

// Classify inspects a provider failure and maps it to a fixed category.
// Matching is best-effort over an HTTP-style status code and the error text;
// rules apply in order, first match wins. It only changes the text shown,
// never whether the failure is reported.
func Classify(err error) Classified {
	status := statusOf(err)
	msg := strings.ToLower(err.Error())

	switch {
	case status == http.StatusTooManyRequests || strings.Contains(msg, "rate limit"):
		return Classified{
			Category: CategoryRateLimited,
			Title:    "Rate Limit Reached",
			Message:  "The selected model is temporarily rate-limited. Please wait a few moments or try a different model.",
			Status:   http.StatusTooManyRequests,
		}
	case strings.Contains(msg, "developer instruction") || strings.Contains(msg, "system prompt"):
		return Classified{
			Category: CategorySystemPromptUnsupported,
			Title:    "System Prompt Not Supported",
			Message:  "This model does not support system instructions. Please choose another model.",
			Status:   orDefault(status, http.StatusBadRequest),
		}
	case status == http.StatusNotFound || strings.Contains(msg, "model not found"):
		return Classified{
			Category: CategoryModelNotFound,
			Title:    "Model Not Found",
			Message:  "The selected model is not available. Please choose another model.",
			Status:   http.StatusNotFound,
		}
	case strings.Contains(msg, "context") && strings.Contains(msg, "exceed"):
		return Classified{
			Category: CategoryContextTooLong,
			Title:    "Context Too Long",
			Message:  "The conversation is too long. Start a new chat or shorten your message.",
			Status:   orDefault(status, http.StatusBadRequest),
		}
	default:
		return Classified{
			Category: CategoryUnknown,
			Title:    "Something Went Wrong",
			Message:  err.Error(),
			Status:   orDefault(status, http.StatusInternalServerError),
		}
	}
}

// BadRequest classifies a pre-flight input rejection. These never reach a
// provider; they share the envelope so clients handle one error shape.
func BadRequest(message string) Classified {
	return Classified{
		Category: CategoryBadRequest,
		Title:    "Invalid Request",
		Message:  message,
		Status:   http.StatusBadRequest,
	}
}

// statusOf digs an HTTP status out of the error: a StatusCode method
// anywhere in the chain, or a "status code: NNN" fragment in the text.
// Returns 0 when nothing is found.
func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}

	msg := strings.ToLower(err.Error())
	marker := "status code: "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return 0
	}

	rest := msg[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	status, convErr := strconv.Atoi(rest[:end])
	if convErr != nil {
		return 0
	}
	return status
}

func orDefault(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}
