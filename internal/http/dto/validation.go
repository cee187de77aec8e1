package dto

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxIDLength   = 64
	maxNameLength = 200
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) ToMap() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateID(field, id string) []ValidationError {
	var errs []ValidationError
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		errs = append(errs, ValidationError{Field: field, Message: "is required"})
	case len(id) > maxIDLength:
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxIDLength)})
	case !idPattern.MatchString(id):
		errs = append(errs, ValidationError{Field: field, Message: "may only contain letters, digits, '.', '_' and '-'"})
	}
	return errs
}

func validateName(name string) []ValidationError {
	var errs []ValidationError
	if utf8.RuneCountInString(name) > maxNameLength {
		errs = append(errs, ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)})
	}
	return errs
}

func validateURL(urlVal *string) []ValidationError {
	var errs []ValidationError
	if urlVal != nil && *urlVal != "" {
		u, err := url.ParseRequestURI(*urlVal)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, ValidationError{Field: "source_url", Message: "invalid URL format"})
		}
	}
	return errs
}

func validateQueueStatus(status string) []ValidationError {
	var errs []ValidationError
	if status != "" && status != "pending" && status != "played" {
		errs = append(errs, ValidationError{Field: "status", Message: "must be 'pending' or 'played'"})
	}
	return errs
}
