package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TagSet is an ordered set of tags. Duplicates (case-insensitive) and blanks
// are dropped on insert; the first spelling wins.
type TagSet []string

func NewTagSet(tags ...string) TagSet {
	var s TagSet
	s.Add(tags...)
	return s
}

func (s *TagSet) Add(tags ...string) {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || s.Contains(t) {
			continue
		}
		*s = append(*s, t)
	}
}

func (s TagSet) Contains(tag string) bool {
	for _, t := range s {
		if strings.EqualFold(t, strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

func (s TagSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *TagSet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("tagset: unsupported scan type %T", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewTagSet(raw...)
	return nil
}
