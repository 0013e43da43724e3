package editor

import (
	"net/mail"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// Schema lists the local validation rules of one collection.
type Schema struct {
	Collection string
	Required   []string
	Emails     []string
	URLs       []string
	Integers   []string
}

// Validate returns a *common.ValidationError describing every invalid field,
// or nil.
func (s Schema) Validate(f models.Fields) error {
	problems := make(map[string]string)

	for _, name := range s.Required {
		if f.IsBlank(name) {
			problems[name] = "is required"
		}
	}
	for _, name := range s.Emails {
		if _, bad := problems[name]; bad || f.IsBlank(name) {
			continue
		}
		if _, err := mail.ParseAddress(f.String(name)); err != nil {
			problems[name] = "must be a valid email address"
		}
	}
	for _, name := range s.URLs {
		if _, bad := problems[name]; bad || f.IsBlank(name) {
			continue
		}
		u, err := url.ParseRequestURI(f.String(name))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems[name] = "must be an absolute http(s) URL"
		}
	}
	for _, name := range s.Integers {
		if _, bad := problems[name]; bad || f.IsBlank(name) {
			continue
		}
		if !isInteger(f[name]) {
			problems[name] = "must be a whole number"
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &common.ValidationError{Fields: problems}
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == float64(int64(n))
	case string:
		_, err := strconv.Atoi(n)
		return err == nil
	default:
		return false
	}
}
