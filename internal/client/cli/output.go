package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/gophsite/internal/client/client"
	"github.com/dmitrijs2005/gophsite/internal/client/models"
	"github.com/dmitrijs2005/gophsite/internal/common"
	sitemodels "github.com/dmitrijs2005/gophsite/internal/models"
)

var (
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
	accent  = color.New(color.FgCyan)
)

// report prints a command error with a hint for the cases a user can act
// on.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.expire(context.Background())
		failure.Fprintln(a.out, "Session expired, please login again")
	case errors.Is(err, client.ErrUnavailable):
		failure.Fprintln(a.out, "Server unavailable:", err)
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		failure.Fprintln(a.out, "Please fix the following fields:")
		for _, name := range sortedKeys(apiErr.Fields) {
			fmt.Fprintf(a.out, "  %s: %s\n", name, apiErr.Fields[name])
		}
	case errors.As(err, &apiErr) && strings.Contains(apiErr.Message, common.ErrRecordGone.Error()):
		failure.Fprintln(a.out, "The record was deleted while you were editing it.")
		warning.Fprintln(a.out, "Type 'detach' to save your draft as a new record, or 'cancel' to discard it.")
	default:
		failure.Fprintln(a.out, "Error:", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// summary picks a human label for a record.
func summary(f sitemodels.Fields) string {
	for _, k := range []string{"title", "name", "author"} {
		if s, ok := f[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (a *App) printSession(s models.Session) {
	if !s.Open() {
		fmt.Fprintln(a.out, "No open draft")
		return
	}

	head := s.Mode
	if s.TargetID != "" {
		head += " " + s.TargetID
	}
	accent.Fprintf(a.out, "[%s] %s\n", head, s.Status)
	for _, k := range sortedKeys(s.Draft) {
		fmt.Fprintf(a.out, "  %s = %s", k, formatValue(s.Draft[k]))
		if msg, ok := s.FieldErrors[k]; ok {
			failure.Fprintf(a.out, "  (%s)", msg)
		}
		fmt.Fprintln(a.out)
	}
	for _, k := range sortedKeys(s.FieldErrors) {
		if _, ok := s.Draft[k]; !ok {
			failure.Fprintf(a.out, "  %s: %s\n", k, s.FieldErrors[k])
		}
	}
	if s.Error != "" {
		failure.Fprintln(a.out, "  last error:", s.Error)
	}
}
