package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophsite/internal/client/client"
	"github.com/dmitrijs2005/gophsite/internal/client/state"
	"github.com/dmitrijs2005/gophsite/internal/content"
	sitemodels "github.com/dmitrijs2005/gophsite/internal/models"
)

var (
	errNoCollection = errors.New("no collection selected, type 'use <collection>'")
	readFile        = os.ReadFile
)

func usage(text string) error {
	return fmt.Errorf("usage: %s", text)
}

func (a *App) current() (content.Kind, error) {
	if a.collection == "" {
		return content.Kind{}, errNoCollection
	}
	return content.Lookup(a.collection)
}

// Use selects the collection the other commands work on.
func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Collections:", strings.Join(content.Names(), ", "))
		return nil
	}
	kind, err := content.Lookup(args[0])
	if err != nil {
		return err
	}
	a.collection = kind.Name
	return a.state.Set(ctx, state.KeyCollection, kind.Name)
}

// List prints the records of the current collection in display order.
func (a *App) List(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	col, err := a.api.Collection(ctx, kind.Name)
	if err != nil {
		return err
	}

	if col.Error != "" {
		warning.Fprintf(a.out, "%s is %s: %s\n", col.Collection, col.Status, col.Error)
	}
	if len(col.Records) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}
	for i, r := range col.Records {
		fmt.Fprintf(a.out, "%2d. %s  %s\n", i+1, r.ID, summary(r.Fields))
	}
	return nil
}

// Activity prints the newest audit entries. An optional argument sets how
// many.
func (a *App) Activity(ctx context.Context, args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("activity [count]")
		}
		limit = n
	}

	entries, err := a.api.Activity(ctx, limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %-7s %s/%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.EntityType, e.EntityID)
	}
	return nil
}

// New opens a create draft in the current collection.
func (a *App) New(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	s, err := a.api.BeginCreate(ctx, kind.Name, nil)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// Edit opens an edit draft of a record.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("edit <id>")
	}
	kind, err := a.current()
	if err != nil {
		return err
	}
	s, err := a.api.BeginEdit(ctx, kind.Name, args[0])
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// Set changes draft fields given as field=value pairs. Quote-free values
// only; use "set field=" to clear a field.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("set <field>=<value>...")
	}
	kind, err := a.current()
	if err != nil {
		return err
	}

	fields := sitemodels.Fields{}
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return usage("set <field>=<value>...")
		}
		fields[name] = coerce(kind, name, raw)
	}

	s, err := a.api.SetFields(ctx, kind.Name, fields)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// coerce turns a typed-in value into the JSON type the collection expects.
func coerce(kind content.Kind, field, raw string) any {
	for _, f := range kind.Schema.Integers {
		if f == field {
			if n, err := strconv.Atoi(raw); err == nil {
				return n
			}
			return raw
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func (a *App) Show(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	s, err := a.api.Session(ctx, kind.Name)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// Submit saves the draft. The new record shows up in "list" once the
// server's live view has caught up.
func (a *App) Submit(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	id, err := a.api.Submit(ctx, kind.Name)
	if err != nil {
		return err
	}
	success.Fprintln(a.out, "Saved", id)
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	if _, err := a.api.Cancel(ctx, kind.Name); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Draft discarded")
	return nil
}

// Detach turns an edit of a deleted record into a create.
func (a *App) Detach(ctx context.Context) error {
	kind, err := a.current()
	if err != nil {
		return err
	}
	s, err := a.api.Detach(ctx, kind.Name)
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// Upload sends a local file for the draft's image. When the upload fails
// the user may type the image URL instead.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("upload <file>")
	}
	kind, err := a.current()
	if err != nil {
		return err
	}
	if kind.ImageField == "" {
		return fmt.Errorf("%s has no image field", kind.Name)
	}

	data, err := readFile(args[0])
	if err != nil {
		return err
	}

	res, err := a.api.Upload(ctx, kind.Name, filepath.Base(args[0]), data)
	if err == nil {
		success.Fprintf(a.out, "Uploaded %s (%d bytes) -> %s\n", res.Task.Path, res.Task.Size, res.Task.URL)
		return nil
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Fallback == "" {
		return err
	}

	failure.Fprintln(a.out, "Upload failed:", apiErr.Message)
	url, rerr := getSimpleText(a.reader, fmt.Sprintf("Enter %s manually (empty to skip)", kind.ImageField), a.out)
	if rerr != nil || url == "" {
		return nil
	}
	s, err := a.api.SetFields(ctx, kind.Name, sitemodels.Fields{kind.ImageField: url})
	if err != nil {
		return err
	}
	a.printSession(s)
	return nil
}

// Delete removes a record after a y/N confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	kind, err := a.current()
	if err != nil {
		return err
	}

	confirmed := Confirm(a.reader, fmt.Sprintf("Delete %s from %s?", args[0], kind.Name), a.out)
	removed, err := a.api.Remove(ctx, kind.Name, args[0], confirmed)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(a.out, "Nothing deleted")
		return nil
	}
	success.Fprintln(a.out, "Deleted", args[0])
	return nil
}

// Order sets the display order to the given ids.
func (a *App) Order(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("order <id>...")
	}
	kind, err := a.current()
	if err != nil {
		return err
	}
	if !kind.Orderable() {
		return fmt.Errorf("%s has no display order", kind.Name)
	}
	if err := a.api.Reorder(ctx, kind.Name, args); err != nil {
		return err
	}
	success.Fprintln(a.out, "Order saved")
	return nil
}
