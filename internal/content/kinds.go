// Package content declares the collections of the site: their validation
// schema, ordering, upload folder and typed read model.
package content

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/editor"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
)

const (
	Services            = "services"
	TeamMembers         = "team_members"
	Testimonials        = "testimonials"
	PortfolioHighlights = "portfolio_highlights"
	JobPostings         = "job_postings"
	ContactMessages     = "contact_messages"
	Projects            = "projects"
)

// Kind describes one collection.
type Kind struct {
	Name   string
	Schema editor.Schema
	Order  []remote.Order
	// UploadFolder is empty for collections without media.
	UploadFolder string
	// ImageField is the field an uploaded file's URL is written to.
	ImageField string
	// Public collections are served by the read API.
	Public bool
	// Map converts a record to the collection's read model.
	Map func(models.Record) (any, error)
}

// Query returns the selection used by the collection controller.
func (k Kind) Query() remote.Query {
	return remote.Query{Order: k.Order}
}

// Orderable reports whether records carry an explicit display order.
func (k Kind) Orderable() bool {
	return len(k.Order) > 0 && k.Order[0].Field == remote.DisplayOrderField
}

var (
	byDisplayOrder = []remote.Order{{Field: remote.DisplayOrderField, Numeric: true}}
	newestFirst    = []remote.Order{{Field: "created_at", Desc: true}}
)

var kinds = map[string]Kind{
	Services: {
		Name: Services,
		Schema: editor.Schema{
			Required: []string{"title", "description"},
			URLs:     []string{"image_url"},
			Integers: []string{remote.DisplayOrderField},
		},
		Order:        byDisplayOrder,
		UploadFolder: "services",
		ImageField:   "image_url",
		Public:       true,
		Map:          erase(MapService),
	},
	TeamMembers: {
		Name: TeamMembers,
		Schema: editor.Schema{
			Required: []string{"name", "role"},
			URLs:     []string{"photo_url", "linkedin_url"},
			Integers: []string{remote.DisplayOrderField},
		},
		Order:        byDisplayOrder,
		UploadFolder: "team",
		ImageField:   "photo_url",
		Public:       true,
		Map:          erase(MapTeamMember),
	},
	Testimonials: {
		Name: Testimonials,
		Schema: editor.Schema{
			Required: []string{"author", "quote"},
			URLs:     []string{"avatar_url"},
			Integers: []string{"rating"},
		},
		Order:        newestFirst,
		UploadFolder: "testimonials",
		ImageField:   "avatar_url",
		Public:       true,
		Map:          erase(MapTestimonial),
	},
	PortfolioHighlights: {
		Name: PortfolioHighlights,
		Schema: editor.Schema{
			Required: []string{"title", "image_url"},
			URLs:     []string{"image_url", "link_url"},
			Integers: []string{remote.DisplayOrderField},
		},
		Order:        byDisplayOrder,
		UploadFolder: "portfolio",
		ImageField:   "image_url",
		Public:       true,
		Map:          erase(MapPortfolioHighlight),
	},
	JobPostings: {
		Name: JobPostings,
		Schema: editor.Schema{
			Required: []string{"title", "location"},
		},
		Order:  newestFirst,
		Public: true,
		Map:    erase(MapJobPosting),
	},
	ContactMessages: {
		Name: ContactMessages,
		Schema: editor.Schema{
			Required: []string{"name", "email", "message"},
			Emails:   []string{"email"},
		},
		Order: newestFirst,
		Map:   erase(MapContactMessage),
	},
	Projects: {
		Name: Projects,
		Schema: editor.Schema{
			Required: []string{"title", "client"},
			URLs:     []string{"cover_url"},
			Integers: []string{remote.DisplayOrderField},
		},
		Order:        byDisplayOrder,
		UploadFolder: "projects",
		ImageField:   "cover_url",
		Public:       true,
		Map:          erase(MapProject),
	},
}

func init() {
	for name, k := range kinds {
		k.Schema.Collection = name
		kinds[name] = k
	}
}

// Lookup returns the kind of a collection.
func Lookup(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", common.ErrUnknownCollection, name)
	}
	return k, nil
}

// Names lists every collection name in lexical order.
func Names() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func erase[T any](fn func(models.Record) (T, error)) func(models.Record) (any, error) {
	return func(r models.Record) (any, error) {
		return fn(r)
	}
}
