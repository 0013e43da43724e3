package content

import (
	"fmt"

	"github.com/dmitrijs2005/gophsite/internal/models"
)

func required(r models.Record, names ...string) error {
	for _, name := range names {
		if r.Fields.IsBlank(name) {
			return fmt.Errorf("record %s: missing %s", r.ID, name)
		}
	}
	return nil
}

func MapService(r models.Record) (models.Service, error) {
	if err := required(r, "title"); err != nil {
		return models.Service{}, err
	}
	f := r.Fields
	return models.Service{
		ID:           r.ID,
		Title:        f.String("title"),
		Description:  f.String("description"),
		Icon:         f.String("icon"),
		ImageURL:     f.String("image_url"),
		DisplayOrder: f.Int("display_order"),
	}, nil
}

func MapTeamMember(r models.Record) (models.TeamMember, error) {
	if err := required(r, "name"); err != nil {
		return models.TeamMember{}, err
	}
	f := r.Fields
	return models.TeamMember{
		ID:           r.ID,
		Name:         f.String("name"),
		Role:         f.String("role"),
		Bio:          f.String("bio"),
		PhotoURL:     f.String("photo_url"),
		LinkedInURL:  f.String("linkedin_url"),
		DisplayOrder: f.Int("display_order"),
	}, nil
}

func MapTestimonial(r models.Record) (models.Testimonial, error) {
	if err := required(r, "quote"); err != nil {
		return models.Testimonial{}, err
	}
	f := r.Fields
	return models.Testimonial{
		ID:        r.ID,
		Author:    f.String("author"),
		Company:   f.String("company"),
		Quote:     f.String("quote"),
		Rating:    f.Int("rating"),
		AvatarURL: f.String("avatar_url"),
	}, nil
}

func MapPortfolioHighlight(r models.Record) (models.PortfolioHighlight, error) {
	if err := required(r, "title"); err != nil {
		return models.PortfolioHighlight{}, err
	}
	f := r.Fields
	return models.PortfolioHighlight{
		ID:           r.ID,
		Title:        f.String("title"),
		Summary:      f.String("summary"),
		ImageURL:     f.String("image_url"),
		LinkURL:      f.String("link_url"),
		DisplayOrder: f.Int("display_order"),
	}, nil
}

// MapJobPosting treats a missing "open" flag as an open posting.
func MapJobPosting(r models.Record) (models.JobPosting, error) {
	if err := required(r, "title"); err != nil {
		return models.JobPosting{}, err
	}
	f := r.Fields
	open := true
	if _, ok := f["open"]; ok {
		open = f.Bool("open")
	}
	return models.JobPosting{
		ID:          r.ID,
		Title:       f.String("title"),
		Location:    f.String("location"),
		Employment:  f.String("employment"),
		Description: f.String("description"),
		Open:        open,
	}, nil
}

func MapContactMessage(r models.Record) (models.ContactMessage, error) {
	f := r.Fields
	return models.ContactMessage{
		ID:      r.ID,
		Name:    f.String("name"),
		Email:   f.String("email"),
		Phone:   f.String("phone"),
		Message: f.String("message"),
		Handled: f.Bool("handled"),
	}, nil
}

func MapProject(r models.Record) (models.Project, error) {
	if err := required(r, "title"); err != nil {
		return models.Project{}, err
	}
	f := r.Fields
	return models.Project{
		ID:           r.ID,
		Title:        f.String("title"),
		Client:       f.String("client"),
		Summary:      f.String("summary"),
		CoverURL:     f.String("cover_url"),
		Tags:         f.Strings("tags"),
		DisplayOrder: f.Int("display_order"),
	}, nil
}
