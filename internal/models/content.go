package models

// Typed read models for the public site. Each one is mapped from a Record by
// the content registry.

type Service struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Bio          string `json:"bio,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

type Testimonial struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Company   string `json:"company,omitempty"`
	Quote     string `json:"quote"`
	Rating    int    `json:"rating,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type PortfolioHighlight struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary,omitempty"`
	ImageURL     string `json:"image_url"`
	LinkURL      string `json:"link_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Employment  string `json:"employment,omitempty"`
	Description string `json:"description,omitempty"`
	Open        bool   `json:"open"`
}

type ContactMessage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
	Handled bool   `json:"handled"`
}

type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Client       string   `json:"client"`
	Summary      string   `json:"summary,omitempty"`
	CoverURL     string   `json:"cover_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	DisplayOrder int      `json:"display_order"`
}
