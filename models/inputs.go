package models

// SkillListOptions filters the skills listing. Unset fields are not sent.
type SkillListOptions struct {
	Category SkillCategory `json:"category,omitempty"`
	Featured *bool         `json:"featured,omitempty"`
	Page     int           `json:"page,omitempty"`
	PerPage  int           `json:"per_page,omitempty"`
}

// ProjectListOptions filters the projects listing.
type ProjectListOptions struct {
	Status   ProjectStatus `json:"status,omitempty"`
	Featured *bool         `json:"featured,omitempty"`
	Page     int           `json:"page,omitempty"`
	PerPage  int           `json:"per_page,omitempty"`
}

// PostListOptions filters the blog listing.
type PostListOptions struct {
	Status   PostStatus `json:"status,omitempty"`
	Featured *bool      `json:"featured,omitempty"`
	Page     int        `json:"page,omitempty"`
	PerPage  int        `json:"per_page,omitempty"`
}

// MessageListOptions filters the contact inbox.
type MessageListOptions struct {
	Status  MessageStatus `json:"status,omitempty"`
	Page    int           `json:"page,omitempty"`
	PerPage int           `json:"per_page,omitempty"`
}

// InterestListOptions filters the interests listing.
type InterestListOptions struct {
	Category InterestCategory `json:"category,omitempty"`
	Featured *bool            `json:"featured,omitempty"`
}

// Bool returns a pointer to b, for optional filter and input fields.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

type SkillInput struct {
	Name             string        `json:"name,omitempty"`
	Category         SkillCategory `json:"category,omitempty"`
	ProficiencyLevel *int          `json:"proficiency_level,omitempty"`
	Description      *string       `json:"description,omitempty"`
	Icon             *string       `json:"icon,omitempty"`
	DisplayOrder     *int          `json:"display_order,omitempty"`
	IsFeatured       *bool         `json:"is_featured,omitempty"`
}

type ProjectInput struct {
	Title           string        `json:"title,omitempty"`
	Description     string        `json:"description,omitempty"`
	LongDescription *string       `json:"long_description,omitempty"`
	Technologies    []string      `json:"technologies,omitempty"`
	GithubURL       *string       `json:"github_url,omitempty"`
	LiveURL         *string       `json:"live_url,omitempty"`
	FeaturedImage   *string       `json:"featured_image,omitempty"`
	Images          []string      `json:"images,omitempty"`
	Status          ProjectStatus `json:"status,omitempty"`
	StartDate       *string       `json:"start_date,omitempty"`
	EndDate         *string       `json:"end_date,omitempty"`
	DisplayOrder    *int          `json:"display_order,omitempty"`
	IsFeatured      *bool         `json:"is_featured,omitempty"`
}

type PostInput struct {
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	Status        PostStatus `json:"status,omitempty"`
}

// MessageInput is a contact form submission.
type MessageInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject *string `json:"subject,omitempty"`
	Message string  `json:"message"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
}

// MessageUpdate moves a message to another status.
type MessageUpdate struct {
	Status MessageStatus `json:"status"`
}

// Reply is sent back to the author of a message.
type Reply struct {
	ReplyContent string `json:"reply_content"`
}

type EducationInput struct {
	Institution  string   `json:"institution,omitempty"`
	Degree       string   `json:"degree,omitempty"`
	FieldOfStudy *string  `json:"field_of_study,omitempty"`
	GPA          *float64 `json:"gpa,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	IsCurrent    *bool    `json:"is_current,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	DisplayOrder *int     `json:"display_order,omitempty"`
}

type ExperienceInput struct {
	Company      string   `json:"company,omitempty"`
	Position     string   `json:"position,omitempty"`
	Location     *string  `json:"location,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	IsCurrent    *bool    `json:"is_current,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	DisplayOrder *int     `json:"display_order,omitempty"`
}

type InterestInput struct {
	Title        string           `json:"title,omitempty"`
	Category     InterestCategory `json:"category,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
	ExternalURL  *string          `json:"external_url,omitempty"`
	DisplayOrder *int             `json:"display_order,omitempty"`
	IsFeatured   *bool            `json:"is_featured,omitempty"`
}
