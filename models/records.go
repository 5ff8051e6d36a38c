package models

import "encoding/json"

type SkillCategory string

const (
	SkillTechnical     SkillCategory = "technical"
	SkillSoft          SkillCategory = "soft"
	SkillLanguage      SkillCategory = "language"
	SkillCertification SkillCategory = "certification"
)

type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "completed"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectPlanned    ProjectStatus = "planned"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

type MessageStatus string

const (
	MessageNew      MessageStatus = "new"
	MessageRead     MessageStatus = "read"
	MessageReplied  MessageStatus = "replied"
	MessageArchived MessageStatus = "archived"
)

type InterestCategory string

const (
	InterestMovie InterestCategory = "movie"
	InterestTV    InterestCategory = "tv_show"
	InterestMusic InterestCategory = "music"
	InterestBook  InterestCategory = "book"
	InterestSport InterestCategory = "sport"
	InterestHobby InterestCategory = "hobby"
	InterestOther InterestCategory = "other"
)

// Skill is a single entry of the skills section.
type Skill struct {
	Record
	Name                  string        `json:"name"`
	Category              SkillCategory `json:"category"`
	ProficiencyLevel      int           `json:"proficiency_level"`
	ProficiencyPercentage int           `json:"proficiency_percentage,omitempty"`
	ProficiencyLabel      string        `json:"proficiency_label,omitempty"`
	Description           *string       `json:"description"`
	Icon                  *string       `json:"icon"`
	DisplayOrder          int           `json:"display_order"`
	IsFeatured            bool          `json:"is_featured"`
}

// Project is a portfolio project. Technologies and Images hold the raw stored
// values; the *List fields carry the parsed lists.
type Project struct {
	Record
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	LongDescription  *string       `json:"long_description"`
	Technologies     *string       `json:"technologies"`
	TechnologiesList []string      `json:"technologies_list"`
	GithubURL        *string       `json:"github_url"`
	LiveURL          *string       `json:"live_url"`
	FeaturedImage    *string       `json:"featured_image"`
	Images           *string       `json:"images"`
	ImagesList       []string      `json:"images_list"`
	Status           ProjectStatus `json:"status"`
	StartDate        *string       `json:"start_date"`
	EndDate          *string       `json:"end_date"`
	Duration         *string       `json:"duration,omitempty"`
	IsCurrent        bool          `json:"is_current"`
	DisplayOrder     int           `json:"display_order"`
	IsFeatured       bool          `json:"is_featured"`
}

// BlogPost is an article of the blog.
type BlogPost struct {
	Record
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       *string    `json:"excerpt"`
	FeaturedImage *string    `json:"featured_image"`
	Status        PostStatus `json:"status"`
	PublishedAt   *string    `json:"published_at"`
	ViewsCount    int        `json:"views_count"`
	LikesCount    int        `json:"likes_count"`
	IsPublished   bool       `json:"is_published"`
	ReadingTime   int        `json:"reading_time,omitempty"`
}

// Message is a contact form submission.
type Message struct {
	Record
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     *string       `json:"phone"`
	Company   *string       `json:"company"`
	Subject   *string       `json:"subject"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	IsNew     bool          `json:"is_new"`
	IsRead    bool          `json:"is_read"`
	IsReplied bool          `json:"is_replied"`
}

// Education is an entry of the education history.
type Education struct {
	Record
	Institution  string       `json:"institution"`
	Degree       string       `json:"degree"`
	FieldOfStudy *string      `json:"field_of_study"`
	GPA          *json.Number `json:"gpa"`
	GPADisplay   *string      `json:"gpa_display,omitempty"`
	StartDate    string       `json:"start_date"`
	EndDate      *string      `json:"end_date"`
	IsCurrent    bool         `json:"is_current"`
	Description  *string      `json:"description"`
	Achievements *string      `json:"achievements"`
	DisplayOrder int          `json:"display_order"`
	Duration     *string      `json:"duration,omitempty"`
	Status       *string      `json:"status,omitempty"`
}

// WorkExperience is an entry of the employment history.
type WorkExperience struct {
	Record
	Company          string   `json:"company"`
	Position         string   `json:"position"`
	Location         *string  `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	IsCurrent        bool     `json:"is_current"`
	Description      *string  `json:"description"`
	Achievements     *string  `json:"achievements"`
	Technologies     *string  `json:"technologies"`
	TechnologiesList []string `json:"technologies_list"`
	DisplayOrder     int      `json:"display_order"`
	Duration         *string  `json:"duration,omitempty"`
	Status           *string  `json:"status,omitempty"`
}

// Interest is a personal interest (book, film, sport...).
type Interest struct {
	Record
	Title           string           `json:"title"`
	Category        InterestCategory `json:"category"`
	CategoryDisplay string           `json:"category_display,omitempty"`
	Description     *string          `json:"description"`
	ImageURL        *string          `json:"image_url"`
	ExternalURL     *string          `json:"external_url"`
	DisplayOrder    int              `json:"display_order"`
	IsFeatured      bool             `json:"is_featured"`
}

// ContactInfo is the public contact card.
type ContactInfo struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Location       string            `json:"location,omitempty"`
	CollegeAddress string            `json:"college_address,omitempty"`
	HomeAddress    string            `json:"home_address,omitempty"`
	SocialMedia    map[string]string `json:"social_media,omitempty"`
	Availability   string            `json:"availability,omitempty"`
}

// PortfolioSummary aggregates counts and highlights of the portfolio sections.
type PortfolioSummary struct {
	EducationCount    int             `json:"education_count"`
	ExperienceCount   int             `json:"experience_count"`
	InterestsCount    int             `json:"interests_count"`
	CurrentEducation  *Education      `json:"current_education"`
	CurrentExperience *WorkExperience `json:"current_experience"`
	FeaturedInterests []Interest      `json:"featured_interests"`
}

type SkillStats struct {
	TotalSkills      int            `json:"total_skills"`
	FeaturedSkills   int            `json:"featured_skills"`
	CategoryStats    map[string]int `json:"category_stats"`
	ProficiencyStats map[string]int `json:"proficiency_stats"`
}

type ProjectStats struct {
	TotalProjects    int            `json:"total_projects"`
	FeaturedProjects int            `json:"featured_projects"`
	StatusStats      map[string]int `json:"status_stats"`
	TechnologyStats  map[string]int `json:"technology_stats"`
}

type BlogStats struct {
	TotalPosts     int        `json:"total_posts"`
	PublishedPosts int        `json:"published_posts"`
	DraftPosts     int        `json:"draft_posts"`
	TotalViews     int        `json:"total_views"`
	TotalLikes     int        `json:"total_likes"`
	PopularPosts   []BlogPost `json:"popular_posts"`
}

type ContactStats struct {
	TotalMessages    int       `json:"total_messages"`
	NewMessages      int       `json:"new_messages"`
	ReadMessages     int       `json:"read_messages"`
	RepliedMessages  int       `json:"replied_messages"`
	ArchivedMessages int       `json:"archived_messages"`
	RecentMessages   []Message `json:"recent_messages"`
}

// LikeResult is returned after liking a post.
type LikeResult struct {
	LikesCount int `json:"likes_count"`
}
