package resourcecache

import "github.com/goliatone/go-portfolio-client/cache"

// Query families. Reads key their entries under one of these; writes
// invalidate whole families.
const (
	FamilySkills          = "skills"
	FamilySkill           = "skill"
	FamilySkillCategories = "skill-categories"
	FamilySkillsStats     = "skills-stats"

	FamilyProjects        = "projects"
	FamilyProject         = "project"
	FamilyProjectStatuses = "project-statuses"
	FamilyProjectsStats   = "projects-stats"

	FamilyBlogPosts    = "blog-posts"
	FamilyBlogPost     = "blog-post"
	FamilyPostStatuses = "post-statuses"
	FamilyBlogStats    = "blog-stats"

	FamilyContactInfo  = "contact-info"
	FamilyMessages     = "messages"
	FamilyMessage      = "message"
	FamilyContactStats = "contact-stats"

	FamilyEducation          = "education"
	FamilyWorkExperience     = "work-experience"
	FamilyInterests          = "interests"
	FamilyInterest           = "interest"
	FamilyInterestCategories = "interest-categories"
	FamilyPortfolioSummary   = "portfolio-summary"

	FamilyUploadedFiles = "uploaded-files"
)

// Local cache keys.
const (
	LocalProfile     = "profile"
	LocalContactInfo = "contact_info"
)

// CriticalFamilies are fetched by Warm.
var CriticalFamilies = []string{
	FamilySkills,
	FamilyProjects,
	FamilyBlogPosts,
	FamilyPortfolioSummary,
}

// privateFamilies hold data only an authenticated admin can read. They are
// dropped whenever the session changes hands.
var privateFamilies = []string{
	FamilyMessages,
	FamilyMessage,
	FamilyContactStats,
}

// AllFamilies lists every family the decorators read through.
func AllFamilies() []string {
	return []string{
		FamilySkills, FamilySkill, FamilySkillCategories, FamilySkillsStats,
		FamilyProjects, FamilyProject, FamilyProjectStatuses, FamilyProjectsStats,
		FamilyBlogPosts, FamilyBlogPost, FamilyPostStatuses, FamilyBlogStats,
		FamilyContactInfo, FamilyMessages, FamilyMessage, FamilyContactStats,
		FamilyEducation, FamilyWorkExperience, FamilyInterests, FamilyInterest,
		FamilyInterestCategories, FamilyPortfolioSummary,
		FamilyUploadedFiles,
	}
}

// DefaultPolicies assigns a freshness policy to every family. Statistics
// and the inbox move fastest; enumerations and the contact card barely move.
func DefaultPolicies() map[string]cache.FamilyPolicy {
	policies := map[string]cache.FamilyPolicy{}
	set := func(p cache.FamilyPolicy, families ...string) {
		for _, f := range families {
			policies[f] = p
		}
	}

	set(cache.PolicyStats,
		FamilySkillsStats, FamilyProjectsStats, FamilyBlogStats, FamilyContactStats,
		FamilyMessages, FamilyMessage, FamilyUploadedFiles)
	set(cache.PolicyContent,
		FamilySkills, FamilySkill, FamilyProjects, FamilyProject,
		FamilyBlogPosts, FamilyBlogPost,
		FamilyEducation, FamilyWorkExperience, FamilyInterests, FamilyInterest,
		FamilyPortfolioSummary)
	set(cache.PolicyStatic,
		FamilySkillCategories, FamilyProjectStatuses, FamilyPostStatuses,
		FamilyInterestCategories, FamilyContactInfo)

	return policies
}
