package services

import "github.com/goliatone/go-portfolio-client/session"

// Set groups one service per resource family.
type Set struct {
	Auth      Auth
	Skills    Skills
	Projects  Projects
	Blog      Blog
	Contact   Contact
	Portfolio Portfolio
	Uploads   Uploads
}

// NewSet builds every service over the same API.
func NewSet(api API, sess *session.Session, policy UploadPolicy) Set {
	return Set{
		Auth:      NewAuth(api, sess),
		Skills:    NewSkills(api),
		Projects:  NewProjects(api),
		Blog:      NewBlog(api),
		Contact:   NewContact(api),
		Portfolio: NewPortfolio(api),
		Uploads:   NewUploads(api, policy),
	}
}
