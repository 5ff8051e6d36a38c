package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio-client/models"
)

type pageFlags struct {
	page     int
	perPage  int
	featured bool
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.perPage, "per-page", 0, "items per page")
	cmd.Flags().BoolVar(&p.featured, "featured", false, "only featured items (--featured=false for the others)")
}

// featuredFilter is nil unless --featured was given, so that an absent
// flag sends no filter at all.
func (p *pageFlags) featuredFilter(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("featured") {
		return nil
	}
	return models.Bool(p.featured)
}

func (a *App) newSkillsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Read skills",
	}

	var pf pageFlags
	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			res, err := c.Services().Skills.List(cmd.Context(), models.SkillListOptions{
				Category: models.SkillCategory(category),
				Featured: pf.featuredFilter(cmd),
				Page:     pf.page,
				PerPage:  pf.perPage,
			})
			if err != nil {
				return err
			}

			page := res.Data
			return a.formatter(cmd).Success(page, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tLEVEL\tFEATURED")
				for _, s := range page.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Category, s.ProficiencyLevel, yesNo(s.IsFeatured))
				}
				writePagination(tw, page.Pagination)
				return tw.Flush()
			})
		},
	}
	pf.register(list)
	list.Flags().StringVar(&category, "category", "", "technical, soft, language or certification")

	cmd.AddCommand(list)
	return cmd
}

func (a *App) newProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Read projects",
	}

	var pf pageFlags
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			res, err := c.Services().Projects.List(cmd.Context(), models.ProjectListOptions{
				Status:   models.ProjectStatus(status),
				Featured: pf.featuredFilter(cmd),
				Page:     pf.page,
				PerPage:  pf.perPage,
			})
			if err != nil {
				return err
			}

			page := res.Data
			return a.formatter(cmd).Success(page, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tTECHNOLOGIES\tFEATURED")
				for _, p := range page.Items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Status, strings.Join(p.TechnologiesList, ", "), yesNo(p.IsFeatured))
				}
				writePagination(tw, page.Pagination)
				return tw.Flush()
			})
		},
	}
	pf.register(list)
	list.Flags().StringVar(&status, "status", "", "completed, in_progress or planned")

	cmd.AddCommand(list)
	return cmd
}

func (a *App) newBlogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blog",
		Short: "Read and write blog posts",
	}
	cmd.AddCommand(a.newBlogGetCommand())
	cmd.AddCommand(a.newBlogCreateCommand())
	return cmd
}

func (a *App) newBlogGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Show a post by its slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			res, err := c.Services().Blog.GetBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			post := res.Data
			return a.formatter(cmd).Success(post, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintf(tw, "Title\t%s\n", post.Title)
				fmt.Fprintf(tw, "Slug\t%s\n", post.Slug)
				fmt.Fprintf(tw, "Status\t%s\n", post.Status)
				if post.PublishedAt != nil {
					fmt.Fprintf(tw, "Published\t%s\n", *post.PublishedAt)
				}
				fmt.Fprintf(tw, "Views\t%d\n", post.ViewsCount)
				fmt.Fprintf(tw, "Likes\t%d\n", post.LikesCount)
				if err := tw.Flush(); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "\n%s\n", post.Content)
				return err
			})
		},
	}
}

func (a *App) newBlogCreateCommand() *cobra.Command {
	var title, slug, content, contentFile, excerpt, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long:  "Create a post. Without --slug the slug is derived from the title.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentFile != "" {
				raw, err := os.ReadFile(contentFile)
				if err != nil {
					return WrapExitError(ExitCommandError, "read content file", err)
				}
				content = string(raw)
			}
			if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
				return NewExitError(ExitCommandError, "title and content are required")
			}
			if slug == "" {
				slug = Slugify(title)
			}

			in := models.PostInput{
				Title:   title,
				Slug:    slug,
				Content: content,
				Status:  models.PostStatus(status),
			}
			if excerpt != "" {
				in.Excerpt = models.String(excerpt)
			}

			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			res, err := c.Services().Blog.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			post := res.Data
			return a.formatter(cmd).Success(post, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created post #%d (%s)\n", post.ID, post.Slug)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&slug, "slug", "", "post slug")
	cmd.Flags().StringVar(&content, "content", "", "post body")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read the post body from a file")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&status, "status", string(models.PostDraft), "draft, published or archived")
	return cmd
}

func writePagination(w io.Writer, p models.Pagination) {
	if p.Pages == 0 && p.Total == 0 {
		return
	}
	fmt.Fprintf(w, "\npage %d of %d, %d total\n", p.Page, p.Pages, p.Total)
}
