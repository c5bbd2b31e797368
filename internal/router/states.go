package router

import "github.com/AndreyChufelin/kbpanel/internal/content"

// DefaultOtherwise is where unmatched panel URLs land.
const DefaultOtherwise = "/panel/areas"

const (
	StateLogin            = "login"
	StatePanel            = "panel"
	StateAreas            = "panel.areas"
	StateSubjects         = "panel.subjects"
	StatePosts            = "panel.posts"
	StatePost             = "panel.post"
	StateContributions    = "panel.contributions"
	StateAddContribution  = "panel.addContribution"
	StateEditContribution = "panel.editContribution"
)

func contentView(c content.Resolver, template, controller string) map[string]View {
	return map[string]View{
		"content": {Template: c.URL(template), Controller: controller},
	}
}

// DefaultStates declares the admin panel: a login page and an abstract panel
// shell (header, side navigation, content area) whose children only replace
// the content area.
func DefaultStates(c content.Resolver) []State {
	return []State{
		{
			Name: StateLogin,
			URL:  "/login",
			Views: map[string]View{
				"": {Template: c.URL("angular/views/login/main.html"), Controller: "AuthCtrl"},
			},
		},
		{
			Name:     StatePanel,
			URL:      "/panel",
			Abstract: true,
			Views: map[string]View{
				"":              {Template: c.URL("angular/views/panel/main.html")},
				"header@panel":  {Template: c.URL("angular/views/panel/header.html")},
				"sidenav@panel": {Template: c.URL("angular/views/panel/sidenav.html")},
			},
		},
		{
			Name:  StateAreas,
			URL:   "/areas",
			Views: contentView(c, "angular/views/catalogues/areas.html", "AreaCtrl"),
		},
		{
			Name:  StateSubjects,
			URL:   "/areas/:areaId/subjects",
			Views: contentView(c, "angular/views/catalogues/subjects.html", "SubjectCtrl"),
		},
		{
			Name:  StatePosts,
			URL:   "/areas/:areaId/subjects/:subjectId/posts",
			Views: contentView(c, "angular/views/catalogues/posts.html", "PostsCtrl"),
		},
		{
			Name:  StatePost,
			URL:   "/areas/:areaId/subjects/:subjectId/posts/:id",
			Views: contentView(c, "angular/views/catalogues/post.html", "PostCtrl"),
		},
		{
			Name:  StateContributions,
			URL:   "/contributions",
			Views: contentView(c, "angular/views/contributions/list.html", "ContributionsCtrl"),
		},
		{
			Name:  StateAddContribution,
			URL:   "/add-contribution",
			Views: contentView(c, "angular/views/contributions/create.html", "CreateContributionCtrl"),
		},
		{
			Name:  StateEditContribution,
			URL:   "/edit-contribution/:postId",
			Views: contentView(c, "angular/views/contributions/create.html", "EditContributionCtrl"),
		},
	}
}

// NewDefaultTable builds the panel's state table.
func NewDefaultTable(c content.Resolver) (*Table, error) {
	return NewTable(DefaultOtherwise, DefaultStates(c)...)
}
