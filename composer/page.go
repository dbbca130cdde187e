// Package composer turns challenge and assignment records into public page models.
package composer

import (
	"time"

	"companychallenges/api/models"
)

type BlockKind string

const (
	BlockInstructions BlockKind = "instructions"
	BlockContent      BlockKind = "content"
	BlockImage        BlockKind = "image"
	BlockVideo        BlockKind = "video"
)

type Layout string

const (
	LayoutTwoColumn    Layout = "two_column"
	LayoutSingleColumn Layout = "single_column"
)

type Block struct {
	Kind  BlockKind `json:"kind"`
	HTML  string    `json:"html,omitempty"`
	URL   string    `json:"url,omitempty"`
	Embed *Embed    `json:"embed,omitempty"`
}

// Body is the unlocked part of an assignment page. In single-column layout
// every block is in Left.
type Body struct {
	Layout Layout  `json:"layout"`
	Left   []Block `json:"left"`
	Right  []Block `json:"right"`
}

// ComposeBody lays out an assignment. Instructions go left; media (or the
// visual when there is no media) and content go right. Two columns are used
// only when both sides have something to show.
func ComposeBody(a *models.Assignment) Body {
	var left, right []Block

	if h := richText(a.InstructionsHTML, a.Instructions); h != "" {
		left = append(left, Block{Kind: BlockInstructions, HTML: h})
	}

	switch {
	case a.MediaURL != nil && *a.MediaURL != "":
		embed := ClassifyMedia(*a.MediaURL)
		right = append(right, Block{Kind: BlockVideo, URL: *a.MediaURL, Embed: &embed})
	case a.VisualURL != nil && *a.VisualURL != "":
		right = append(right, Block{Kind: BlockImage, URL: *a.VisualURL})
	}

	if h := richText(a.ContentHTML, a.Content); h != "" {
		right = append(right, Block{Kind: BlockContent, HTML: h})
	}

	if len(left) > 0 && len(right) > 0 {
		return Body{Layout: LayoutTwoColumn, Left: left, Right: right}
	}
	return Body{Layout: LayoutSingleColumn, Left: append(left, right...), Right: []Block{}}
}

// MediaType is the provider reported with media_play, or "" without media.
func MediaType(a *models.Assignment) string {
	if a.MediaURL == nil || *a.MediaURL == "" {
		return ""
	}
	return ClassifyMedia(*a.MediaURL).Provider
}

type Branding struct {
	ClientName string  `json:"client_name"`
	LogoURL    *string `json:"logo_url"`
	BrandColor *string `json:"brand_color"`
}

type Support struct {
	SupportInfo          *string `json:"support_info"`
	ContactInfo          *string `json:"contact_info"`
	PasswordInstructions *string `json:"password_instructions"`
}

func brandingOf(ch *models.Challenge) Branding {
	b := Branding{BrandColor: ch.BrandColor}
	if ch.Client != nil {
		b.ClientName = ch.Client.Name
		b.LogoURL = ch.Client.LogoURL
	}
	return b
}

func supportOf(ch *models.Challenge) Support {
	return Support{
		SupportInfo:          ch.SupportInfo,
		ContactInfo:          ch.ContactInfo,
		PasswordInstructions: ch.PasswordInstructions,
	}
}

// ChallengeTitle is the public title when enabled, otherwise the client name.
func ChallengeTitle(ch *models.Challenge) string {
	if ch.ShowPublicTitle && ch.PublicTitle != nil && *ch.PublicTitle != "" {
		return *ch.PublicTitle
	}
	if ch.Client != nil {
		return ch.Client.Name
	}
	return ch.InternalName
}

type AssignmentCard struct {
	ID               string  `json:"id"`
	UsageID          string  `json:"usage_id"`
	Slug             string  `json:"slug"`
	Title            string  `json:"title"`
	Subtitle         *string `json:"subtitle"`
	Position         int     `json:"position"`
	SprintID         *string `json:"sprint_id"`
	RequiresPassword bool    `json:"requires_password"`
}

type ChallengePage struct {
	ID              string                  `json:"id"`
	ClientID        string                  `json:"client_id"`
	Slug            string                  `json:"slug"`
	Title           string                  `json:"title"`
	DescriptionHTML string                  `json:"description_html,omitempty"`
	Branding        Branding                `json:"branding"`
	Support         Support                 `json:"support"`
	Assignments     []AssignmentCard        `json:"assignments"`
	PendingCount    int                     `json:"pending_count"`
	NextRelease     *time.Time              `json:"next_release,omitempty"`
	Labels          []models.ChallengeLabel `json:"labels"`
}

// ComposeChallengePage lists released assignments in usage order and counts
// the ones still scheduled.
func ComposeChallengePage(ch *models.Challenge, usages []models.AssignmentUsage, labels []models.ChallengeLabel, now time.Time) ChallengePage {
	page := ChallengePage{
		ID:              ch.ID,
		ClientID:        ch.ClientID,
		Slug:            ch.Slug,
		Title:           ChallengeTitle(ch),
		DescriptionHTML: richText(nil, ch.Description),
		Branding:        brandingOf(ch),
		Support:         supportOf(ch),
		Assignments:     []AssignmentCard{},
		Labels:          labels,
	}
	if page.Labels == nil {
		page.Labels = []models.ChallengeLabel{}
	}

	for _, u := range usages {
		if u.Assignment == nil {
			continue
		}
		if !u.Released(now) {
			page.PendingCount++
			if page.NextRelease == nil || u.ReleaseAt.Before(*page.NextRelease) {
				page.NextRelease = u.ReleaseAt
			}
			continue
		}
		page.Assignments = append(page.Assignments, AssignmentCard{
			ID:               u.Assignment.ID,
			UsageID:          u.ID,
			Slug:             u.Assignment.Slug,
			Title:            u.Assignment.DisplayTitle(),
			Subtitle:         u.Assignment.Subtitle,
			Position:         u.Position,
			SprintID:         u.SprintID,
			RequiresPassword: u.Assignment.RequiresPassword(),
		})
	}
	return page
}

// NavContext places an assignment inside one challenge.
type NavContext struct {
	ChallengeID    string   `json:"challenge_id"`
	ChallengeSlug  string   `json:"challenge_slug"`
	ChallengeTitle string   `json:"challenge_title"`
	ClientID       string   `json:"client_id"`
	UsageID        string   `json:"usage_id"`
	SprintID       *string  `json:"sprint_id"`
	BackURL        string   `json:"back_url"`
	PrevSlug       string   `json:"prev_slug,omitempty"`
	NextSlug       string   `json:"next_slug,omitempty"`
	Branding       Branding `json:"branding"`
	Support        Support  `json:"support"`

	release *time.Time
}

// ResolveNav builds the navigation context for usage within ch. siblings are
// the challenge's usages in position order; only released ones are linked.
func ResolveNav(ch *models.Challenge, usage models.AssignmentUsage, siblings []models.AssignmentUsage, now time.Time) *NavContext {
	nav := &NavContext{
		ChallengeID:    ch.ID,
		ChallengeSlug:  ch.Slug,
		ChallengeTitle: ChallengeTitle(ch),
		ClientID:       ch.ClientID,
		UsageID:        usage.ID,
		SprintID:       usage.SprintID,
		BackURL:        "/c/" + ch.Slug,
		Branding:       brandingOf(ch),
		Support:        supportOf(ch),
		release:        usage.ReleaseAt,
	}

	var released []models.AssignmentUsage
	for _, u := range siblings {
		if u.Assignment != nil && u.Released(now) {
			released = append(released, u)
		}
	}
	for i, u := range released {
		if u.ID != usage.ID {
			continue
		}
		if i > 0 {
			nav.PrevSlug = released[i-1].Assignment.Slug
		}
		if i+1 < len(released) {
			nav.NextSlug = released[i+1].Assignment.Slug
		}
	}
	return nav
}

type AssignmentPage struct {
	ID               string      `json:"id"`
	Slug             string      `json:"slug"`
	Title            string      `json:"title"`
	Subtitle         *string     `json:"subtitle"`
	RequiresPassword bool        `json:"requires_password"`
	Locked           bool        `json:"locked"`
	Released         bool        `json:"released"`
	ReleaseAt        *time.Time  `json:"release_at,omitempty"`
	MediaType        string      `json:"media_type,omitempty"`
	Body             *Body       `json:"body,omitempty"`
	Navigation       *NavContext `json:"navigation"`
}

// Trackable reports whether viewing this page should record an assignment view.
func (p AssignmentPage) Trackable() bool {
	return p.Navigation != nil && p.Released && !p.Locked
}

// ComposeAssignmentPage hides the body until the assignment is released and
// unlocked. nav may be nil when the assignment is opened outside a challenge.
func ComposeAssignmentPage(a *models.Assignment, nav *NavContext, unlocked bool, now time.Time) AssignmentPage {
	page := AssignmentPage{
		ID:               a.ID,
		Slug:             a.Slug,
		Title:            a.DisplayTitle(),
		Subtitle:         a.Subtitle,
		RequiresPassword: a.RequiresPassword(),
		Locked:           !unlocked,
		Released:         true,
		Navigation:       nav,
	}

	if nav != nil && nav.release != nil && nav.release.After(now) {
		page.Released = false
		page.ReleaseAt = nav.release
		return page
	}
	if page.Locked {
		return page
	}

	body := ComposeBody(a)
	page.Body = &body
	page.MediaType = MediaType(a)
	return page
}
