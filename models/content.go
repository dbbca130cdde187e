package models

import "time"

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Challenge struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"client_id"`
	Slug                 string    `json:"slug"`
	InternalName         string    `json:"internal_name"`
	PublicTitle          *string   `json:"public_title"`
	ShowPublicTitle      bool      `json:"show_public_title"`
	Description          *string   `json:"description"`
	BrandColor           *string   `json:"brand_color"`
	SupportInfo          *string   `json:"support_info"`
	ContactInfo          *string   `json:"contact_info"`
	PasswordInstructions *string   `json:"password_instructions"`
	IsArchived           bool      `json:"is_archived"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Client *Client `json:"client,omitempty"`
}

// DisplayName is the public title when set, otherwise the internal name.
func (c Challenge) DisplayName() string {
	if c.PublicTitle != nil && *c.PublicTitle != "" {
		return *c.PublicTitle
	}
	return c.InternalName
}

type Assignment struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	InternalTitle    string    `json:"internal_title"`
	PublicTitle      *string   `json:"public_title"`
	Subtitle         *string   `json:"subtitle"`
	Instructions     *string   `json:"instructions"`
	InstructionsHTML *string   `json:"instructions_html"`
	Content          *string   `json:"content"`
	ContentHTML      *string   `json:"content_html"`
	MediaURL         *string   `json:"media_url"`
	VisualURL        *string   `json:"visual_url"`
	PasswordHash     *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (a Assignment) DisplayTitle() string {
	if a.PublicTitle != nil && *a.PublicTitle != "" {
		return *a.PublicTitle
	}
	return a.InternalTitle
}

func (a Assignment) RequiresPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

type Sprint struct {
	ID          string     `json:"id"`
	ChallengeID string     `json:"challenge_id"`
	Name        string     `json:"name"`
	Position    int        `json:"position"`
	StartsAt    *time.Time `json:"starts_at"`
}

type AssignmentUsage struct {
	ID           string     `json:"id"`
	ChallengeID  string     `json:"challenge_id"`
	AssignmentID string     `json:"assignment_id"`
	SprintID     *string    `json:"sprint_id"`
	Position     int        `json:"position"`
	ReleaseAt    *time.Time `json:"release_at"`

	Assignment *Assignment `json:"assignment,omitempty"`
}

// Released reports whether the usage is visible at now.
func (u AssignmentUsage) Released(now time.Time) bool {
	return u.ReleaseAt == nil || !u.ReleaseAt.After(now)
}

type ChallengeLabel struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Admin request bodies.

type ClientRequest struct {
	Name    string  `json:"name" binding:"required,max=200"`
	LogoURL *string `json:"logo_url" binding:"omitempty,url"`
}

type ChallengeRequest struct {
	ClientID             string  `json:"client_id" binding:"required"`
	Slug                 string  `json:"slug" binding:"omitempty,max=64"`
	InternalName         string  `json:"internal_name" binding:"required,max=200"`
	PublicTitle          *string `json:"public_title"`
	ShowPublicTitle      bool    `json:"show_public_title"`
	Description          *string `json:"description"`
	BrandColor           *string `json:"brand_color" binding:"omitempty,hexcolor"`
	SupportInfo          *string `json:"support_info"`
	ContactInfo          *string `json:"contact_info"`
	PasswordInstructions *string `json:"password_instructions"`
}

type AssignmentRequest struct {
	Slug             string  `json:"slug" binding:"omitempty,max=64"`
	InternalTitle    string  `json:"internal_title" binding:"required,max=200"`
	PublicTitle      *string `json:"public_title"`
	Subtitle         *string `json:"subtitle"`
	Instructions     *string `json:"instructions"`
	InstructionsHTML *string `json:"instructions_html"`
	Content          *string `json:"content"`
	ContentHTML      *string `json:"content_html"`
	MediaURL         *string `json:"media_url" binding:"omitempty,url"`
	VisualURL        *string `json:"visual_url" binding:"omitempty,url"`
	// Password sets a new password when non-empty; RemovePassword clears it.
	Password       string `json:"password"`
	RemovePassword bool   `json:"remove_password"`
}

type UsageRequest struct {
	AssignmentID string     `json:"assignment_id" binding:"required"`
	SprintID     *string    `json:"sprint_id"`
	Position     *int       `json:"position"`
	ReleaseAt    *time.Time `json:"release_at"`
}

type SprintRequest struct {
	Name     string     `json:"name" binding:"required,max=200"`
	Position int        `json:"position"`
	StartsAt *time.Time `json:"starts_at"`
}

type LabelInput struct {
	Key   string `json:"key" binding:"required,max=64"`
	Value string `json:"value" binding:"max=200"`
}

type LabelsRequest struct {
	Labels []LabelInput `json:"labels" binding:"required,dive"`
}

type UnlockRequest struct {
	Password string `json:"password" binding:"required"`
}
