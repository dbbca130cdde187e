package models

import "time"

// DateRange is inclusive on both ends.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type OverviewStats struct {
	TotalChallengeViews  int `json:"totalChallengeViews"`
	TotalAssignmentViews int `json:"totalAssignmentViews"`
	TotalMediaPlays      int `json:"totalMediaPlays"`
	TotalCompletions     int `json:"totalCompletions"`
	UniqueSessions       int `json:"uniqueSessions"`
}

type ChallengeStats struct {
	ChallengeID     string `json:"challengeId"`
	ChallengeName   string `json:"challengeName"`
	ClientName      string `json:"clientName"`
	TotalViews      int    `json:"totalViews"`
	UniqueSessions  int    `json:"uniqueSessions"`
	AssignmentViews int    `json:"assignmentViews"`
	MediaPlays      int    `json:"mediaPlays"`
	Completions     int    `json:"completions"`
}

type AssignmentStats struct {
	AssignmentID      string `json:"assignmentId"`
	AssignmentTitle   string `json:"assignmentTitle"`
	Views             int    `json:"views"`
	UniqueSessions    int    `json:"uniqueSessions"`
	MediaPlays        int    `json:"mediaPlays"`
	Completions       int    `json:"completions"`
	PasswordAttempts  int    `json:"passwordAttempts"`
	PasswordSuccesses int    `json:"passwordSuccesses"`
}

type DailyCount struct {
	Date           string `json:"date"`
	Views          int    `json:"views"`
	UniqueSessions int    `json:"uniqueSessions"`
}

type DashboardStats struct {
	TotalClients     int `json:"totalClients"`
	ActiveChallenges int `json:"activeChallenges"`
	TotalAssignments int `json:"totalAssignments"`
	ThisMonthViews   int `json:"thisMonthViews"`
}

type ActivityType string

const (
	ActivityClientCreated     ActivityType = "client_created"
	ActivityChallengeCreated  ActivityType = "challenge_created"
	ActivityChallengeArchived ActivityType = "challenge_archived"
	ActivityAssignmentCreated ActivityType = "assignment_created"
)

type RecentActivity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Title     string       `json:"title"`
	Timestamp time.Time    `json:"timestamp"`
}

// NameIndex resolves ids from the event log to display names.
type NameIndex struct {
	Challenges  map[string]Challenge
	Assignments map[string]Assignment
	Clients     map[string]Client
}
