package englify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/tool"
)

const listLimit = 10

// Tools exposes the catalog to the supervisor. Every tool answers with
// readable text; API failures become a message for the backend rather
// than a handler error.
type Tools struct {
	client *Client
}

// NewTools creates the catalog tools backed by c.
func NewTools(c *Client) *Tools {
	return &Tools{client: c}
}

// Register adds every catalog tool to reg.
func (t *Tools) Register(reg *tool.Registry) error {
	for _, r := range t.Registrations() {
		if err := reg.Register(r.Spec, r.Handler); err != nil {
			return err
		}
	}
	return nil
}

type leaderboardArgs struct {
	Level float64 `json:"level"`
}

type resourceArgs struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
}

type recommendationArgs struct {
	ContentType string  `json:"contentType"`
	UserLevel   *string `json:"userLevel"`
}

// Registrations returns the catalog tools.
func (t *Tools) Registrations() []tool.Registration {
	return []tool.Registration{
		tool.WithHandler(ai.ToolSpec{
			Name: "getUserProfile",
			Description: "Get the current user profile including level, points, payment status, and preferences. " +
				"Use this to understand the user's current learning status.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return t.UserProfile(ctx), nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "getLeaderboard",
			Description: "Get leaderboard ranking for a specific level. Use this when users want to see their ranking or compare with other students.",
			Parameters: map[string]ai.Param{
				"level": {
					Type:        ai.ParamNumber,
					Description: "Level number: 1=Starter, 2=Beginner, 3=Elementary, 4=Pre-Intermediate, 5=Intermediate, 6=Upper-Intermediate, 7=IELTS",
					Required:    true,
				},
			},
		}, func(ctx context.Context, args leaderboardArgs) (any, error) {
			return t.Leaderboard(ctx, args.Level), nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getLevels",
			Description: "Get all available English learning levels. Use this to explain level progression to users.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return t.Levels(ctx), nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getPodcasts",
			Description: "Get available podcasts for English listening practice. Use this when users want audio content.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return t.catalog(ctx, "podcasts", t.client.Podcasts, false), nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getMovies",
			Description: "Get available movies for English learning. Use this when users want video content for practice.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return t.catalog(ctx, "movies", t.client.Movies, true), nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getBooks",
			Description: "Get available books for English reading practice. Use this when users want reading materials.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return t.catalog(ctx, "books", t.client.Books, false), nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "getResourceDetails",
			Description: "Get detailed information about a specific podcast or movie. Use this when users ask about a particular content item.",
			Parameters: map[string]ai.Param{
				"resourceType": {Type: ai.ParamString, Description: "Type of resource to get details for", Enum: []string{"podcast", "movie"}, Required: true},
				"resourceId":   {Type: ai.ParamString, Description: "ID of the resource", Required: true},
			},
		}, func(ctx context.Context, args resourceArgs) (any, error) {
			return t.ResourceDetails(ctx, args.ResourceType, args.ResourceID), nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "getRecommendations",
			Description: "Get personalized content recommendations based on user level. Use this to suggest appropriate learning materials.",
			Parameters: map[string]ai.Param{
				"contentType": {Type: ai.ParamString, Description: "Type of content to recommend", Enum: []string{"podcasts", "movies", "books", "all"}, Required: true},
				"userLevel":   {Type: ai.ParamString, Description: "User current level (omit to fetch from profile automatically)"},
			},
		}, func(ctx context.Context, args recommendationArgs) (any, error) {
			level := ""
			if args.UserLevel != nil {
				level = *args.UserLevel
			}
			return t.Recommendations(ctx, args.ContentType, level), nil
		}),
	}
}

// UserProfile describes the signed-in student.
func (t *Tools) UserProfile(ctx context.Context) string {
	p, err := t.client.Profile(ctx)
	if errors.Is(err, ErrNoResult) {
		return "Unable to fetch user profile. Please try again."
	}
	if err != nil {
		return "Error fetching user profile: " + err.Error()
	}

	var points, coins float64
	if p.Performance != nil {
		points, coins = p.Performance.Point, p.Performance.Coin
	}
	status := "Inactive"
	if p.PaymentActive() {
		status = "Active"
	}
	return fmt.Sprintf("User Profile:\n- Name: %s\n- Level: %s\n- Points: %s\n- Coins: %s\n- Payment Status: %s",
		orDefault(p.Firstname, "Unknown"), orDefault(p.Level, "Unknown"), num(points), num(coins), status)
}

// Leaderboard describes the top five students of a level and the
// student's own position.
func (t *Tools) Leaderboard(ctx context.Context, level float64) string {
	if level < 1 || level > 7 || level != float64(int(level)) {
		return "Failed to get leaderboard data. Please check your connection and try again."
	}
	lb, err := t.client.Leaderboard(ctx, int(level))
	if errors.Is(err, ErrNoResult) {
		return "Unable to fetch leaderboard data. Please try again."
	}
	if err != nil {
		return "Error fetching leaderboard: " + err.Error()
	}

	position, points := "Not ranked", float64(0)
	if lb.Self != nil {
		if lb.Self.Position != "" && lb.Self.Position != "0" {
			position = lb.Self.Position.String()
		}
		points = lb.Self.Points
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard for Level %d:\n", int(level))
	fmt.Fprintf(&b, "Your Position: #%s with %s points\n\n", position, num(points))
	b.WriteString("Top 5 Students:\n")
	for i, r := range lb.List {
		if i == 5 {
			break
		}
		name := "Unknown"
		if r.Student != nil && r.Student.FullName != "" {
			name = r.Student.FullName
		}
		fmt.Fprintf(&b, "%d. %s - %s points\n", i+1, name, num(r.Points))
	}
	return b.String()
}

// Levels lists the course levels.
func (t *Tools) Levels(ctx context.Context) string {
	levels, err := t.client.Levels(ctx)
	if errors.Is(err, ErrNoResult) {
		return "Unable to fetch levels data. Please try again."
	}
	if err != nil {
		return "Error fetching levels: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("Available English Learning Levels:\n")
	for _, l := range levels {
		fmt.Fprintf(&b, "- %s (Value: %s)\n", l.Level, l.Value)
	}
	return b.String()
}

// catalog lists the first ten resources of a kind.
func (t *Tools) catalog(ctx context.Context, kind string, fetch func(context.Context) ([]Resource, error), withDuration bool) string {
	items, err := fetch(ctx)
	if errors.Is(err, ErrNoResult) {
		return fmt.Sprintf("Unable to fetch %s data. Please try again.", kind)
	}
	if err != nil {
		return fmt.Sprintf("Error fetching %s: %v", kind, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available %s (%d total):\n\n", titleCase(kind), len(items))
	for i, r := range items {
		if i == listLimit {
			break
		}
		fmt.Fprintf(&b, "%d. \"%s\"\n", i+1, r.Name)
		fmt.Fprintf(&b, "   Level: %s\n", r.levelName())
		fmt.Fprintf(&b, "   Category: %s\n", r.categoryName())
		if withDuration {
			fmt.Fprintf(&b, "   Duration: %s\n", orDefault(r.Duration.String(), "Unknown"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ResourceDetails describes one podcast or movie.
func (t *Tools) ResourceDetails(ctx context.Context, kind, id string) string {
	var (
		item *Resource
		err  error
	)
	switch {
	case id == "":
		return "Failed to get resource details. Please check the ID and try again."
	case kind == "podcast":
		item, err = t.client.Podcast(ctx, id)
	case kind == "movie":
		item, err = t.client.Movie(ctx, id)
	default:
		return "Failed to get resource details. Please check the ID and try again."
	}
	if errors.Is(err, ErrNoResult) {
		return fmt.Sprintf("Unable to find %s with ID %s. Please check the ID and try again.", kind, id)
	}
	if err != nil {
		return fmt.Sprintf("Error fetching %s details: %v", kind, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Details:\n\n", titleCase(kind))
	fmt.Fprintf(&b, "Title: \"%s\"\n", orDefault(item.Name, "Unknown"))
	fmt.Fprintf(&b, "Level: %s (%s)\n", item.levelName(), item.cefrName())
	fmt.Fprintf(&b, "Category: %s\n", item.categoryName())
	if item.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", item.Description)
	}
	if kind == "movie" && item.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", item.Duration)
	}
	fmt.Fprintf(&b, "Views: %d\n", item.ViewsCount)
	fmt.Fprintf(&b, "Likes: %d", item.LikesCount)
	return b.String()
}

// Recommendations suggests up to three resources per kind matching the
// learner's level. An empty level is read from the profile.
func (t *Tools) Recommendations(ctx context.Context, contentType, level string) string {
	if level == "" {
		p, err := t.client.Profile(ctx)
		if err != nil && !errors.Is(err, ErrNoResult) {
			return "Error getting recommendations: " + err.Error()
		}
		if p != nil {
			level = p.Level
		}
	}
	if level == "" {
		return "Unable to determine user level. Please try again or specify a level."
	}

	header := fmt.Sprintf("Personalized Recommendations for %s Level:\n\n", level)
	var b strings.Builder
	b.WriteString(header)

	sections := []struct {
		kind  string
		title string
		fetch func(context.Context) ([]Resource, error)
	}{
		{"podcasts", "📻 Recommended Podcasts:", t.client.Podcasts},
		{"movies", "🎬 Recommended Movies:", t.client.Movies},
		{"books", "📚 Recommended Books:", t.client.Books},
	}
	for _, s := range sections {
		if contentType != s.kind && contentType != "all" {
			continue
		}
		items, err := s.fetch(ctx)
		if errors.Is(err, ErrNoResult) {
			continue
		}
		if err != nil {
			return "Error getting recommendations: " + err.Error()
		}

		var picked []Resource
		for _, r := range items {
			if r.matchesLevel(level) {
				picked = append(picked, r)
				if len(picked) == 3 {
					break
				}
			}
		}
		if len(picked) == 0 {
			continue
		}
		b.WriteString(s.title + "\n")
		for i, r := range picked {
			fmt.Fprintf(&b, "%d. \"%s\" (%s)\n", i+1, r.Name, r.levelName())
		}
		b.WriteString("\n")
	}

	if b.Len() == len(header) {
		b.WriteString("No specific recommendations found for your level at the moment. Try browsing all available content!")
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
