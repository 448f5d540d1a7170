package englify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/englify/tutorkit/tool"
)

// fakeAPI serves canned bodies by path and records request headers.
type fakeAPI struct {
	mu      sync.Mutex
	routes  map[string]string
	headers []http.Header
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Clone())
	body, ok := f.routes[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "missing", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func resources(n int, level string) string {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"id":       i + 1,
			"name":     fmt.Sprintf("Item %d", i+1),
			"level":    map[string]any{"name": level + " Level", "cefr_name": level},
			"category": map[string]any{"name": "Daily life"},
			"duration": "01:30:00",
		}
	}
	b, _ := json.Marshal(map[string]any{"result": items})
	return string(b)
}

func newTestTools(t *testing.T, routes map[string]string) (*Tools, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{routes: routes}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", APIToken: "tok", BearerToken: "bearer"},
		WithHTTPClient(srv.Client()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return NewTools(c), api
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewClient(Config{APIToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestClientHeadersAndErrors(t *testing.T) {
	tools, api := newTestTools(t, map[string]string{
		"/student/v1/profile": `{"result":{"firstname":"Aisha","level":"B1","performance":{"point":1200,"coin":35},"payment_access":100}}`,
		"/student/v1/level":   `{"data":[]}`,
	})

	t.Run("headers", func(t *testing.T) {
		_, err := tools.client.Profile(context.Background())
		require.NoError(t, err)
		h := api.headers[len(api.headers)-1]
		assert.Equal(t, "tok", h.Get("api-token"))
		assert.Equal(t, "Bearer bearer", h.Get("Authorization"))
	})

	t.Run("missing result", func(t *testing.T) {
		_, err := tools.client.Levels(context.Background())
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("status error", func(t *testing.T) {
		_, err := tools.client.Books(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.True(t, strings.HasPrefix(err.Error(), "API Error: 404 Not Found - missing"))
	})
}

func TestProfileTool(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/profile": `{"result":{"firstname":"Aisha","level":"B1","performance":{"point":1200,"coin":35},"payment_access":100}}`,
	})

	assert.Equal(t, "User Profile:\n- Name: Aisha\n- Level: B1\n- Points: 1200\n- Coins: 35\n- Payment Status: Active",
		tools.UserProfile(context.Background()))
}

func TestLeaderboardTool(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/ranking/3": `{"result":{
			"list":[
				{"student":{"full_name":"Ana"},"points":900},
				{"student":{"full_name":"Ben"},"points":850},
				{"student":{},"points":800},
				{"student":{"full_name":"Dee"},"points":700},
				{"student":{"full_name":"Eli"},"points":650},
				{"student":{"full_name":"Fay"},"points":600}
			],
			"self":{"position":14,"points":120}
		}}`,
	})

	out := tools.Leaderboard(context.Background(), 3)
	assert.Equal(t, "Leaderboard for Level 3:\n"+
		"Your Position: #14 with 120 points\n\n"+
		"Top 5 Students:\n"+
		"1. Ana - 900 points\n"+
		"2. Ben - 850 points\n"+
		"3. Unknown - 800 points\n"+
		"4. Dee - 700 points\n"+
		"5. Eli - 650 points\n", out)

	assert.Equal(t, "Failed to get leaderboard data. Please check your connection and try again.",
		tools.Leaderboard(context.Background(), 9))
	assert.Equal(t, "Error fetching leaderboard: API Error: 404 Not Found - missing\n",
		tools.Leaderboard(context.Background(), 2))
}

func TestLevelsTool(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/level": `{"result":[{"level":"Starter","value":1},{"level":"IELTS","value":"7"}]}`,
	})
	assert.Equal(t, "Available English Learning Levels:\n- Starter (Value: 1)\n- IELTS (Value: 7)\n",
		tools.Levels(context.Background()))
}

func TestCatalogTools(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/resource/movies": resources(12, "B1"),
		"/student/v1/resource/books":  `{"result":null}`,
	})

	out := tools.catalog(context.Background(), "movies", tools.client.Movies, true)
	assert.True(t, strings.HasPrefix(out, "Available Movies (12 total):\n\n1. \"Item 1\"\n   Level: B1 Level\n   Category: Daily life\n   Duration: 01:30:00\n\n"))
	assert.Contains(t, out, "10. \"Item 10\"")
	assert.NotContains(t, out, "Item 11")

	assert.Equal(t, "Unable to fetch books data. Please try again.",
		tools.catalog(context.Background(), "books", tools.client.Books, false))
}

func TestResourceDetailsTool(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/resource/movie/42": `{"result":{"id":42,"name":"The Trip","description":"Two friends travel.",
			"duration":"1h 40m","level":{"name":"Intermediate","cefr_name":"B1"},"views_count":10,"likes_count":3}}`,
	})

	assert.Equal(t, "Movie Details:\n\n"+
		"Title: \"The Trip\"\n"+
		"Level: Intermediate (B1)\n"+
		"Category: General\n"+
		"Description: Two friends travel.\n"+
		"Duration: 1h 40m\n"+
		"Views: 10\n"+
		"Likes: 3", tools.ResourceDetails(context.Background(), "movie", "42"))

	assert.Contains(t, tools.ResourceDetails(context.Background(), "podcast", "7"), "Error fetching podcast details")
	assert.Equal(t, "Failed to get resource details. Please check the ID and try again.",
		tools.ResourceDetails(context.Background(), "book", "1"))
}

func TestRecommendationsTool(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/profile":           `{"result":{"level":"B1 Intermediate"}}`,
		"/student/v1/resource/podcasts": resources(5, "B1"),
		"/student/v1/resource/movies":   resources(2, "C1"),
		"/student/v1/resource/books":    `{"result":null}`,
	})

	out := tools.Recommendations(context.Background(), "all", "")
	assert.Equal(t, "Personalized Recommendations for B1 Intermediate Level:\n\n"+
		"📻 Recommended Podcasts:\n"+
		"1. \"Item 1\" (B1 Level)\n"+
		"2. \"Item 2\" (B1 Level)\n"+
		"3. \"Item 3\" (B1 Level)\n\n", out)

	out = tools.Recommendations(context.Background(), "movies", "A2")
	assert.Equal(t, "Personalized Recommendations for A2 Level:\n\n"+
		"No specific recommendations found for your level at the moment. Try browsing all available content!", out)
}

func TestRegister(t *testing.T) {
	tools, _ := newTestTools(t, map[string]string{
		"/student/v1/resource/podcasts": resources(1, "A2"),
	})
	reg := tool.NewRegistry()
	require.NoError(t, tools.Register(reg))
	assert.Equal(t, []string{
		"getUserProfile", "getLeaderboard", "getLevels", "getPodcasts",
		"getMovies", "getBooks", "getResourceDetails", "getRecommendations",
	}, reg.Names())

	res := reg.Execute(context.Background(), "getPodcasts", nil)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Value, "Available Podcasts (1 total)")

	res = reg.Execute(context.Background(), "getProfile", nil)
	assert.Error(t, res.Err)
}
