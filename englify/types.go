package englify

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a JSON value that may arrive as a string or a number.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string { return string(t) }

type Performance struct {
	Point float64 `json:"point"`
	Coin  float64 `json:"coin"`
}

// Profile is the signed-in student.
type Profile struct {
	Firstname     string       `json:"firstname"`
	Level         string       `json:"level"`
	Performance   *Performance `json:"performance"`
	PaymentAccess int          `json:"payment_access"`
}

// PaymentActive reports whether the student has paid access.
func (p Profile) PaymentActive() bool { return p.PaymentAccess == 100 }

type Student struct {
	FullName string `json:"full_name"`
}

type Ranking struct {
	Student *Student `json:"student"`
	Points  float64  `json:"points"`
}

type SelfRanking struct {
	Position Text    `json:"position"`
	Points   float64 `json:"points"`
}

// Leaderboard is the ranking of one level.
type Leaderboard struct {
	List []Ranking    `json:"list"`
	Self *SelfRanking `json:"self"`
}

// Level is a course level.
type Level struct {
	Level string `json:"level"`
	Value Text   `json:"value"`
}

type ResourceLevel struct {
	Name     string `json:"name"`
	CEFRName string `json:"cefr_name"`
}

type Category struct {
	Name string `json:"name"`
}

// Resource is a podcast, movie or book.
type Resource struct {
	ID          Text           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Duration    Text           `json:"duration"`
	Level       *ResourceLevel `json:"level"`
	Category    *Category      `json:"category"`
	ViewsCount  int            `json:"views_count"`
	LikesCount  int            `json:"likes_count"`
}

func (r Resource) levelName() string {
	if r.Level == nil || r.Level.Name == "" {
		return "Unknown"
	}
	return r.Level.Name
}

func (r Resource) cefrName() string {
	if r.Level == nil || r.Level.CEFRName == "" {
		return "N/A"
	}
	return r.Level.CEFRName
}

func (r Resource) categoryName() string {
	if r.Category == nil || r.Category.Name == "" {
		return "General"
	}
	return r.Category.Name
}

// matchesLevel reports whether the resource suits a learner at level. Only
// the first word of level is compared, so "B1 Intermediate" matches "B1".
func (r Resource) matchesLevel(level string) bool {
	var itemLevel string
	if r.Level != nil {
		itemLevel = r.Level.CEFRName
		if itemLevel == "" {
			itemLevel = r.Level.Name
		}
	}
	short := ""
	if fields := strings.Fields(level); len(fields) > 0 {
		short = fields[0]
	}
	return strings.Contains(strings.ToLower(itemLevel), strings.ToLower(short))
}
