package tutor

// Profile is a learner profile.
type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Level        string        `json:"level"`
	Timezone     string        `json:"timezone"`
	Preferences  Preferences   `json:"preferences"`
	Streak       Streak        `json:"streak"`
	Goals        []Goal        `json:"goals"`
	Achievements []Achievement `json:"achievements"`
}

type Preferences struct {
	TargetAccent       string   `json:"targetAccent"`
	DailyMinutesTarget int      `json:"dailyMinutesTarget"`
	FocusAreas         []string `json:"focusAreas"`
}

type Streak struct {
	Current     int    `json:"current"`
	Longest     int    `json:"longest"`
	LastStudyAt string `json:"lastStudyAt"`
}

type Goal struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Progress float64 `json:"progress"`
}

type Achievement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	EarnedAt string `json:"earnedAt"`
}

// Lesson is a past lesson, newest first in a history.
type Lesson struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Topic           string `json:"topic"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

// QuizResult is a past quiz score.
type QuizResult struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Level        string `json:"level"`
	Topic        string `json:"topic"`
	ScorePercent int    `json:"scorePercent"`
	Items        int    `json:"items"`
}

// Progress summarizes recent study activity.
type Progress struct {
	TotalMinutesThisWeek  int            `json:"totalMinutesThisWeek"`
	TotalMinutesThisMonth int            `json:"totalMinutesThisMonth"`
	WordsLearnedThisMonth int            `json:"wordsLearnedThisMonth"`
	GrammarFocusCounts    map[string]int `json:"grammarFocusCounts"`
	NextReviewDue         string         `json:"nextReviewDue"`
}

// Data is everything the tutor tools read.
type Data struct {
	Profile  Profile
	Lessons  []Lesson
	Quizzes  []QuizResult
	Progress Progress
}

// SampleData returns a fixed demo learner.
func SampleData() *Data {
	return &Data{
		Profile: Profile{
			ID:       "stu_12345",
			Name:     "Aisha Khan",
			Email:    "aisha.khan@example.com",
			Level:    "B1",
			Timezone: "America/Los_Angeles",
			Preferences: Preferences{
				TargetAccent:       "American",
				DailyMinutesTarget: 15,
				FocusAreas:         []string{"past simple", "pronunciation"},
			},
			Streak: Streak{Current: 12, Longest: 21, LastStudyAt: "2025-08-20T18:30:00.000Z"},
			Goals: []Goal{
				{ID: "goal_1", Title: "Speak 5 minutes daily", Progress: 0.7},
				{ID: "goal_2", Title: "Master past simple", Progress: 0.4},
				{ID: "goal_3", Title: "Add 50 new words this month", Progress: 0.5},
			},
			Achievements: []Achievement{
				{ID: "achv_1", Name: "7-Day Streak", EarnedAt: "2025-08-15"},
				{ID: "achv_2", Name: "First Quiz", EarnedAt: "2025-08-02"},
			},
		},
		Lessons: []Lesson{
			{ID: "lesson_1001", Date: "2025-08-20", Topic: "Daily routine", Type: "conversation", DurationMinutes: 12, Notes: "Practiced present simple; minor third-person -s errors"},
			{ID: "lesson_1000", Date: "2025-08-19", Topic: "Past weekend", Type: "roleplay", DurationMinutes: 10, Notes: "Corrected 'buyed' -> 'bought'"},
			{ID: "lesson_0999", Date: "2025-08-18", Topic: "Travel planning", Type: "conversation", DurationMinutes: 15, Notes: "Question forms: where/when/how"},
			{ID: "lesson_0998", Date: "2025-08-17", Topic: "Ordering food", Type: "roleplay", DurationMinutes: 14, Notes: "Polite requests: I'd like / Could I have"},
			{ID: "lesson_0997", Date: "2025-08-16", Topic: "Pronunciation /ɪ/ vs /iː/", Type: "drill", DurationMinutes: 9, Notes: "Minimal pairs: ship/sheep"},
		},
		Quizzes: []QuizResult{
			{ID: "quiz_501", Date: "2025-08-19", Level: "B1", Topic: "Past simple", ScorePercent: 80, Items: 5},
			{ID: "quiz_500", Date: "2025-08-12", Level: "A2", Topic: "Food and drink vocab", ScorePercent: 92, Items: 6},
		},
		Progress: Progress{
			TotalMinutesThisWeek:  60,
			TotalMinutesThisMonth: 220,
			WordsLearnedThisMonth: 28,
			GrammarFocusCounts:    map[string]int{"pastSimple": 3, "presentSimple": 1, "questionForms": 2},
			NextReviewDue:         "2025-08-21",
		},
	}
}
