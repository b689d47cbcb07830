// Package classifier assigns an activity category and mood to free text
// (photo captions and filenames) using a fixed keyword table. It is a plain
// lookup, not a model: the table is scanned in a fixed order and the first
// category with a matching keyword wins.
package classifier

import (
	"strings"
	"time"
)

// DefaultActivity is returned when no keyword matches.
const DefaultActivity = "play"

// DefaultMood is returned when no mood keyword matches.
const DefaultMood = "happy"

// Confidence is the fixed score reported for keyword matches.
const Confidence = 0.95

type entry struct {
	category string
	keywords []string
}

// Scan order is fixed so classification is deterministic when text matches
// keywords from more than one category.
var activityTable = []entry{
	{"meal", []string{"eating", "lunch", "snack", "food", "dining", "breakfast", "dinner"}},
	{"nap", []string{"sleeping", "nap", "rest", "bed", "tired"}},
	{"play", []string{"playing", "toys", "blocks", "playground", "fun", "game"}},
	{"learning", []string{"reading", "book", "learning", "classroom", "lesson", "abc"}},
	{"outdoor", []string{"outside", "playground", "park", "garden", "nature"}},
	{"art", []string{"painting", "drawing", "craft", "art", "creative", "coloring"}},
}

var moodTable = []entry{
	{"happy", []string{"smiling", "laughing", "joyful", "excited"}},
	{"calm", []string{"peaceful", "relaxed", "quiet", "content"}},
	{"focused", []string{"concentrating", "attentive", "engaged"}},
	{"tired", []string{"sleepy", "yawning", "drowsy"}},
}

// Activity returns the activity category for the given text. It always
// returns exactly one category; text with no recognizable keyword maps to
// DefaultActivity.
func Activity(text string) string {
	return match(activityTable, text, DefaultActivity)
}

// Mood returns the detected mood for the given text, or DefaultMood.
func Mood(text string) string {
	return match(moodTable, text, DefaultMood)
}

// ActivityCategories lists the categories Activity can return, in scan order,
// excluding the default.
func ActivityCategories() []string {
	categories := make([]string, len(activityTable))
	for i, e := range activityTable {
		categories[i] = e.category
	}
	return categories
}

// TimeOfDayActivity guesses an activity from the capture time when the text
// gave no signal: late morning is meal time, early afternoon is nap time.
// The second return is false outside those windows.
func TimeOfDayActivity(t time.Time) (string, bool) {
	switch hour := t.Hour(); {
	case hour >= 11 && hour < 13:
		return "meal", true
	case hour >= 13 && hour < 15:
		return "nap", true
	default:
		return "", false
	}
}

func match(table []entry, text, fallback string) string {
	lower := strings.ToLower(text)
	for _, e := range table {
		for _, keyword := range e.keywords {
			if strings.Contains(lower, keyword) {
				return e.category
			}
		}
	}
	return fallback
}
