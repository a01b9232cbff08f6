package journal

var availableMoods = []string{
	"Happy", "Sad", "Angry", "Anxious", "Excited", "Calm",
	"Tired", "Motivated", "Frustrated", "Content", "Overwhelmed", "Peaceful",
}

var suggestedTags = []string{
	"Work", "Family", "Health", "Travel", "Friends", "Hobbies",
	"Learning", "Goals", "Reflection", "Gratitude", "Challenges", "Achievements",
}

// AvailableMoods lists the moods offered to users.  Entries may still
// carry moods outside this list.
func AvailableMoods() []string { return append([]string(nil), availableMoods...) }

// SuggestedTags lists tags offered for quick selection.
func SuggestedTags() []string { return append([]string(nil), suggestedTags...) }
