package payload

// Priority is a Redmine issue priority id.
type Priority int

// Default Redmine priority ids.
const (
	PriorityVeryLow   Priority = 1 // Sehr niedrig
	PriorityLow       Priority = 2 // Niedrig
	PriorityNormal    Priority = 3 // Normal
	PriorityHigh      Priority = 4 // Hoch
	PriorityImmediate Priority = 5 // Sofort
)

// priorityThresholds is checked top-down; the first minimum reached wins.
var priorityThresholds = []struct {
	min      int
	priority Priority
}{
	{18, PriorityImmediate},
	{15, PriorityHigh},
	{12, PriorityNormal},
	{9, PriorityLow},
}

// PriorityForLevel maps a concept level to a Redmine priority.
func PriorityForLevel(level int) Priority {
	for _, t := range priorityThresholds {
		if level >= t.min {
			return t.priority
		}
	}
	return PriorityVeryLow
}

// String returns the German label Redmine ships for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityVeryLow:
		return "Sehr niedrig"
	case PriorityLow:
		return "Niedrig"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "Hoch"
	case PriorityImmediate:
		return "Sofort"
	default:
		return "Unbekannt"
	}
}
