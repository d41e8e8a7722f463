package models

// Question is immutable once it has been drawn into active play
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	AnswerText string `json:"answerText"`

	// AcceptedAnswers are alternative spellings also graded correct
	AcceptedAnswers []string `json:"acceptedAnswers,omitempty"`

	PointValue       int `json:"pointValue"`
	TimeLimitSeconds int `json:"timeLimitSeconds"`

	// Order is the 1-based position inside a package
	Order int `json:"order,omitempty"`
}

// QuestionBankItem is a reusable summit question and its usage tags
type QuestionBankItem struct {
	Question

	IsUsed        bool         `json:"isUsed"`
	UsedByPackage *PackageType `json:"usedByPackage,omitempty"`
	UsedByTeam    string       `json:"usedByTeam,omitempty"`
}

// QuestionBank is the summit question inventory
type QuestionBank struct {
	Items []*QuestionBankItem `json:"items"`
}

// UsedCount returns the number of items currently marked used
func (b *QuestionBank) UsedCount() int {
	n := 0
	for _, it := range b.Items {
		if it.IsUsed {
			n++
		}
	}
	return n
}

// Package is the bundle of three questions a team plays in the summit round
type Package struct {
	Type      PackageType `json:"type"`
	Questions []Question  `json:"questions"`
	OwnerTeam string      `json:"ownerTeam"`
}
