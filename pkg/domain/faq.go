package domain

// Faq is a question/answer pair scoped to one chatbot. Questions are matched
// by normalized equality only: no fuzzy or partial matching.
type Faq struct {
	ID       string `json:"id" yaml:"id,omitempty"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Chatbot is the root aggregate. It owns zero-or-one workflow graph and
// zero-or-many FAQs; deleting a chatbot deletes both.
type Chatbot struct {
	ID           string `json:"id" yaml:"id,omitempty"`
	Name         string `json:"name" yaml:"name"`
	StartMessage string `json:"start_message" yaml:"start_message"`
}
