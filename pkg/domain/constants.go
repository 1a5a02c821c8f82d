package domain

// DefaultStartMessage greets the user when a chatbot has no start_message.
const DefaultStartMessage = "Hi! How can I help you today?"

// RAGApology is the fixed reply substituted (and persisted) when the RAG
// collaborator fails or returns a malformed payload.
const RAGApology = "Sorry, I couldn't find an answer to that right now. Please try again in a moment."

// History bounds for the RAG transcript.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 50
)
