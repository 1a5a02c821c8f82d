package domain

import "errors"

// ErrChatbotNotFound is returned when a chatbot id cannot be found in the store.
var ErrChatbotNotFound = errors.New("chatbot not found")

// ErrSessionNotFound is returned when a session id cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrWorkflowNotFound is returned when a chatbot has no workflow graph.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrFaqNotFound is returned when a FAQ id cannot be found for a chatbot.
var ErrFaqNotFound = errors.New("faq not found")
