// Package domain contains the core data model of replyflow: chatbots, FAQs,
// the conversation workflow graph in its persisted and editable forms, and
// chat session messages.
//
// The package is dependency-free by design (mapstructure excepted, for
// decoding generic documents) so that adapters and hosts can share types
// without pulling in any transport or storage concern.
package domain
