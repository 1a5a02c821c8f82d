// Package ports defines the driven-side interfaces of replyflow: the
// document store the admin and chat surfaces persist to, and the RAG
// collaborator the fallback tier delegates to.
//
// Adapters live under pkg/adapters; the exported contract suite in this
// package keeps every store implementation honest.
package ports
