/*
Package replyflow is a three-tier reply resolution engine for chatbots.

An admin defines FAQs and a node-based conversation workflow; the chat
surface answers each user message by trying, in strict priority order:

 1. exact FAQ match (normalized equality),
 2. workflow node match, returning the node's reply plus option buttons,
 3. retrieval-augmented generation (RAG) against an external service.

The engine keeps the hexagonal shape of its packages: pkg/domain holds the
data model and graph converter, pkg/resolver the pure resolution logic,
pkg/ports the store and RAG interfaces, and pkg/adapters the memory/redis
stores plus the HTTP, MCP, and RAG-client adapters.

# Usage

	eng := replyflow.New(
		replyflow.WithAnswerer(rag.New("http://localhost:8001")),
	)

	bot := &domain.Chatbot{Name: "Support", StartMessage: "Hi!"}
	_ = eng.Store().CreateChatbot(ctx, bot)

	sess, greeting, _ := eng.StartSession(ctx, bot.ID)
	reply, _ := eng.Send(ctx, sess.ID, "what are your hours?")

Every user message and bot reply is durably appended to the session log
before Send returns, apology substitutions on RAG failure included.
*/
package replyflow
