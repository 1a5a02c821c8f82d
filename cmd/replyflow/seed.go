package main

import (
	"context"
	"fmt"

	"github.com/replyflow/replyflow/internal/cli"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
)

// seedBotFiles loads each bot file into the store, returning the created
// chatbots in flag order.
func seedBotFiles(ctx context.Context, store ports.Store, paths []string) ([]*domain.Chatbot, error) {
	bots := make([]*domain.Chatbot, 0, len(paths))
	for _, path := range paths {
		bf, err := cli.LoadBotFile(path)
		if err != nil {
			return nil, err
		}
		bot, err := bf.Seed(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("seeding %s: %w", path, err)
		}
		bots = append(bots, bot)
	}
	return bots, nil
}
