package server

import (
	"context"
	"log"
	"math/rand/v2"
)

// fallbackPrompts is the static list used whenever remote generation fails.
// It must never be empty.
var fallbackPrompts = []string{
	"A llama in a business suit giving a very serious presentation",
	"A castle made entirely of pancakes and syrup",
	"A robot learning to dance at a wedding",
	"A pirate cat hosting a fancy tea party",
	"A rocket powered skateboard jumping over a shark tank",
	"A haunted treehouse with a welcome mat",
	"A snowman sunbathing on a tropical beach",
	"A giant sunflower city at sunset",
	"An octopus juggling eight cups of coffee",
	"A dragon stuck in a revolving door",
	"A penguin delivering pizza on a unicycle",
	"A wizard whose beard is made of spaghetti",
}

func pickRandomPrompt() string {
	return fallbackPrompts[rand.IntN(len(fallbackPrompts))]
}

// roundPrompt produces the prompt text for a round: remote generation with
// the static list as fallback. This path never fails.
func (s *Server) roundPrompt(ctx context.Context, familyFriendly bool) string {
	text, err := s.generatePrompt(ctx, familyFriendly)
	if err != nil {
		log.Printf("prompt generation failed, using fallback error=%v", err)
		return pickRandomPrompt()
	}
	return text
}
