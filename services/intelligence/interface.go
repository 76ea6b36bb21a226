// Package ai answers free-form messages that the booking flow does not
// recognize, by delegating to a language-model completion API.
package ai

import "context"

// The clinic persona sent as the system instruction on every call.
const systemPrompt = "You are an assistant at a medical clinic. Help users with questions " +
	"about appointments, medical services and general information. Answer in a " +
	"friendly and professional tone. If the user wants to book an appointment, " +
	"point them to the /start command."

const (
	maxReplyTokens = 300
	temperature    = 0.7
)

// Responder turns a user's free-form message into a reply.
type Responder interface {
	Reply(ctx context.Context, userID string, text string) (string, error)
}
