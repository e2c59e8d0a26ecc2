// Package ai provides interfaces and implementations for interacting with
// different LLM backends. The bot uses an LLM for two things: generating
// persona replies from conversation history, and classifying the tone of
// incoming messages for the karma system.
package ai

import (
	"context"
)

// Sentiment is the tone class assigned to an incoming message.
type Sentiment string

const (
	SentimentToxic    Sentiment = "toxic"
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
)

// Turn is a single conversation turn passed to the model. Role is one of
// "user" or "assistant".
type Turn struct {
	Role    string
	Content string
}

// ReplyOptions shapes the tone of a generated reply.
type ReplyOptions struct {
	// ReputationKnown reports whether ReputationScore carries a real value.
	// Scores below -5 make the bot curt, scores above 5 make it friendly.
	ReputationKnown bool
	ReputationScore int

	// Interjection marks unprompted replies, which should stay short.
	Interjection bool
}

// Client defines the interface for AI operations used throughout the bot.
type Client interface {
	// GenerateReply produces a persona reply for the given conversation
	// history, oldest turn first. The last turn is the message being
	// answered.
	GenerateReply(ctx context.Context, history []Turn, opts ReplyOptions) (string, error)

	// ClassifySentiment assigns a tone class to a message. Implementations
	// return SentimentNeutral alongside the error so callers can degrade
	// without inspecting it.
	ClassifySentiment(ctx context.Context, text string) (Sentiment, error)
}
