package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// CannedReply is returned whenever reply generation fails for any
// reason, including missing credentials.
const CannedReply = "Thanks for your email! I am available to discuss further."

// DefaultReferences is the static grounding corpus for reply
// suggestions. Compiled into the binary; there is no update path.
var DefaultReferences = []Reference{
	{ID: "1", Text: "I am Aditya Parmar, a software developer focused on backend systems."},
	{ID: "2", Text: "We offer AI-powered email tooling built as a college project at VIT."},
	{ID: "3", Text: "I am available for a call on weekday afternoons to discuss collaboration."},
}

const replyPromptFormat = `You are an assistant. Use the following reference info to reply politely:
"%s"

Incoming email:
"%s"

Suggest a concise reply.`

// ReplyAdvisor retrieves the most relevant reference entry for an
// incoming email and asks a language model to draft a grounded reply.
type ReplyAdvisor struct {
	generator ReplyGenerator
	refs      []Reference
	docTerms  []map[string]int
	docFreq   map[string]int
	logger    *zap.Logger
}

// NewReplyAdvisor builds an advisor over the given reference corpus.
// The term statistics are computed once here since the corpus never
// changes.
func NewReplyAdvisor(generator ReplyGenerator, refs []Reference, logger *zap.Logger) *ReplyAdvisor {
	a := &ReplyAdvisor{
		generator: generator,
		refs:      refs,
		docTerms:  make([]map[string]int, len(refs)),
		docFreq:   make(map[string]int),
		logger:    logger,
	}

	for i, ref := range refs {
		terms := make(map[string]int)
		for _, tok := range tokenize(ref.Text) {
			terms[tok]++
		}
		a.docTerms[i] = terms
		for tok := range terms {
			a.docFreq[tok]++
		}
	}

	return a
}

// MostRelevant returns the text of the reference entry scoring highest
// against the query under term-frequency/inverse-document-frequency.
// Ties keep the first-seen entry because only a strictly greater score
// replaces the current best.
func (a *ReplyAdvisor) MostRelevant(query string) string {
	if len(a.refs) == 0 {
		return ""
	}

	queryTerms := tokenize(query)
	bestScore := math.Inf(-1)
	bestRef := a.refs[0].Text

	for i, ref := range a.refs {
		score := a.score(queryTerms, i)
		if score > bestScore {
			bestScore = score
			bestRef = ref.Text
		}
	}

	return bestRef
}

// score sums tf*idf over the query terms for document i.
func (a *ReplyAdvisor) score(queryTerms []string, i int) float64 {
	n := float64(len(a.refs))
	var total float64
	for _, tok := range queryTerms {
		tf := float64(a.docTerms[i][tok])
		if tf == 0 {
			continue
		}
		idf := math.Log(n/float64(1+a.docFreq[tok])) + 1
		total += tf * idf
	}
	return total
}

// SuggestReply drafts a reply to the incoming email body. It never
// fails: any generator error or empty completion degrades to the
// canned reply.
func (a *ReplyAdvisor) SuggestReply(ctx context.Context, emailBody string) string {
	reference := a.MostRelevant(emailBody)
	prompt := fmt.Sprintf(replyPromptFormat, reference, emailBody)

	reply, err := a.generator.GenerateReply(ctx, prompt)
	if err != nil {
		a.logger.Warn("Reply generation failed, using canned reply", zap.Error(err))
		return CannedReply
	}
	if strings.TrimSpace(reply) == "" {
		a.logger.Warn("Empty completion, using canned reply")
		return CannedReply
	}

	return reply
}

// tokenize lowercases the text and splits it on anything that is not a
// letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
