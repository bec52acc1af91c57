package selfservice

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nullticket/helpdesk/pkg/kb"
)

// Searcher is the slice of the knowledge-base client the responder needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]kb.Article, error)
}

// Responder answers messages deterministically from the rule set, augmented
// with knowledge-base articles, before any AI call is attempted.
type Responder struct {
	rules []Rule
	kb    Searcher
}

func NewResponder(rules []Rule, searcher Searcher) *Responder {
	return &Responder{rules: rules, kb: searcher}
}

const (
	kbLookupLimit      = 3
	maxRelatedArticles = 2
	maxFoundArticles   = 3
)

// Respond evaluates the rule set against message. ok is false when neither a
// rule nor the knowledge base produced an answer and the caller should fall
// through to the AI path. Knowledge-base failures degrade to the canned
// answer alone; they never propagate.
func (r *Responder) Respond(ctx context.Context, message string) (answer string, ok bool) {
	lowered := strings.ToLower(message)

	var articles []kb.Article
	if r.kb != nil {
		var err error
		articles, err = r.kb.Search(ctx, message, kbLookupLimit)
		if err != nil {
			log.Printf("selfservice: knowledge base lookup failed, continuing without articles: %v", err)
			articles = nil
		}
	}

	for _, rule := range r.rules {
		if !rule.Matches(lowered) {
			continue
		}
		return rule.Answer + relatedArticles(rule, articles), true
	}

	if len(articles) > 0 {
		return foundArticles(articles), true
	}
	return "", false
}

// relatedArticles renders up to two articles matching the rule's topic
// affinity, or nothing.
func relatedArticles(rule Rule, articles []kb.Article) string {
	var matched []kb.Article
	for _, a := range articles {
		if rule.relevantArticle(a) {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		return ""
	}
	if len(matched) > maxRelatedArticles {
		matched = matched[:maxRelatedArticles]
	}

	var b strings.Builder
	b.WriteString("\n\n**Related Knowledge Base Articles:**\n")
	for _, a := range matched {
		fmt.Fprintf(&b, "- [%s](/kb/article/%d)\n", a.Title, a.ID)
	}
	return b.String()
}

// foundArticles is the generic composition used when no rule matched but the
// knowledge base returned results. It always ends with a ticket offer.
func foundArticles(articles []kb.Article) string {
	if len(articles) > maxFoundArticles {
		articles = articles[:maxFoundArticles]
	}

	var b strings.Builder
	b.WriteString("I found some relevant articles in our knowledge base that might help with your question:\n\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "**%s**\n", a.Title)
		if a.Summary != "" {
			b.WriteString(a.Summary + "\n")
		}
		fmt.Fprintf(&b, "[Read full article](/kb/article/%d)\n\n", a.ID)
	}
	b.WriteString("If these don't solve your issue, I can create a support ticket for you. Would you like me to do that?")
	return b.String()
}
