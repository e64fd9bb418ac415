package rag

import (
	"regexp"
	"sort"
	"strings"

	"blogforge/internal/core"
)

const (
	defaultChunkSize = 800 // characters per chunk, split on paragraph bounds
	defaultTopK      = 5
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Retriever selects the context chunks most relevant to a query from fetched
// research documents. Results are best-effort relevance ordered; duplicates
// are allowed.
type Retriever interface {
	Retrieve(query string, keywords []string, docs []core.ResearchResult) []core.ContextChunk
}

// KeywordRetriever ranks chunks of fetched research documents by keyword
// overlap with the query. It is a deliberately simple lexical retriever:
// no embeddings, no external index, just term frequency against the query
// vocabulary, which is enough to pick the handful of passages the writer
// prompt has room for.
type KeywordRetriever struct {
	chunkSize int
	topK      int
	stopWords map[string]bool
}

func NewKeywordRetriever() *KeywordRetriever {
	return &KeywordRetriever{
		chunkSize: defaultChunkSize,
		topK:      defaultTopK,
		stopWords: commonStopWords(),
	}
}

// Retrieve chunks the documents and returns the topK chunks most relevant to
// the query and keywords, in descending relevance order. Ties keep document
// order, so results are deterministic.
func (r *KeywordRetriever) Retrieve(query string, keywords []string, docs []core.ResearchResult) []core.ContextChunk {
	terms := r.queryTerms(query, keywords)
	if len(terms) == 0 {
		return nil
	}

	type scoredChunk struct {
		chunk core.ContextChunk
		score float64
		order int
	}

	var scored []scoredChunk
	order := 0
	for _, doc := range docs {
		for _, text := range splitChunks(doc.Content, r.chunkSize) {
			score := overlapScore(text, terms)
			if score <= 0 {
				order++
				continue
			}
			scored = append(scored, scoredChunk{
				chunk: core.ContextChunk{
					Text:        text,
					SourceTitle: doc.Title,
					SourceURL:   doc.URL,
				},
				score: score,
				order: order,
			})
			order++
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].order < scored[j].order
	})

	topK := r.topK
	if topK > len(scored) {
		topK = len(scored)
	}
	chunks := make([]core.ContextChunk, 0, topK)
	for _, sc := range scored[:topK] {
		chunks = append(chunks, sc.chunk)
	}
	return chunks
}

// queryTerms merges query words and explicit keywords, dropping stop words.
// Multi-word keywords contribute each of their words.
func (r *KeywordRetriever) queryTerms(query string, keywords []string) map[string]bool {
	terms := make(map[string]bool)
	add := func(text string) {
		for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
			if len(w) > 2 && !r.stopWords[w] {
				terms[w] = true
			}
		}
	}
	add(query)
	for _, k := range keywords {
		add(k)
	}
	return terms
}

// overlapScore is the fraction of chunk words that are query terms, weighted
// by how many distinct terms matched. Both factors matter: density alone
// favors tiny chunks, coverage alone favors long ones.
func overlapScore(text string, terms map[string]bool) float64 {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}

	matches := 0
	distinct := make(map[string]bool)
	for _, w := range words {
		if terms[w] {
			matches++
			distinct[w] = true
		}
	}
	if matches == 0 {
		return 0
	}

	density := float64(matches) / float64(len(words))
	coverage := float64(len(distinct)) / float64(len(terms))
	return density * coverage
}

// splitChunks splits text into chunks of roughly maxLen characters, breaking
// on paragraph boundaries so sentences stay intact.
func splitChunks(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
		// A single oversized paragraph becomes its own chunk.
		if current.Len() > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func commonStopWords() map[string]bool {
	words := []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "its", "may", "new", "now", "old", "see", "two", "way", "who",
		"with", "that", "this", "from", "they", "have", "been", "were", "what",
		"when", "where", "which", "while", "will", "would", "could", "should",
		"about", "into", "than", "then", "them", "there", "these", "those",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
