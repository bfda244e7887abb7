// Package sampledata bootstraps the development index: a parent/child
// mapping of items and their text fragments, plus generated documents to
// search against.
package sampledata

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"querygate/internal/infrastructure/search/elastic"
)

// Mapping is the sample index mapping: items are parents, fragments their
// children, joined through join_field so has_child queries work.
func Mapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"name": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword"},
					},
				},
				"category": map[string]any{"type": "keyword"},
				"content":  map[string]any{"type": "text"},
				"join_field": map[string]any{
					"type": "join",
					"relations": map[string]any{
						"item": "fragment",
					},
				},
			},
		},
	}
}

var firstNames = []string{
	"Ada", "Alan", "Barbara", "Claude", "Donald", "Edsger", "Frances",
	"Grace", "John", "Katherine", "Ken", "Leslie", "Margaret", "Niklaus",
}

var lastNames = []string{
	"Allen", "Backus", "Dijkstra", "Hamilton", "Hopper", "Kay", "Knuth",
	"Lamport", "Liskov", "Lovelace", "McCarthy", "Ritchie", "Shannon", "Wirth",
}

var sentences = []string{
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris.",
	"Duis aute irure dolor in reprehenderit in voluptate velit esse cillum.",
	"Excepteur sint occaecat cupidatat non proident, sunt in culpa qui.",
	"Nisi ut aliquip ex ea commodo consequat, quis aute iure reprehenderit.",
}

// Seed indexes n parent items, each with one child fragment, and refreshes
// the index so the documents are immediately searchable.
func Seed(ctx context.Context, client *elastic.Client, index string, n int) error {
	for i := 0; i < n; i++ {
		item := map[string]any{
			"name":       randomName(),
			"category":   fmt.Sprintf("category_%d", i%2),
			"join_field": "item",
		}
		parentID, err := client.IndexDocument(ctx, index, "1", item)
		if err != nil {
			return fmt.Errorf("index sample item %d: %w", i, err)
		}
		fragment := map[string]any{
			"content": randomParagraph(),
			"join_field": map[string]any{
				"name":   "fragment",
				"parent": parentID,
			},
		}
		if _, err := client.IndexDocument(ctx, index, "1", fragment); err != nil {
			return fmt.Errorf("index sample fragment %d: %w", i, err)
		}
	}
	if err := client.Refresh(ctx, index); err != nil {
		return fmt.Errorf("refresh sample index: %w", err)
	}
	slog.Info("sample_data_seeded", "index", index, "items", n)
	return nil
}

func randomName() string {
	return firstNames[rand.IntN(len(firstNames))] + " " + lastNames[rand.IntN(len(lastNames))]
}

func randomParagraph() string {
	count := 2 + rand.IntN(3)
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		parts = append(parts, sentences[rand.IntN(len(sentences))])
	}
	return strings.Join(parts, " ")
}
