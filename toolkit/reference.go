//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

// similarityThreshold filters out poor reference matches.
const similarityThreshold = 0.2

func newRetrieveUIReference(matcher desktop.Matcher) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "retrieve_ui_reference",
		Description: `Search for UI elements using natural language queries and get the
exact technical reference name. Searches available templates (specific
elements like buttons, icons, logos) and regions (larger areas like
sidebars, address bars, toolbars).

CRITICAL: use the EXACT best_key value returned by this tool in subsequent
detect_ui_elements or detect_ui_regions calls.`,
		Args: []tool.Arg{
			{Name: "query", Type: tool.ArgString, Description: "natural language description of the element"},
		},
		Category:            tool.CategorySearch,
		Behavior:            tool.BehaviorRequiresFollowup,
		SuccessKeys:         []string{"found"},
		FailureKeys:         []string{"error"},
		FollowupSuggestions: []string{"detect_ui_elements", "detect_ui_regions"},
		SummaryTemplate:     "Best match for {query}: {best_key} ({type})",
		ContextKeys:         map[string]string{"best_key": session.KeyLastReference},
	}
	return function.New(decl, func(_ context.Context, args map[string]any) (map[string]any, error) {
		query := strings.ToLower(strings.TrimSpace(args["query"].(string)))

		type match struct {
			key   string
			kind  string
			score float64
		}
		var matches []match
		for _, name := range matcher.Templates() {
			if score := similarity(query, name); score > similarityThreshold {
				matches = append(matches, match{key: name, kind: "template", score: score})
			}
		}
		for _, name := range matcher.Regions() {
			if score := similarity(query, name); score > similarityThreshold {
				matches = append(matches, match{key: name, kind: "region", score: score})
			}
		}
		if len(matches) == 0 {
			return map[string]any{
				"found": false,
				"query": query,
				"hint":  "try terms like 'logo', 'sidebar', 'close button', 'address bar'",
			}, nil
		}
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].score != matches[j].score {
				return matches[i].score > matches[j].score
			}
			return matches[i].key < matches[j].key
		})
		best := matches[0]
		alternatives := make([]string, 0, 3)
		for _, m := range matches[1:] {
			if len(alternatives) == 3 {
				break
			}
			alternatives = append(alternatives, m.key)
		}
		return map[string]any{
			"found":        true,
			"query":        query,
			"best_key":     best.key,
			"type":         best.kind,
			"score":        math.Round(best.score*1000) / 1000,
			"alternatives": alternatives,
		}, nil
	})
}

// similarity scores a query against a reference name: exact and substring
// matches first, then Jaccard overlap of the word sets with a boost when
// every query word is present.
func similarity(query, target string) float64 {
	query = strings.ToLower(query)
	target = strings.ToLower(target)

	if query == target {
		return 1.0
	}
	if strings.Contains(target, query) {
		return 0.9
	}
	if strings.Contains(query, target) {
		return 0.85
	}

	queryWords := wordSet(query)
	targetWords := wordSet(target)
	if len(queryWords) == 0 || len(targetWords) == 0 {
		return 0
	}

	intersection := 0
	subset := true
	for w := range queryWords {
		if targetWords[w] {
			intersection++
		} else {
			subset = false
		}
	}
	union := len(queryWords) + len(targetWords) - intersection
	if union == 0 {
		return 0
	}
	jaccard := float64(intersection) / float64(union)
	if subset {
		jaccard *= 1.2
	}
	return math.Min(jaccard, 1.0)
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "on": true, "in": true,
	"at": true, "to": true, "for": true, "of": true, "with": true,
}

func wordSet(s string) map[string]bool {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if !stopWords[w] {
			words[w] = true
		}
	}
	return words
}
