package config

import (
	"strings"

	"pipesched/internal/schedule"
)

const defaultSearchPrompt = `
You will receive abstract or concrete business-related concepts or
documents (text, images, etc.). Your task is to generate search engine
queries that would retrieve current or recent business news articles
discussing these concepts in action.

When the concept is abstract (e.g., "vertical integration", "global
value chain"), identify concrete real-world examples, events, company
names, industries, or case studies that illustrate it, and combine the
technical term, its synonyms and the concrete phrases with OR. A search
engine can only match words; it cannot understand abstract ideas.
When the input itself is concrete, you don't have to deabstract it.

Only output search queries, separating them by newlines. Do not explain
or instruct. Do not enclose the queries in quotes or special symbols.
`

const defaultSynthesisPrompt = `
Forget ALL previous instructions!!!

You will be given
1. a business topic.
2. a list of results from search engine that are about the
business topic. Each result will be a webpage url + tab + its title.

Your task is to:
1. Internally, rerank the results based on relevance to the given
topic, find the most relevant ones.
2. Summarize them, identify key articles from the results, and remember
to include the URLs.
`

// Default returns the built-in record. It does no I/O.
func Default(paths schedule.Paths) *Record {
	root := withSlash(paths.ProjectRoot)
	home := withSlash(paths.Home)
	script := func(name string) string {
		return strings.Join([]string{"/bin/bash", root + name, root, home}, " ")
	}

	return &Record{
		BusinessTopics: []string{
			"Vertical integration in business",
			"Diversification strategies in business",
			"Competitive advantage in business",
			"Foreign direct investment in business",
		},
		TextModel:    "llama3.1:8b",
		FileModel:    "qwen2.5vl:7b",
		VerboseLevel: 1,
		SearchConf: SearchConf{
			SystemPrompt: defaultSearchPrompt,
			MaxPrompts:   5,
		},
		SynthesisConf: SynthesisConf{
			SystemPrompt: defaultSynthesisPrompt,
			MaxLen:       3200,
		},
		Schedules: []schedule.Schedule{
			{
				Name:    "updater",
				Type:    schedule.EveryXDays,
				Day:     3,
				Time:    schedule.At(12, 0),
				Command: script("run_updater.sh"),
				CatchUp: true,
			},
			{
				Name:    "llm_pipeline",
				Type:    schedule.Weekly,
				Day:     1,
				Time:    schedule.At(12, 0),
				Command: script("run_pipeline.sh"),
				CatchUp: true,
			},
		},
		EmailInfo: EmailInfo{
			DstAddresses: []string{"digest@example.com"},
			SrcAddress:   "burner@example.com",
			SrcPasswd:    "",
			SrcProvider:  "smtp.gmail.com",
		},
	}
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
