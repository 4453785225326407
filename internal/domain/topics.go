package domain

import (
	"regexp"
	"strings"
)

// Topic describes one supported quiz category.
type Topic struct {
	Label string `json:"label"`
	Key   string `json:"key"`
	Slug  string `json:"slug,omitempty"`
}

var topicLabels = []string{
	"C# Basics",
	"C# Classes",
	"Control Flows C#",
	"C# Core",
	"C# ASP.NET Core",
	"C# Entity Framework",
	"C# LINQ",
	".NET9 Features",
	"C# ASP.NET Core Middleware & Pipeline",
}

// topicSlugs maps landing page paths to labels. Not every topic has one.
var topicSlugs = map[string]string{
	"csharp_basics":               "C# Basics",
	"control_flows_csharp":        "Control Flows C#",
	"csharp_core":                 "C# Core",
	"csharp_aspdotnet_core":       "C# ASP.NET Core",
	"csharp_entity_framework":     "C# Entity Framework",
	"csharp_linq":                 "C# LINQ",
	"dotnet9_features":            ".NET9 Features",
	"csharp_aspdotnet_middleware": "C# ASP.NET Core Middleware & Pipeline",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// IsSupportedTopic reports whether label is one of the fixed topic labels.
func IsSupportedTopic(label string) bool {
	for _, l := range topicLabels {
		if l == label {
			return true
		}
	}
	return false
}

// TopicKey maps a topic label to its question bank key.
func TopicKey(label string) string {
	key := strings.ToLower(label)
	key = strings.ReplaceAll(key, "#", "sharp")
	key = strings.ReplaceAll(key, ".net", "dotnet")
	key = strings.ReplaceAll(key, "&", "and")
	key = whitespaceRun.ReplaceAllString(key, "_")
	return strings.ReplaceAll(key, ".", "")
}

// TopicForSlug resolves a landing page slug to its topic label.
func TopicForSlug(slug string) (string, bool) {
	label, ok := topicSlugs[slug]
	return label, ok
}

// Topics lists every supported topic in display order.
func Topics() []Topic {
	slugs := make(map[string]string, len(topicSlugs))
	for slug, label := range topicSlugs {
		slugs[label] = slug
	}
	out := make([]Topic, 0, len(topicLabels))
	for _, label := range topicLabels {
		out = append(out, Topic{Label: label, Key: TopicKey(label), Slug: slugs[label]})
	}
	return out
}
