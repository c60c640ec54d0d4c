// Package taxonomy holds the closed Topic and Angle vocabularies and maps
// free text from the model onto them.
package taxonomy

import "strings"

type Topic string

const (
	TopicWorld         Topic = "World"
	TopicUS            Topic = "US"
	TopicBusiness      Topic = "Business"
	TopicMarkets       Topic = "Markets"
	TopicTechnology    Topic = "Technology"
	TopicScience       Topic = "Science"
	TopicHealth        Topic = "Health"
	TopicSports        Topic = "Sports"
	TopicEntertainment Topic = "Entertainment"
	TopicPolitics      Topic = "Politics"
	TopicClimate       Topic = "Climate"
	TopicOther         Topic = "Other"
)

type Angle string

const (
	AngleBreaking      Angle = "Breaking"
	AngleAnalysis      Angle = "Analysis"
	AngleOpinion       Angle = "Opinion"
	AngleExplainer     Angle = "Explainer"
	AngleInvestigative Angle = "Investigative"
	AngleInterview     Angle = "Interview"
	AngleLive          Angle = "Live"
	AnglePressRelease  Angle = "PressRelease"
	AngleOther         Angle = "Other"
)

// Declaration order matters: it is the tie-break order for MajorityTopic.
var topics = []Topic{
	TopicWorld, TopicUS, TopicBusiness, TopicMarkets, TopicTechnology, TopicScience,
	TopicHealth, TopicSports, TopicEntertainment, TopicPolitics, TopicClimate, TopicOther,
}

var angles = []Angle{
	AngleBreaking, AngleAnalysis, AngleOpinion, AngleExplainer, AngleInvestigative,
	AngleInterview, AngleLive, AnglePressRelease, AngleOther,
}

var topicAliases = map[string]Topic{
	"tech":            TopicTechnology,
	"technology news": TopicTechnology,
	"market":          TopicMarkets,
	"finance":         TopicMarkets,
	"us news":         TopicUS,
	"usa":             TopicUS,
}

var angleAliases = map[string]Angle{
	"breaking news": AngleBreaking,
	"urgent":        AngleBreaking,
	"deep dive":     AngleAnalysis,
	"editorial":     AngleOpinion,
	"guide":         AngleExplainer,
	"investigation": AngleInvestigative,
	"q&a":           AngleInterview,
	"liveblog":      AngleLive,
	"press release": AnglePressRelease,
}

// Topics returns the topic vocabulary in declaration order.
func Topics() []Topic {
	return append([]Topic(nil), topics...)
}

// Angles returns the angle vocabulary in declaration order.
func Angles() []Angle {
	return append([]Angle(nil), angles...)
}

// NormalizeTopic never fails: exact (case-insensitive) match, then alias,
// then TopicOther.
func NormalizeTopic(s string) Topic {
	candidate := strings.ToLower(strings.TrimSpace(s))
	for _, t := range topics {
		if strings.ToLower(string(t)) == candidate {
			return t
		}
	}
	if t, ok := topicAliases[candidate]; ok {
		return t
	}
	return TopicOther
}

// NormalizeAngle never fails: exact (case-insensitive) match, then alias,
// then AngleOther.
func NormalizeAngle(s string) Angle {
	candidate := strings.ToLower(strings.TrimSpace(s))
	for _, a := range angles {
		if strings.ToLower(string(a)) == candidate {
			return a
		}
	}
	if a, ok := angleAliases[candidate]; ok {
		return a
	}
	return AngleOther
}

// MajorityTopic returns the most frequent topic after normalization. Ties go
// to the topic declared first. An empty input yields TopicOther.
func MajorityTopic(in []Topic) Topic {
	counts := make(map[Topic]int, len(topics))
	for _, t := range in {
		counts[NormalizeTopic(string(t))]++
	}

	best, bestCount := TopicOther, 0
	for _, t := range topics {
		if c := counts[t]; c > bestCount {
			best, bestCount = t, c
		}
	}
	return best
}

// JoinTopics renders the vocabulary as "World, US, ..." for prompts.
func JoinTopics() string {
	parts := make([]string, len(topics))
	for i, t := range topics {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// JoinAngles renders the vocabulary as "Breaking, Analysis, ..." for prompts.
func JoinAngles() string {
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
