package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		in   string
		want Topic
	}{
		{"World", TopicWorld},
		{"world", TopicWorld},
		{"  TECHNOLOGY ", TopicTechnology},
		{"us", TopicUS},
		{"tech", TopicTechnology},
		{"Technology News", TopicTechnology},
		{"finance", TopicMarkets},
		{"market", TopicMarkets},
		{"USA", TopicUS},
		{"us news", TopicUS},
		{"", TopicOther},
		{"gardening", TopicOther},
		{"Climate", TopicClimate},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTopic(tt.in))
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   string
		want Angle
	}{
		{"Breaking", AngleBreaking},
		{"urgent", AngleBreaking},
		{"breaking news", AngleBreaking},
		{"deep dive", AngleAnalysis},
		{"editorial", AngleOpinion},
		{"guide", AngleExplainer},
		{"investigation", AngleInvestigative},
		{"Q&A", AngleInterview},
		{"liveblog", AngleLive},
		{"press release", AnglePressRelease},
		{"pressrelease", AnglePressRelease},
		{"", AngleOther},
		{"rumour", AngleOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAngle(tt.in))
		})
	}
}

func TestNormalize_IsTotal(t *testing.T) {
	validTopics := map[Topic]bool{}
	for _, tp := range Topics() {
		validTopics[tp] = true
	}
	validAngles := map[Angle]bool{}
	for _, a := range Angles() {
		validAngles[a] = true
	}

	inputs := []string{"", " ", "\x00", "💥", "World!", "Other", "other", "a very long string of nonsense", "null"}
	for _, in := range inputs {
		assert.True(t, validTopics[NormalizeTopic(in)], "topic for %q", in)
		assert.True(t, validAngles[NormalizeAngle(in)], "angle for %q", in)
	}
}

func TestVocabularies(t *testing.T) {
	assert.Len(t, Topics(), 12)
	assert.Len(t, Angles(), 9)
	assert.Equal(t, "World, US, Business, Markets, Technology, Science, Health, Sports, Entertainment, Politics, Climate, Other", JoinTopics())
	assert.Equal(t, "Breaking, Analysis, Opinion, Explainer, Investigative, Interview, Live, PressRelease, Other", JoinAngles())

	// callers get a copy
	ts := Topics()
	ts[0] = "Changed"
	assert.Equal(t, TopicWorld, Topics()[0])
}

func TestMajorityTopic(t *testing.T) {
	assert.Equal(t, TopicOther, MajorityTopic(nil))
	assert.Equal(t, TopicScience, MajorityTopic([]Topic{TopicScience}))
	assert.Equal(t, TopicHealth, MajorityTopic([]Topic{TopicWorld, TopicHealth, TopicHealth}))

	// exact tie resolves to declaration order, regardless of input order
	assert.Equal(t, TopicWorld, MajorityTopic([]Topic{TopicPolitics, TopicWorld}))
	assert.Equal(t, TopicWorld, MajorityTopic([]Topic{TopicWorld, TopicPolitics}))
	assert.Equal(t, TopicBusiness, MajorityTopic([]Topic{TopicClimate, TopicBusiness, TopicClimate, TopicBusiness}))

	// raw values are normalized before counting
	assert.Equal(t, TopicTechnology, MajorityTopic([]Topic{"tech", "technology", TopicWorld}))
}
