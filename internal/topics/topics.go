// Package topics chooses what the next article is about while keeping
// recent output varied. Selection is pure: the caller injects the random
// source and the recent history.
package topics

import "math/rand"

const rerollAttempts = 5

// Candidate topics for generated articles.
var topicPool = []string{
	"How AI is changing small business marketing",
	"Email automation strategies that actually convert",
	"Building a content calendar your team will follow",
	"SEO fundamentals every founder should know",
	"Turning website visitors into newsletter subscribers",
	"Social proof: using customer stories in your marketing",
	"Landing page copy that sells without sounding salesy",
	"Repurposing one blog post into a week of content",
	"Marketing analytics without drowning in dashboards",
	"Brand voice: staying consistent across every channel",
	"Growth loops vs. funnels for early-stage products",
	"Choosing marketing channels when you have no budget",
}

// Candidate categories; kept small so the admin UI filter stays useful.
var categoryPool = []string{
	"Marketing",
	"Automation",
	"Content",
	"SEO",
	"Growth",
	"Product",
}

// Selection is the outcome of one topic draw.
type Selection struct {
	Topic    string
	Category string
}

// Select draws a topic and a category. Topic repetition against
// recentTitles is not enforced here; the titles travel into the generation
// prompt as an exclusion list, so avoidance is advisory. The category is
// re-rolled up to 5 times while it matches any of the 3 most recent
// categories; if every roll collides the last one is accepted.
func Select(rng *rand.Rand, recentTitles, recentCategories []string) Selection {
	topic := topicPool[rng.Intn(len(topicPool))]

	_ = recentTitles // avoidance happens in the prompt, not here

	recent := recentCategories
	if len(recent) > 3 {
		recent = recent[:3]
	}

	category := categoryPool[rng.Intn(len(categoryPool))]
	for i := 0; i < rerollAttempts && contains(recent, category); i++ {
		category = categoryPool[rng.Intn(len(categoryPool))]
	}

	return Selection{Topic: topic, Category: category}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
