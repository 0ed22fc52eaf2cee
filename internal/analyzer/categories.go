package analyzer

import "strings"

// CategoryOther is the fallback business category.
const CategoryOther = "Other"

// categoryRule maps a group of known-brand keywords to a business category.
// Rules are evaluated in order against the page title plus hostname.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"Entertainment", []string{"netflix", "spotify", "hulu", "disney", "hbo", "max.com", "youtube", "twitch", "prime video", "crunchyroll", "audible"}},
	{"Creative", []string{"adobe", "figma", "canva", "sketch", "photoshop", "dribbble", "envato"}},
	{"Productivity", []string{"notion", "slack", "asana", "trello", "monday.com", "evernote", "todoist", "airtable", "zoom"}},
	{"Developer Tools", []string{"github", "gitlab", "bitbucket", "vercel", "netlify", "heroku", "digitalocean", "jetbrains", "aws.amazon", "cloudflare"}},
	{"Cloud Storage", []string{"dropbox", "google drive", "onedrive", "icloud", "box.com", "backblaze"}},
	{"Shopping", []string{"amazon", "ebay", "walmart", "etsy", "target", "aliexpress", "shopify", "bestbuy", "ikea"}},
	{"Food Delivery", []string{"doordash", "uber eats", "ubereats", "grubhub", "postmates", "deliveroo", "zomato", "swiggy", "foodpanda", "instacart"}},
	{"AI Services", []string{"openai", "chatgpt", "claude", "anthropic", "midjourney", "perplexity", "copilot", "gemini"}},
	{"Health & Fitness", []string{"peloton", "fitbit", "strava", "myfitnesspal", "calm", "headspace", "whoop", "noom"}},
	{"Education", []string{"coursera", "udemy", "skillshare", "duolingo", "khan academy", "masterclass", "brilliant", "pluralsight"}},
}

// Categorize assigns a business category by matching the page title and
// hostname against the known-brand keyword table. Unmatched sites fall back
// to Other.
func Categorize(title, hostname string) string {
	haystack := strings.ToLower(title + " " + hostname)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
