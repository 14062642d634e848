package filter

import "time"

const defaultMaxAge = 45 * 24 * time.Hour

// defaultTitleKeywords is the relevance vocabulary: a title must contain at
// least one of these to count as a marketing role.
var defaultTitleKeywords = []string{
	"marketing",
	"growth marketer",
	"growth manager",
	"growth lead",
	"growth director",
	"community",
	"content",
	"brand",
	"gtm",
	"go-to-market",
	"partnerships",
	"kol",
	"social media",
	"communications",
	" pr ",
	"public relations",
	"customer acquisition",
	"user acquisition",
	"ambassador",
	"influencer",
	"awareness",
	"campaign",
	"narrative",
	"ecosystem",
	"devrel",
	"developer relations",
	"demand generation",
	"product marketing",
	"growth marketing",
}

// defaultExcludeTitles veto titles that match a relevance keyword but are not
// actually marketing roles (e.g. "content moderator", "talent acquisition").
var defaultExcludeTitles = []string{
	"talent acquisition",
	"frontend engineer",
	"backend engineer",
	"software engineer",
	"engineering manager",
	"engineering director",
	"data engineer",
	"principal engineer",
	"business intelligence",
	"customer care",
	"customer success",
	"customer support",
	"content delivery",
	"content moderator",
	"content moderation",
	"human resources",
	"hr lead",
	"hr manager",
	"recruiting",
	"recruiter",
	"legal counsel",
	"compliance",
	"risk manager",
	"financial analyst",
	"data analyst",
	"data scientist",
	"machine learning",
	"qa engineer",
	"qa lead",
	"security engineer",
	"security analyst",
	"network engineer",
	"site reliability",
	"devops",
}

// defaultAllowedLocations is the location allow-list: remote-friendly terms
// plus a small set of hub cities.
var defaultAllowedLocations = []string{
	"remote",
	"worldwide",
	"global",
	"anywhere",
	"distributed",
	"dubai",
	"uae",
	"singapore",
	"hong kong",
}

// defaultRestrictedPatterns reject geographically restricted postings even
// when the text also contains an allowed term.
var defaultRestrictedPatterns = []string{
	"us only",
	"us citizen",
	"must be in us",
	"us work authorization",
	"remote - usa",
	"remote, usa",
	"remote - us",
	"remote, us",
	"us / remote",
	"remote (us)",
	"remote (usa)",
	"remote (united states)",
	"united states",
	"new york",
	"san francisco",
	"austin",
	"los angeles",
	"boston",
	"chicago",
	"seattle",
	"miami",
	"denver",
	"nyc",
	"bay area",
	"silicon valley",
	"remote - ny",
	"remote - ca",
	"california",
	"texas",
	"washington, d",
}

// defaultOnsitePatterns reject in-office roles everywhere.
var defaultOnsitePatterns = []string{
	"on-site",
	"onsite",
	"in-office",
	"hybrid",
}
