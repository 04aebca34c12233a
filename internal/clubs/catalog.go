// Package clubs matches free-text questions against the SFU student club
// catalog. Matching runs in three tiers: direct name substrings, a curated
// keyword synonym map, and a fuzzy pass used only when the first two find
// nothing.
package clubs

// keywordMap relates topic keywords to terms that appear in club names.
// Keys and values are lowercase; lookups happen on extracted keywords.
var keywordMap = map[string][]string{
	// Tech & Programming
	"coding":           {"tech", "developers", "google developer", "cybersecurity", "programming", "software", "game development", "ai", "competitive programming"},
	"programming":      {"developers", "google developer", "coding", "software", "hacking", "ai", "competitive programming"},
	"developer":        {"developers", "google developer", "cybersecurity", "software", "app development", "game development"},
	"cybersecurity":    {"hacking", "security", "privacy", "ethical hacking", "developers"},
	"game development": {"game developers", "game design", "game programming", "gamedev"},
	"ai":               {"machine learning", "deep learning", "data science", "neural networks", "quantum computing"},
	"data science":     {"ai", "statistics", "machine learning", "big data"},

	// Business & Finance
	"business":         {"beedie", "entrepreneurship", "finance", "marketing", "startups", "investment"},
	"entrepreneurship": {"business", "startups", "founders", "finance", "networking"},
	"marketing":        {"business", "advertising", "social media", "branding"},
	"finance":          {"investing", "stocks", "trading", "accounting", "investment", "financial literacy"},
	"investment":       {"finance", "stocks", "equity", "venture capital", "real estate"},

	// Debating & Public Speaking
	"debating":        {"debate", "public speaking", "model un", "argumentation", "toastmasters"},
	"debate":          {"debating", "public speaking", "model un", "critical thinking"},
	"public speaking": {"debating", "toastmasters", "leadership", "speech", "presentation"},

	// Science & Engineering
	"robotics":          {"engineering", "hardware", "electronics", "ai", "automation", "mechatronics"},
	"engineering":       {"robotics", "civil", "mechanical", "electrical", "design", "aerospace", "rocket"},
	"quantum computing": {"ai", "machine learning", "data science", "physics", "computing"},
	"data analytics":    {"finance", "business", "big data", "sports analytics", "statistics"},

	// Sports & Outdoor Activities
	"hiking":       {"outdoors", "adventure", "camping", "trekking"},
	"climbing":     {"rock climbing", "bouldering", "indoor climbing"},
	"badminton":    {"racket sports", "tennis", "ping pong"},
	"skiing":       {"snowboarding", "winter sports", "mountain sports"},
	"martial arts": {"taekwondo", "karate", "judo", "bjj", "self-defense"},
	"dragon boat":  {"rowing", "paddling", "team sports"},

	// Culture & Arts
	"music":          {"choir", "jazz", "orchestra", "rock music", "band"},
	"dance":          {"bhangra", "giddha", "hip hop", "latin dance", "bollywood", "salsa", "bachata", "dancing", "dance team", "befikre"},
	"dancing":        {"dance", "bhangra", "giddha", "hip hop", "latin dance", "bollywood", "salsa", "bachata", "dance team", "befikre"},
	"photography":    {"photo", "camera", "visual arts", "media"},
	"anime":          {"manga", "cosplay", "animation", "japanese culture"},
	"writing":        {"creative writing", "poetry", "literature", "novels"},
	"graphic novels": {"comics", "illustration", "visual storytelling"},

	// Social & Cultural
	"volunteering":   {"charity", "fundraising", "service", "ngo", "awareness"},
	"sustainability": {"climate change", "environment", "green", "eco-friendly"},
	"politics":       {"government", "activism", "policy", "conservative", "liberal", "ndp", "student government"},
	"women in stem":  {"women in tech", "gender equality", "diversity", "women in engineering"},
	"mental health":  {"stress-free", "happiness", "well-being", "mindfulness"},
	"religion":       {"christian", "muslim", "hindu", "sikh", "buddhist"},
	"christian":      {"bible", "faith", "jesus", "evangelical", "catholic"},
	"muslim":         {"islam", "prayer", "quran", "msa"},
	"hindu":          {"culture", "tradition", "festivals", "hindu yuva"},
	"sikh":           {"gurdwara", "community", "seva"},
	"jewish":         {"judaism", "hillel", "torah"},

	// Miscellaneous
	"gaming":     {"esports", "smash", "pokemon go", "tabletop"},
	"technology": {"ai", "robotics", "cybersecurity", "quantum computing"},
	"food":       {"foodie", "cuisine", "restaurants", "cooking"},
	"medicine":   {"pre-med", "healthcare", "biology", "science"},
	"law":        {"pre-law", "law school", "justice", "legal studies"},
}

// catalog lists registered SFU student clubs.
var catalog = []string{
	"350 - SFU", "Accounting Student Association - SFU", "Ace SFU", "Afghanistan Student Union",
	"Ahmadiyya Muslim Student Association (AMSA)", "AIESEC", "ALAS (Association of Latin American Students)",
	"Anime Club - SFU", "Arab Students' Association", "Ascend Leadership", "Astronomy Club - SFU",
	"Backpacking Club", "Bangladesh Students' Alliance", "Bhangra - SFU", "Bowling 300", "BRASA SFU",
	"Burnaby Mountain Toastmasters", "Campus Association of Baha'i Studies", "Campus Vibe for Christ",
	"Canadian Cancer Society - SFU", "Canadian Liver Foundation SFU", "Canadianized Asian Club (CAC)",
	"CaseIT", "Chess Club - SFU", "Choir - SFU", "Christian Leadership Initiative - SFU",
	"Christian Students @ SFU", "Concert Orchestra - SFU", "Debate Society", "Developers & Systems Club",
	"Dodo Club", "EAT!SFU", "Enactus SFU", "Engineers Without Borders - SFU Chapter",
	"Ethiopian & Eritrean Students Association", "Evangelical Chinese Bible Fellowship (ECBF)",
	"Exercise is Medicine SFU", "Filipino Students Association", "Finance Student Association (FINSA)",
	"Game Developers Club", "Giddha - SFU", "Google Developer Student Club - SFU", "Hanvoice SFU",
	"Hiking Club", "Hillel Jewish Students Association", "Hip Hop Club - SFU", "Hong Kong Society (HKS)",
	"Human Resources Student Association", "Indian Student Federation (ISF)", "Indoor Climbing Club",
	"Iranian Club - SFU", "Ismaili Students Association", "Japanese Network - SFU", "Jazz Band - Simon Fraser",
	"JDC West - SFU", "Korean Storm (K.STORM)", "Latin Dance Passion - SFU", "Love Your Neighbour Club",
	"Malaysia Singapore Students Club", "Management Information Systems Association",
	"Model United Nations - SFU", "Music Discussion Club", "Muslim Students Association",
	"NeuraXtension", "Operation Smile SFU", "Outdoors Club - SFU", "Pakistan Students Association",
	"Palestinian Youth Movement (PYM SFU)", "Phi Delta Epsilon", "Power to Change (P2C)",
	"Pre-Law Society - SFU", "Pre-Med Society - SFU", "Pre-Vet & Animal Wellness Club",
	"Provincial BC Conservatives", "Punjabi Student Association - SFU", "Reclaim Tech",
	"Rock Music Club", "SFU Artists", "SFU ASL Club", "SFU Befikre Dance Team", "SFU Blood, Organ, and Stem Cell Club",
	"SFU Cybersecurity Club", "SFU Dragon Boat", "SFU Esports Association", "SFU First Responders",
	"SFU Foodie Club", "SFU Golf Club", "SFU Hanfu Culture Society", "SFU Hindu Yuva", "SFU Magic the Gathering Club (MTG)",
	"SFU Mechanical Keyboards Club", "SFU OS Development", "SFU Peak Frequency", "SFU Pokemon Go Official Group",
	"SFU Robotics Club", "SFU Sports Analytics Club", "SFU Swifties", "SFU Thaqalyn Muslim Association",
	"SFU Transit Enthusiasts Club (SFU TEC)", "Sikh Students' Association - SFU", "Simon Fraser Investment Club",
	"Ski and Snowboard Club", "Smash Club", "Speech and Hearing Club", "STEM Fellowship", "Student Marketing Association",
	"Taiwanese Association - SFU", "Team Phantom: SFU Formula SAE Electric",
	"The FentaNIL Project at SFU (TFP)", "UNICEF - SFU", "University Bible Fellowship",
	"University Christian Ministries", "UPhoto Photography Club", "Vietnamese Student Association",
	"Women in Clean Tech", "Women In Engineering", "Women in STEM", "Young Women in Business SFU",
}

// Catalog returns the full club list.
func Catalog() []string {
	return catalog
}

// IsTopicKeyword reports whether the keyword maps to known club topics.
func IsTopicKeyword(keyword string) bool {
	_, ok := keywordMap[keyword]
	return ok
}
