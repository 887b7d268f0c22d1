package suspicion

import (
	"github.com/cloudflare/ahocorasick"
)

// Substring vocabularies. Aho-Corasick gives one linear pass per vocabulary
// regardless of how many phrases it holds; phrases match anywhere in the
// text, deliberately without word boundaries ("lolol" still reads as a joke).
var (
	jokeMatcher = ahocorasick.NewStringMatcher([]string{
		"lol", "haha", "jk", "just kidding", "obviously fake",
		"just testing", "fake report",
	})

	disclaimerMatcher = ahocorasick.NewStringMatcher([]string{
		"i'm just checking", "just testing", "this is fake", "not real",
		"probably not important", "not sure if", "might be fake",
		"probably fake",
	})

	negationMatcher = ahocorasick.NewStringMatcher([]string{
		"not", "never", "didn't", "no one", "nobody",
	})

	vagueMatcher = ahocorasick.NewStringMatcher([]string{
		"something", "somebody", "anyone", "anything", "stuff",
	})

	crimeMatcher = ahocorasick.NewStringMatcher([]string{
		"steal", "stole", "stolen", "steals", "stealing", "robbery", "rob",
		"robbed", "theft", "thief", "fight", "fighting", "fought", "brawl",
		"assault", "assaulted", "murder", "murdered", "rape", "raped",
		"weapon", "gun", "guns", "knife", "knives", "fire", "hit", "hitting",
		"shot", "shots", "injured", "harm", "attack", "attacked",
		"attacking", "stab", "stabbed", "beat", "beaten", "beating",
		"violence", "violent", "crime", "criminal", "accident", "incident",
		"emergency", "police", "ambulance", "hospital", "danger", "threat",
		"suspicious", "kidnap", "kidnapped", "kidnapping", "abduct",
		"abducted", "bomb", "explosion", "arson", "vandal", "vandalism",
	})

	// Gaming, tech, consumer complaints, the supernatural: strong signals
	// the submission is not a crime report at all.
	nonCrimeMatcher = ahocorasick.NewStringMatcher([]string{
		"character", "game", "level", "score", "password", "account", "app",
		"bug", "update", "download", "install", "error", "crash", "freeze",
		"lag", "late", "missed", "forgot", "lost", "broke", "didn't work",
		"didn't get", "wasn't", "wasn't able", "didn't receive",
		"not received", "order", "delivery", "package", "complaint",
		"review", "rating", "ghost", "alien", "ufo", "demon", "zombie",
		"vampire", "werewolf", "spirit", "supernatural", "magic", "wizard",
		"unicorn", "dragon", "bigfoot", "yeti",
	})
)

// hasAny reports whether any vocabulary phrase occurs in text.
func hasAny(m *ahocorasick.Matcher, text string) bool {
	return len(m.MatchThreadSafe([]byte(text))) > 0
}

// countHits returns the number of distinct vocabulary phrases found in text.
func countHits(m *ahocorasick.Matcher, text string) int {
	return len(m.MatchThreadSafe([]byte(text)))
}
