package classifier

import (
	"regexp"
	"strings"
)

// Confidence constants, one per rule tier. Safety-critical categories
// (kidnapping, sexual violence) sit at >= 0.95 so downstream consumers do not
// second-guess them.
const (
	confidenceKidnapping   = 0.97
	confidenceRape         = 0.95
	confidenceArmedRobbery = 0.92
	confidenceWeaponOnly   = 0.90
	confidenceHarassment   = 0.91
	confidenceArson        = 0.90
	confidenceAssault      = 0.89
	confidenceTheft        = 0.89
	confidenceDrug         = 0.88
	confidenceBurglary     = 0.88
	confidenceFraud        = 0.87
	confidenceVandalism    = 0.86
	confidenceUnknown      = 0.30
)

// wordPattern compiles a case-insensitive, word-boundary-anchored alternation
// over the given vocabulary. Multi-word phrases are matched as-is.
func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Vocabulary patterns. Word-boundary anchoring matters: "snatched my wallet"
// must not satisfy a person-context rule meant for abduction.
var (
	// Fraud is evaluated before kidnapping so "disappeared with the money"
	// never matches kidnapping's "disappeared".
	fraudPattern = wordPattern(
		"fraud", "scam", "scammed", "defraud", "defrauded", "cheated",
		"phishing", "hacked", "hacking", "hack", "cybercrime", "compromised",
		"drained my", "disappeared with money", "disappeared with the money",
		"disappeared with client", "disappeared with company",
		"stole the money", "stole all",
	)

	kidnapPattern = wordPattern(
		"kidnap", "kidnapped", "kidnapping", "abduct", "abducted", "abduction",
		"taken", "forcibly taken", "grabbed", "snatched", "snatch",
		"missing", "went missing", "disappeared",
	)

	// Person context gate for the kidnapping rule.
	personPattern = wordPattern(
		"person", "child", "children", "boy", "girl", "baby", "infant",
		"toddler", "kid", "kids", "woman", "women", "man", "men", "student",
		"students", "daughter", "son",
	)

	// Explicit missing-child phrasing bypasses the person gate.
	missingChildPattern = wordPattern("missing child", "child missing")

	rapePattern = wordPattern(
		"rape", "raped", "sexual assault", "sexually assaulted",
		"assaulted sexually", "molest", "molestation", "forced sex",
		"forced against will",
	)

	weaponPattern = wordPattern(
		"gun", "guns", "pistol", "rifle", "firearm", "armed", "knife",
		"knives", "blade", "bomb", "weapon", "weapons",
	)

	robberyVerbPattern = wordPattern(
		"robbery", "robbed", "steal", "stole", "snatch", "snatched",
		"taking belongings",
	)

	theftPattern = wordPattern(
		"stolen", "theft", "wallet", "phone", "bag", "stole", "steal",
		"stealing", "steals", "pickpocket", "pick-pocket", "snatched",
		"snatch", "took my",
	)

	harassmentPattern = wordPattern(
		"sexual harassment", "sexually harassed", "harassed sexually",
		"inappropriate touch", "touched inappropriately", "groping",
		"harassment", "harassed", "unwanted advances", "advances",
	)

	drugPattern = wordPattern(
		"drugs", "narcotics", "cocaine", "heroin", "marijuana", "cannabis",
		"meth", "drug offense", "dealer", "dealing", "white powder",
		"white substance",
	)

	arsonPattern = wordPattern(
		"fire", "set fire", "burning", "arson", "burned", "burnt",
		"explosion", "exploded", "explosive",
	)

	vandalismPattern = wordPattern(
		"vandalism", "vandalized", "graffiti", "spray painted", "damaged",
		"defaced", "threw paint", "property damage",
	)

	burglaryPattern = wordPattern(
		"broke into", "break in", "break-in", "breaking in", "burglary",
		"burglar", "home invasion", "broke in", "trespass",
	)

	assaultPattern = wordPattern(
		"fighting", "fight", "punch", "punching", "hit", "beat", "beaten",
		"beat up", "attack", "attacked", "assaulted", "assault", "brawl",
		"injured",
	)

	// Child nouns drive the secondary minor-involved tag and the escalation
	// engine's child-safety override.
	childPattern = wordPattern(
		"child", "children", "kid", "kids", "baby", "infant", "toddler",
		"minor", "juvenile",
	)
)

// matches caches vocabulary hits for a single text so each pattern runs once.
type matches struct {
	fraud        bool
	kidnapRaw    bool
	person       bool
	missingChild bool
	rape         bool
	weapon       bool
	robberyVerb  bool
	theft        bool
	harassment   bool
	drug         bool
	arson        bool
	vandalism    bool
	burglary     bool
	assault      bool
	child        bool
}

func matchText(text string) *matches {
	return &matches{
		fraud:        fraudPattern.MatchString(text),
		kidnapRaw:    kidnapPattern.MatchString(text),
		person:       personPattern.MatchString(text),
		missingChild: missingChildPattern.MatchString(text),
		rape:         rapePattern.MatchString(text),
		weapon:       weaponPattern.MatchString(text),
		robberyVerb:  robberyVerbPattern.MatchString(text),
		theft:        theftPattern.MatchString(text),
		harassment:   harassmentPattern.MatchString(text),
		drug:         drugPattern.MatchString(text),
		arson:        arsonPattern.MatchString(text),
		vandalism:    vandalismPattern.MatchString(text),
		burglary:     burglaryPattern.MatchString(text),
		assault:      assaultPattern.MatchString(text),
		child:        childPattern.MatchString(text),
	}
}

// kidnapping requires person context: "snatched my phone" is theft, not
// abduction. An explicit missing-child phrase qualifies on its own.
func (m *matches) kidnapping() bool {
	return (m.kidnapRaw && m.person) || m.missingChild
}
