package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/outsidergame/outsider/internal/game"
)

// locationKeywords maps each location to vocabulary that tends to surface
// when insiders talk around it. Keys must match game.Locations.
var locationKeywords = map[string][]string{
	"Airport":            {"flight", "gate", "luggage", "boarding", "plane", "terminal", "security", "takeoff"},
	"Bank":               {"teller", "vault", "deposit", "loan", "account", "cash", "withdraw", "queue"},
	"Beach":              {"sand", "waves", "sunscreen", "towel", "swim", "tide", "shore", "umbrella"},
	"Casino":             {"chips", "cards", "slots", "bet", "dealer", "jackpot", "roulette", "odds"},
	"Cathedral":          {"choir", "prayer", "stained", "altar", "bells", "pews", "sermon", "organ"},
	"Circus Tent":        {"clown", "acrobat", "ring", "trapeze", "juggler", "lion", "tent", "ringmaster"},
	"Corporate Party":    {"boss", "toast", "networking", "promotion", "colleagues", "speech", "drinks", "office"},
	"Crusader Army":      {"sword", "armor", "siege", "banner", "knight", "march", "crusade", "shield"},
	"Day Spa":            {"massage", "facial", "robe", "sauna", "relax", "towels", "aromatherapy", "steam"},
	"Embassy":            {"visa", "passport", "diplomat", "consul", "stamp", "ambassador", "paperwork", "protocol"},
	"Hospital":           {"nurse", "doctor", "ward", "surgery", "patient", "scrubs", "medicine", "emergency"},
	"Hotel":              {"checkout", "lobby", "room", "concierge", "minibar", "suite", "reception", "keycard"},
	"Military Base":      {"drill", "barracks", "sergeant", "rations", "uniform", "orders", "salute", "recruits"},
	"Movie Studio":       {"camera", "director", "scene", "script", "makeup", "props", "take", "cut"},
	"Museum":             {"exhibit", "painting", "artifact", "gallery", "curator", "sculpture", "tour", "ancient"},
	"Ocean Liner":        {"deck", "cabin", "captain", "seasick", "port", "buffet", "cruise", "lifeboat"},
	"Passenger Train":    {"conductor", "carriage", "tickets", "rails", "compartment", "station", "whistle", "tracks"},
	"Pirate Ship":        {"treasure", "plank", "parrot", "rum", "sails", "crew", "plunder", "anchor"},
	"Polar Station":      {"ice", "frostbite", "parka", "research", "snowmobile", "blizzard", "samples", "cold"},
	"Police Station":     {"badge", "arrest", "cell", "interrogation", "report", "handcuffs", "detective", "patrol"},
	"Restaurant":         {"menu", "waiter", "chef", "reservation", "dessert", "kitchen", "tip", "wine"},
	"School":             {"homework", "teacher", "recess", "blackboard", "exam", "classroom", "lunchbox", "bell"},
	"Service Station":    {"fuel", "pump", "windshield", "snacks", "mechanic", "tires", "highway", "oil"},
	"Space Station":      {"gravity", "orbit", "spacesuit", "airlock", "mission", "module", "earth", "float"},
	"Submarine":          {"periscope", "sonar", "depth", "torpedo", "hatch", "dive", "hull", "pressure"},
	"Supermarket":        {"aisle", "cart", "checkout", "produce", "coupons", "groceries", "shelf", "cashier"},
	"Theater":            {"stage", "curtain", "intermission", "audience", "rehearsal", "costume", "applause", "spotlight"},
	"University":         {"lecture", "professor", "thesis", "campus", "seminar", "dorm", "degree", "library"},
	"World War II Squad": {"trenches", "radio", "rations", "ambush", "squad", "helmet", "front", "orders"},
	"Zoo":                {"cages", "feeding", "penguins", "keeper", "enclosure", "giraffe", "habitat", "safari"},
}

// KeywordGuesser deduces the secret location by scoring keyword overlap
// between the conversation and each candidate's vocabulary. It abstains
// rather than commit to a weak signal.
type KeywordGuesser struct {
	logger *log.Logger
}

// NewKeywordGuesser creates a guesser.
func NewKeywordGuesser(logger *log.Logger) *KeywordGuesser {
	if logger == nil {
		logger = log.Default()
	}
	return &KeywordGuesser{logger: logger.WithPrefix("guesser")}
}

// Guess scores every candidate location against the conversation so far and
// returns the best match with a confidence score, or an empty result when
// nothing stands out.
func (g *KeywordGuesser) Guess(_ context.Context, query game.GuessQuery) game.GuessResult {
	words := conversationWords(query.History)
	if len(words) == 0 {
		return game.GuessResult{}
	}

	best := game.GuessResult{}
	for _, location := range query.CandidateLocations {
		score, hits := g.score(location, words)
		if score > best.Confidence {
			best = game.GuessResult{
				Location:   location,
				Confidence: score,
				Reasoning:  fmt.Sprintf("matched %d cue(s) for %s", hits, location),
			}
		}
	}
	if best.Location == "" {
		return game.GuessResult{}
	}
	g.logger.Debug("scored guess",
		"location", best.Location,
		"confidence", best.Confidence,
		"questions", query.QuestionsSoFar)
	return best
}

// score weighs direct mentions of the location name far above keyword hits:
// an insider slipping the name is near-certain, scattered vocabulary is not.
func (g *KeywordGuesser) score(location string, words map[string]int) (float64, int) {
	hits := 0
	for _, token := range strings.Fields(strings.ToLower(location)) {
		if words[token] > 0 {
			hits++
		}
	}
	nameScore := 0.0
	if hits > 0 {
		nameScore = 0.9
	}

	keywordHits := 0
	for _, kw := range locationKeywords[location] {
		if words[kw] > 0 {
			keywordHits++
		}
	}
	kwScore := float64(keywordHits) * 0.25
	if kwScore > 0.8 {
		kwScore = 0.8
	}

	score := nameScore + kwScore
	if score > 1 {
		score = 1
	}
	return score, hits + keywordHits
}

func conversationWords(history []game.Exchange) map[string]int {
	words := make(map[string]int)
	add := func(text string) {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, ".,!?;:'\"()")
			if w != "" {
				words[w]++
			}
		}
	}
	for _, ex := range history {
		add(ex.Question)
		add(ex.Answer)
	}
	return words
}

var _ game.LocationGuessService = (*KeywordGuesser)(nil)
