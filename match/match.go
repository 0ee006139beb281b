// Package match scores external search candidates against a locally known
// venue name and address and picks the best one.
//
// The scorer is a heuristic, not an exact matcher: venue names and
// addresses are transliterated inconsistently across sources, so it is
// deliberately tolerant of partial substring overlap. Only the relative
// ordering of scores within one call is meaningful.
package match

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/plateful/placepipe/place"
)

// ErrNoCandidates is returned by Match when the candidate list is empty.
var ErrNoCandidates = errors.New("match: no candidates")

// Scored pairs a candidate with its computed score. Scores have no fixed
// scale; they only order candidates within a single Rank call.
type Scored struct {
	Candidate place.Candidate
	Score     int
}

// branchSuffixes are branch markers stripped from the end of a name token,
// longest first so "본점" wins over the bare "점".
var branchSuffixes = []string{"본점", "지점", "호점", "점"}

// locationSuffixRunes are single trailing runes stripped after the branch
// marker, so "역삼역" reduces to the station name "역삼".
var locationSuffixRunes = map[rune]bool{'역': true, '동': true, '가': true}

// adminSuffixRunes mark address tokens that name an administrative unit
// (city/district/neighborhood/road endings). Matching one of these is a
// stronger locality signal than matching an arbitrary token.
var adminSuffixRunes = map[rune]bool{
	'시': true, '도': true, '구': true, '군': true,
	'동': true, '읍': true, '면': true, '리': true,
	'로': true, '길': true, '가': true,
}

// Tokenize splits an address into comparison tokens: every rune that is not
// a letter or digit becomes a separator.
func Tokenize(addr string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, addr)
	return strings.Fields(cleaned)
}

// Cores derives the location-identifying substrings of a venue name.
// The first whitespace token is treated as the brand and dropped (unless it
// is the only token); each remaining token is reduced to its bare place-name
// core by stripping branch suffixes:
//
//	"역삼역점" → "역삼"
//	"서초본점" → "서초"
//	"강남2호점" → "강남"
//
// A token with no recognized suffix is returned unchanged.
func Cores(name string) []string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) > 1 {
		tokens = tokens[1:]
	}

	cores := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		core := stripBranchSuffix(tok)
		if core == "" {
			core = tok
		}
		cores = append(cores, core)
	}
	return cores
}

func stripBranchSuffix(tok string) string {
	stripped := tok
	for _, suf := range branchSuffixes {
		if rest, ok := strings.CutSuffix(stripped, suf); ok {
			if suf == "호점" {
				rest = trimTrailingDigits(rest)
			}
			stripped = rest
			break
		}
	}

	// One trailing location rune at most: "역삼역" → "역삼", never "역".
	runes := []rune(stripped)
	if len(runes) > 1 && locationSuffixRunes[runes[len(runes)-1]] {
		stripped = string(runes[:len(runes)-1])
	}
	return stripped
}

func trimTrailingDigits(s string) string {
	return strings.TrimRightFunc(s, unicode.IsDigit)
}

// Score computes the similarity score of one candidate against precomputed
// target cores and address tokens. nameScore counts target cores that
// substring-match any candidate core (at most one point per target core);
// addrScore awards 2 points per target address token matching a candidate
// token with an administrative-unit ending, 1 point for any other
// case-insensitive substring match in either direction.
//
// Total = nameScore*2 + addrScore.
func Score(c place.Candidate, targetCores, targetAddrTokens []string) int {
	candCores := Cores(c.Name)
	candAddrTokens := Tokenize(c.Address)

	nameScore := 0
	for _, tc := range targetCores {
		for _, cc := range candCores {
			if tokensOverlap(tc, cc) {
				nameScore++
				break
			}
		}
	}

	addrScore := 0
	for _, tt := range targetAddrTokens {
		for _, ct := range candAddrTokens {
			if !tokensOverlap(tt, ct) {
				continue
			}
			if hasAdminSuffix(ct) {
				addrScore += 2
			} else {
				addrScore++
			}
			break
		}
	}

	return nameScore*2 + addrScore
}

// tokensOverlap reports a case-insensitive substring match in either
// direction.
func tokensOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func hasAdminSuffix(tok string) bool {
	runes := []rune(tok)
	if len(runes) == 0 {
		return false
	}
	return adminSuffixRunes[runes[len(runes)-1]]
}

// Rank scores every candidate and returns them in descending score order.
// The sort is stable: ties preserve the input order, because the external
// search ranking itself encodes relevance signals the scorer cannot see.
func Rank(cands []place.Candidate, targetName, targetAddress string) []Scored {
	targetCores := Cores(targetName)
	targetAddrTokens := Tokenize(targetAddress)

	scored := make([]Scored, len(cands))
	for i, c := range cands {
		scored[i] = Scored{Candidate: c, Score: Score(c, targetCores, targetAddrTokens)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Match returns the best candidate for the target name and address.
// An empty candidate list is an error condition for the caller to handle,
// never a silent nil.
func Match(cands []place.Candidate, targetName, targetAddress string) (place.Candidate, error) {
	if len(cands) == 0 {
		return place.Candidate{}, ErrNoCandidates
	}
	return Rank(cands, targetName, targetAddress)[0].Candidate, nil
}
