// Package language canonicalizes the free-form language tags found in media containers
// into two-letter codes and resolves their English display names.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// Undetermined is returned when no tag could be resolved.
	Undetermined = "und"
	// UnknownName is the display name of unresolved codes.
	UnknownName = "Unknown"
)

// exceptions maps tags that do not reduce to the right code by truncation.
// Entries cover three-letter bibliographic/terminology codes and English names
// commonly written by muxers.
var exceptions = map[string]string{
	"eng": "en", "english": "en",
	"jpn": "ja", "japanese": "ja",
	"por": "pt", "portuguese": "pt", "pob": "pt", "pb": "pt",
	"spa": "es", "spanish": "es", "esl": "es",
	"ger": "de", "deu": "de", "german": "de",
	"fre": "fr", "fra": "fr", "french": "fr",
	"ita": "it", "italian": "it",
	"chi": "zh", "zho": "zh", "chinese": "zh",
	"kor": "ko", "korean": "ko",
	"rus": "ru", "russian": "ru",
	"dut": "nl", "nld": "nl", "dutch": "nl",
	"swe": "sv", "swedish": "sv",
	"nor": "no", "nob": "nb", "nno": "nn",
	"pol": "pl", "polish": "pl",
	"tur": "tr", "turkish": "tr",
	"gre": "el", "ell": "el", "greek": "el",
	"cze": "cs", "ces": "cs",
	"slo": "sk", "slk": "sk",
	"rum": "ro", "ron": "ro",
	"per": "fa", "fas": "fa",
	"heb": "he",
	"ind": "id",
	"may": "ms", "msa": "ms",
	"est": "et",
	"lav": "lv",
	"lit": "lt",
	"bul": "bg",
	"baq": "eu", "eus": "eu",
	"ice": "is", "isl": "is",
	"mac": "mk", "mkd": "mk",
	"alb": "sq", "sqi": "sq",
	"arm": "hy", "hye": "hy",
	"geo": "ka", "kat": "ka",
	"ben": "bn",
	"fil": "tl", "tgl": "tl",
	"arabic": "ar",
}

// Canonicalize maps a raw language tag to a two-letter ISO 639-1 code.
// It never fails: tags that cannot be resolved yield Undetermined.
// Canonicalize(Canonicalize(x)) == Canonicalize(x) for every x.
func Canonicalize(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" || tag == Undetermined {
		return Undetermined
	}
	if code, ok := exceptions[tag]; ok {
		tag = code
	}
	if code, ok := twoLetter(tag); ok {
		return code
	}
	if len(tag) > 2 {
		if code, ok := twoLetter(tag[:2]); ok {
			return code
		}
	}
	return Undetermined
}

// twoLetter validates a two-letter code against the ISO 639-1 registry.
func twoLetter(tag string) (string, bool) {
	if len(tag) != 2 {
		return "", false
	}
	base, err := language.ParseBase(tag)
	if err != nil {
		return "", false
	}
	code := base.String()
	if len(code) != 2 {
		return "", false
	}
	return code, true
}

// DisplayName returns the English name of a canonical code, or UnknownName.
func DisplayName(code string) string {
	if code == "" || code == Undetermined {
		return UnknownName
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return UnknownName
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return UnknownName
}

// Set is a set of canonical codes used to filter tracks by preferred language.
type Set map[string]struct{}

// NewSet canonicalizes every raw tag. A list without any non-blank tag yields a nil
// Set, which filters nothing. Any other list filters: an explicit "und" keeps untagged tracks, while a tag
// that cannot be resolved matches no track at all.
func NewSet(raw []string) Set {
	var set Set
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if set == nil {
			set = make(Set, len(raw))
		}
		code := Canonicalize(r)
		if code == Undetermined && !strings.EqualFold(r, Undetermined) {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

// Allows reports whether code passes the filter. A nil set allows everything.
func (s Set) Allows(code string) bool {
	if s == nil {
		return true
	}
	_, ok := s[code]
	return ok
}
