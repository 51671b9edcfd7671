// Package viseme maps ARPAbet phonetic codes onto a small, visually
// distinguishable set of mouth shapes and classifies punctuation pauses.
package viseme

import (
	"sort"

	"github.com/example/go-visemes/internal/text"
)

// Code is a standardized viseme or pause marker.
type Code string

// Viseme alphabet.
const (
	AAA   Code = "AAA"
	AHH   Code = "AHH"
	OHH   Code = "OHH"
	EH    Code = "EH"
	RRR   Code = "RRR"
	IEE   Code = "IEE"
	UUU   Code = "UUU"
	MBP   Code = "MBP"
	FFF   Code = "FFF"
	TTH   Code = "TTH"
	SSS   Code = "SSS"
	Schwa Code = "SCHWA"
)

// Pause markers.
const (
	PauseLong  Code = "PAUSE_LONG"
	PauseMed   Code = "PAUSE_MED"
	PauseShort Code = "PAUSE_SHORT"
)

// arpabet is never written after initialization; use Lookup or Table.
var arpabet = map[string]Code{
	// vowels, grouped by jaw opening and lip rounding
	"AA": AAA, // father
	"AE": AAA, // cat
	"AH": AHH, // cup
	"AO": OHH, // thought
	"AW": AAA, // now
	"AY": AAA, // my
	"EH": EH,  // met
	"ER": RRR, // her
	"EY": EH,  // they
	"IH": IEE, // bit
	"IY": IEE, // beet
	"OW": OHH, // go
	"OY": OHH, // boy
	"UH": UUU, // book
	"UW": UUU, // food

	// bilabial
	"P": MBP,
	"B": MBP,
	"M": MBP,

	// labiodental
	"F": FFF,
	"V": FFF,

	// alveolar, dental
	"T":  TTH,
	"D":  TTH,
	"N":  TTH,
	"TH": TTH,
	"DH": TTH,
	"L":  TTH,

	// velar, glottal, approximants
	"K":  TTH,
	"G":  TTH,
	"NG": TTH,
	"HH": AHH,
	"R":  RRR,
	"W":  UUU,
	"Y":  IEE,

	// sibilants and affricates
	"CH": SSS,
	"JH": SSS,
	"SH": SSS,
	"ZH": SSS,
	"S":  SSS,
	"Z":  SSS,
}

// Alphabet lists every viseme code in table order, SCHWA last.
func Alphabet() []Code {
	return []Code{AAA, AHH, OHH, EH, RRR, IEE, UUU, MBP, FFF, TTH, SSS, Schwa}
}

// Pauses lists the pause markers from longest to shortest.
func Pauses() []Code {
	return []Code{PauseLong, PauseMed, PauseShort}
}

// IsPause reports whether unit is one of the pause markers.
func IsPause[T ~string](unit T) bool {
	switch Code(unit) {
	case PauseLong, PauseMed, PauseShort:
		return true
	}
	return false
}

// Lookup returns the viseme for a stress-free phonetic code. Pause markers
// map to themselves. ok is false when unit has no mapping.
func Lookup(unit string) (Code, bool) {
	if IsPause(unit) {
		return Code(unit), true
	}
	c, ok := arpabet[unit]
	return c, ok
}

// Standardize is Lookup with SCHWA substituted for unmapped units.
func Standardize(unit string) Code {
	if c, ok := Lookup(unit); ok {
		return c
	}
	return Schwa
}

// Table returns a copy of the phonetic-code table.
func Table() map[string]Code {
	out := make(map[string]Code, len(arpabet))
	for k, v := range arpabet {
		out[k] = v
	}
	return out
}

// Phones returns the mapped phonetic codes in sorted order.
func Phones() []string {
	out := make([]string, 0, len(arpabet))
	for k := range arpabet {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PauseFor returns the pause marker for a punctuation token kind.
// ok is false for word tokens.
func PauseFor(kind text.Kind) (Code, bool) {
	switch kind {
	case text.KindSentenceEnd:
		return PauseLong, true
	case text.KindClauseBreak:
		return PauseMed, true
	case text.KindShortBreak:
		return PauseShort, true
	default:
		return "", false
	}
}
