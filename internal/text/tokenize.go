package text

import (
	"strings"
	"unicode"
)

// Kind classifies a token.
type Kind int

const (
	KindWord        Kind = iota
	KindSentenceEnd      // . ! ?
	KindClauseBreak      // , ; :
	KindShortBreak       // -
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "WORD"
	case KindSentenceEnd:
		return "SENTENCE_END"
	case KindClauseBreak:
		return "CLAUSE_BREAK"
	case KindShortBreak:
		return "SHORT_BREAK"
	default:
		return "UNKNOWN"
	}
}

// Token is one word or punctuation mark taken from the input text.
type Token struct {
	Text string
	Kind Kind
}

// IsWordRune reports whether r can be part of a word: letters, digits,
// combining marks and underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// IsApostrophe reports whether r is an ASCII or typographic apostrophe.
func IsApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// PunctuationKind returns the token kind of a pause-bearing punctuation rune.
func PunctuationKind(r rune) (Kind, bool) {
	switch r {
	case '.', '!', '?':
		return KindSentenceEnd, true
	case ',', ';', ':':
		return KindClauseBreak, true
	case '-':
		return KindShortBreak, true
	default:
		return 0, false
	}
}

type scanState int

const (
	stateGap scanState = iota
	stateWord
)

// Tokenize splits s into word and punctuation tokens in source order.
// Whitespace separates tokens and is never emitted; any other rune that is
// neither part of a word nor pause punctuation is dropped.
func Tokenize(s string) []Token {
	tokens := make([]Token, 0, len(s)/4)

	state := stateGap
	start := 0

	for i, r := range s {
		if IsWordRune(r) || IsApostrophe(r) {
			if state == stateGap {
				state = stateWord
				start = i
			}
			continue
		}

		if state == stateWord {
			tokens = appendWord(tokens, s[start:i])
			state = stateGap
		}

		if kind, ok := PunctuationKind(r); ok {
			tokens = append(tokens, Token{Text: string(r), Kind: kind})
		}
	}

	if state == stateWord {
		tokens = appendWord(tokens, s[start:])
	}

	return tokens
}

// appendWord trims apostrophes hanging off either end of the run so that
// quoted words ('hello') keep only the word itself.
func appendWord(tokens []Token, run string) []Token {
	w := strings.TrimFunc(run, IsApostrophe)
	if w == "" {
		return tokens
	}
	return append(tokens, Token{Text: w, Kind: KindWord})
}
