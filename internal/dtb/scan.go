// =============================================================================
// DTB to X Converter - Line Scanners
// =============================================================================
//
// Each scanner receives the body of a line: the text after the leading tabs,
// without the trailing newline. The body never contains a newline.
//
// GROUP / TEAM BODY:
//   strict : [NAME " "] "- " [NOTE]
//   loose  : [NAME " "] "-" [" "] [NOTE]
//
// PLAYER BODY:
//   strict : [REG " "] "- " [SURNAME] " " [NAME] ", " [DOB] " "+ ", " [NOTE]
//   loose  : [REG " "] "- " [SURNAME] " " [NAME] [","] [" "] [DOB] " "+ [","] [" "] [NOTE]
//
//   REG     : decimal digits
//   SURNAME : no space, no comma
//   NAME    : no comma (NAME of a group or team: no tab)
//   DOB     : digits and dots
//
// Where the grammar is ambiguous the longest NAME wins, and optional
// punctuation is consumed when present.
//
// =============================================================================

package dtb

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mode selects how much punctuation a line must carry.
type Mode int

const (
	// Strict requires every separator and its adjoining space.
	Strict Mode = iota

	// Loose tolerates missing spaces around the dash and missing commas
	// between player fields.
	Loose
)

func (m Mode) String() string {
	if m == Loose {
		return "loose"
	}
	return "strict"
}

// optional wraps s as a captured Field, or None when s is empty.
// The optional trailing captures of the grammar match one or more
// characters, so an empty remainder means the field was not captured.
func optional(s string) Field {
	if s == "" {
		return None()
	}
	return Some(s)
}

// =============================================================================
// GROUP AND TEAM
// =============================================================================

// scanNamed parses the shared Group/Team body.
func scanNamed(body string, mode Mode) (name, note Field, detail string, ok bool) {
	sep := " - "
	if mode == Loose {
		sep = " -"
	}

	// NAME cannot contain a tab, so a separator past the first tab is unusable.
	limit := strings.IndexByte(body, '\t')
	if limit < 0 {
		limit = len(body)
	}

	for p := min(limit, len(body)-len(sep)); p >= 0; p-- {
		if strings.HasPrefix(body[p:], sep) {
			return Some(body[:p]), namedNote(body[p+len(sep):], mode), "", true
		}
	}

	// No NAME: the body starts with the dash.
	switch {
	case mode == Strict && strings.HasPrefix(body, "- "):
		return None(), optional(body[2:]), "", true
	case mode == Loose && strings.HasPrefix(body, "-"):
		return None(), namedNote(body[1:], mode), "", true
	}
	return None(), None(), "missing separator", false
}

// namedNote turns the text after the separator into the note.
func namedNote(rest string, mode Mode) Field {
	if mode == Loose {
		rest = strings.TrimPrefix(rest, " ")
	}
	return optional(rest)
}

// =============================================================================
// PLAYER
// =============================================================================

// playerFields is the outcome of scanning a player body.
type playerFields struct {
	registrationNumber Field
	surname            Field
	name               Field
	dateOfBirth        Field
	note               Field
}

// scanPlayer parses a Player body.
func scanPlayer(body string, mode Mode) (playerFields, string, bool) {
	var f playerFields

	// REG " - " or "- "
	rest, ok := "", false
	digits := runBounds(body, unicode.IsDigit)
	if k := digits[len(digits)-1]; strings.HasPrefix(body[k:], " - ") {
		f.registrationNumber = Some(body[:k])
		rest, ok = body[k+3:], true
	} else if strings.HasPrefix(body, "- ") {
		rest, ok = body[2:], true
	}
	if !ok {
		return f, "missing separator", false
	}

	// SURNAME " "
	m := strings.IndexAny(rest, " ,")
	if m < 0 || rest[m] != ' ' {
		return f, "missing space after surname", false
	}
	f.surname = optional(rest[:m])
	rest = rest[m+1:]

	if mode == Strict {
		return scanPlayerStrict(rest, f)
	}
	return scanPlayerLoose(rest, f)
}

// scanPlayerStrict parses NAME ", " [DOB] " "+ ", " [NOTE].
func scanPlayerStrict(rest string, f playerFields) (playerFields, string, bool) {
	c := strings.IndexByte(rest, ',')
	if c < 0 || !strings.HasPrefix(rest[c:], ", ") {
		return f, "missing comma after name", false
	}
	f.name = optional(rest[:c])
	rest = rest[c+2:]

	dob := runBounds(rest, isDateRune)
	d := dob[len(dob)-1]
	f.dateOfBirth = optional(rest[:d])
	rest = rest[d:]

	spaces := len(rest) - len(strings.TrimLeft(rest, " "))
	if spaces == 0 {
		return f, "missing space after date of birth", false
	}
	rest = rest[spaces:]

	if !strings.HasPrefix(rest, ", ") {
		return f, "missing comma before note", false
	}
	f.note = optional(rest[2:])
	return f, "", true
}

// scanPlayerLoose parses [NAME] [","] [" "] [DOB] " "+ [","] [" "] [NOTE].
//
// Candidates are tried longest NAME first, then with the optional comma and
// space consumed before skipped, then longest DOB first. The first candidate
// followed by at least one space wins; whatever follows the spaces is always
// a valid note tail.
func scanPlayerLoose(rest string, f playerFields) (playerFields, string, bool) {
	maxName := strings.IndexByte(rest, ',')
	if maxName < 0 {
		maxName = len(rest)
	}

	for l := maxName; l >= 0; l-- {
		if l < len(rest) && !utf8.RuneStart(rest[l]) {
			continue
		}
		afterName := rest[l:]

		for _, comma := range optionalPrefixes(afterName, ",") {
			afterComma := afterName[comma:]

			for _, space := range optionalPrefixes(afterComma, " ") {
				afterSpace := afterComma[space:]

				dob := runBounds(afterSpace, isDateRune)
				for i := len(dob) - 1; i >= 0; i-- {
					tail := afterSpace[dob[i]:]
					if !strings.HasPrefix(tail, " ") {
						continue
					}

					f.name = optional(rest[:l])
					f.dateOfBirth = optional(afterSpace[:dob[i]])

					tail = strings.TrimLeft(tail, " ")
					tail = strings.TrimPrefix(tail, ",")
					tail = strings.TrimPrefix(tail, " ")
					f.note = optional(tail)
					return f, "", true
				}
			}
		}
	}
	return f, "malformed player fields", false
}

// =============================================================================
// HELPERS
// =============================================================================

// runBounds returns the byte offsets of every rune boundary inside the
// leading run of s whose runes satisfy pred, starting with 0. The last
// element is the length of the run.
func runBounds(s string, pred func(rune) bool) []int {
	bounds := []int{0}
	for i, r := range s {
		if !pred(r) {
			break
		}
		bounds = append(bounds, i+utf8.RuneLen(r))
	}
	return bounds
}

// optionalPrefixes lists the lengths to try for an optional prefix p of s:
// consumed first when present, skipped otherwise.
func optionalPrefixes(s, p string) []int {
	if strings.HasPrefix(s, p) {
		return []int{len(p), 0}
	}
	return []int{0}
}

func isDateRune(r rune) bool {
	return r == '.' || unicode.IsDigit(r)
}
