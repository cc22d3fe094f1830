package transcript

import (
	"errors"
	"strings"
)

// SelectionStage records which step of the fallback policy produced the choice.
type SelectionStage string

const (
	StageTarget   SelectionStage = "target"   // requested language present
	StageFallback SelectionStage = "fallback" // first FallbackLanguages entry present
	StageAny      SelectionStage = "any"      // neither; first track's language
)

// Selection is the single track chosen for a request.
type Selection struct {
	Track CaptionTrack
	Stage SelectionStage
}

// originRank orders origins best-first. Unknown origins sort after all known ones.
var originRank = map[Origin]int{
	OriginOfficial:          0,
	OriginAutoGenerated:     1,
	OriginMachineTranslated: 2,
}

func rankOf(o Origin) int {
	if r, ok := originRank[o]; ok {
		return r
	}
	return len(originRank)
}

// ErrEmptyCatalog is returned by Select for a catalog without tracks.
var ErrEmptyCatalog = errors.New("caption catalog is empty")

// Select picks the best track for targetLang:
//
//  1. tracks whose code equals targetLang exactly (ignoring case and the "a." prefix);
//  2. else tracks whose language key matches the target's;
//  3. else the first FallbackLanguages entry that has a track;
//  4. else the language of the first track in the catalog.
//
// Among the candidates, official beats auto-generated beats machine-translated;
// on equal origin a track whose code equals the preferred code beats a regional
// variant, and remaining ties go to the track listed first.
func Select(catalog TrackCatalog, targetLang string) (Selection, error) {
	if len(catalog) == 0 {
		return Selection{}, ErrEmptyCatalog
	}

	var exact []CaptionTrack
	byLang := make(map[string][]CaptionTrack)
	for _, t := range catalog {
		if targetLang != "" && exactCode(t, targetLang) {
			exact = append(exact, t)
		}
		lang := t.Language
		if lang == "" {
			lang = BaseLanguage(t.Code)
		}
		byLang[lang] = append(byLang[lang], t)
	}

	if len(exact) > 0 {
		return Selection{Track: bestOf(exact, targetLang), Stage: StageTarget}, nil
	}
	if target := BaseLanguage(targetLang); target != "" {
		if candidates, ok := byLang[target]; ok {
			return Selection{Track: bestOf(candidates, targetLang), Stage: StageTarget}, nil
		}
	}

	for _, lang := range FallbackLanguages {
		if candidates, ok := byLang[lang]; ok {
			return Selection{Track: bestOf(candidates, lang), Stage: StageFallback}, nil
		}
	}

	first := catalog[0].Language
	if first == "" {
		first = BaseLanguage(catalog[0].Code)
	}
	return Selection{Track: bestOf(byLang[first], first), Stage: StageAny}, nil
}

// bestOf returns the highest-ranked track among same-language candidates.
// candidates must be non-empty and in catalog order.
func bestOf(candidates []CaptionTrack, preferredCode string) CaptionTrack {
	best := candidates[0]
	for _, t := range candidates[1:] {
		if better(t, best, preferredCode) {
			best = t
		}
	}
	return best
}

// better reports whether a strictly outranks b. Equal rank keeps b, the earlier track.
func better(a, b CaptionTrack, preferredCode string) bool {
	if ra, rb := rankOf(a.Origin), rankOf(b.Origin); ra != rb {
		return ra < rb
	}
	ea, eb := exactCode(a, preferredCode), exactCode(b, preferredCode)
	return ea && !eb
}

func exactCode(t CaptionTrack, code string) bool {
	c := strings.TrimPrefix(strings.TrimPrefix(t.Code, "a."), ".")
	return strings.EqualFold(c, code)
}
