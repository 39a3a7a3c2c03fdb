package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxLen upper bound for a slug including any suffix
	DefaultMaxLen = 120
	fallbackBase  = "item"
	maxAttempts   = 50
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)

	// letters NFD does not decompose into base + mark
	foldReplacer = strings.NewReplacer("ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "đ", "d", "ł", "l")

	ErrExhausted = errors.New("slug: could not find a free value")
)

// ExistsFunc reports whether a slug is already taken in the caller's namespace
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make normalizes a title into [a-z0-9-]: diacritics stripped, runs of other
// characters collapsed into a single hyphen, hyphens trimmed at both ends.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = foldReplacer.Replace(s)

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > DefaultMaxLen {
		s = strings.Trim(s[:DefaultMaxLen], "-")
	}
	if s == "" {
		s = fallbackBase
	}
	return s
}

// Unique Make(title), suffixed until exists reports it free
func Unique(ctx context.Context, title string, exists ExistsFunc) (string, error) {
	return uniqueAt(ctx, title, exists, time.Now())
}

func uniqueAt(ctx context.Context, title string, exists ExistsFunc, now time.Time) (string, error) {
	base := Make(title)

	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	candidate := withSuffix(base, strconv.FormatInt(now.UnixMilli(), 36))
	for i := 2; i < maxAttempts+2; i++ {
		taken, err = exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = withSuffix(base, fmt.Sprintf("%d", i))
	}

	return "", ErrExhausted
}

func withSuffix(base, suffix string) string {
	keep := DefaultMaxLen - len(suffix) - 1
	if keep < 1 {
		keep = 1
	}
	if len(base) > keep {
		base = strings.Trim(base[:keep], "-")
	}
	return base + "-" + suffix
}
