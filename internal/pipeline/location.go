package pipeline

import (
	"regexp"
	"strconv"

	"shelfsort/internal"
	"shelfsort/internal/util"
)

var (
	rackPattern  = regexp.MustCompile(`(?i)rack\s*(\d+)`)
	shelfPattern = regexp.MustCompile(`(?i)shelf\s*(\d+)`)
)

// ExtractLocation parses free text like "Rack 3, Shelf 12" into
// coordinates. Either coordinate is nil when it cannot be found.
func ExtractLocation(text string) internal.Location {
	if text == "" {
		return internal.Location{}
	}
	text = util.OneLine(text)
	return internal.Location{
		Rack:  firstNumber(rackPattern, text),
		Shelf: firstNumber(shelfPattern, text),
	}
}

func firstNumber(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// locationFrom accepts either the free-text column or an already
// structured {"rack": .., "shelf": ..} object.
func locationFrom(v any) internal.Location {
	switch x := v.(type) {
	case nil:
		return internal.Location{}
	case map[string]any:
		return internal.Location{Rack: coordinate(x["rack"]), Shelf: coordinate(x["shelf"])}
	case string:
		return ExtractLocation(x)
	default:
		return ExtractLocation(util.Text(x))
	}
}

func coordinate(v any) *int {
	if v == nil {
		return nil
	}
	n, ok := util.Int(v)
	if !ok {
		return nil
	}
	return &n
}
