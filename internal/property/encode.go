package property

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aidanlsb/ntn/internal/dates"
	"github.com/aidanlsb/ntn/internal/notionid"
	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/schema"
)

// Encode converts a command-line value into the wire payload for a property
// of type typ. An empty input clears the property. Computed types cannot be
// written.
func Encode(typ, input string, now time.Time) (richtext.Text, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return richtext.Text{}, nil
	}

	switch typ {
	case schema.TypeNumber:
		if _, err := strconv.ParseFloat(input, 64); err != nil {
			return nil, fmt.Errorf("invalid number %q", input)
		}
		return richtext.FromString(input), nil

	case schema.TypeMultiSelect:
		return richtext.FromString(strings.Join(splitOptions(input), ",")), nil

	case schema.TypeCheckbox:
		b, err := parseBool(input)
		if err != nil {
			return nil, err
		}
		return richtext.Checkbox(b), nil

	case schema.TypeDate:
		return encodeDate(input, now)

	case schema.TypeRelation:
		ids, err := normalizeIDs(input)
		if err != nil {
			return nil, err
		}
		return richtext.RelationRefs(ids), nil

	case schema.TypePerson:
		ids, err := normalizeIDs(input)
		if err != nil {
			return nil, err
		}
		return richtext.UserRefs(ids), nil

	case schema.TypeRollup, schema.TypeFormula, schema.TypeAutoIncrementID:
		return nil, fmt.Errorf("%s properties are computed and cannot be set", typ)

	default:
		return richtext.FromString(input), nil
	}
}

// encodeDate accepts "DATE" or "START..END" where each side is YYYY-MM-DD or
// today/yesterday/tomorrow.
func encodeDate(input string, now time.Time) (richtext.Text, error) {
	startArg, endArg, isRange := strings.Cut(input, "..")

	start, err := dates.ParseDateArg(startArg, now)
	if err != nil {
		return nil, err
	}
	if !isRange {
		return richtext.DateRange(start.Format(dates.DateLayout), ""), nil
	}

	end, err := dates.ParseDateArg(endArg, now)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("date range ends before it starts: %s", input)
	}
	return richtext.DateRange(start.Format(dates.DateLayout), end.Format(dates.DateLayout)), nil
}

func normalizeIDs(input string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := notionid.Normalize(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1", "on", "checked":
		return true, nil
	case "no", "n", "false", "0", "off", "unchecked":
		return false, nil
	}
	return false, fmt.Errorf("invalid checkbox value %q, use yes or no", s)
}
