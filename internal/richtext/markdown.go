package richtext

import "strings"

// Markdown renders t as inline markdown. Bold, italic, strike, code and link
// decorations become markdown syntax; mentions render through resolve and
// are dropped when unresolved.
func (t Text) Markdown(resolve Resolver) string {
	var b strings.Builder
	for _, seg := range t {
		text := seg.Text
		if seg.IsMention() {
			v, ok := seg.mentionValue(resolve)
			if !ok {
				continue
			}
			text = v
		}
		b.WriteString(seg.markdown(text))
	}
	return b.String()
}

func (s Segment) markdown(text string) string {
	if text == "" || len(s.Decorations) == 0 {
		return text
	}

	var link string
	code := false
	var open, closing []string
	for _, d := range s.Decorations {
		switch d.Tag {
		case TagBold:
			open, closing = append(open, "**"), append([]string{"**"}, closing...)
		case TagItalic:
			open, closing = append(open, "_"), append([]string{"_"}, closing...)
		case TagStrike:
			open, closing = append(open, "~~"), append([]string{"~~"}, closing...)
		case TagCode:
			code = true
		case TagLink:
			link, _ = d.StringArg()
		}
	}

	if code {
		text = "`" + text + "`"
	}
	if link != "" {
		text = "[" + text + "](" + link + ")"
	}

	// Markdown emphasis cannot wrap surrounding whitespace.
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(open) == 0 {
		return text
	}
	lead := text[:strings.Index(text, trimmed)]
	trail := text[len(lead)+len(trimmed):]
	return lead + strings.Join(open, "") + trimmed + strings.Join(closing, "") + trail
}
