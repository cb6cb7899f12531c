package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WritePO renders the catalog in gettext PO syntax: a header entry carrying
// the language, then one message block per entry with `#:` location comments.
func WritePO(w io.Writer, cat *Catalog) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "msgid \"\"\nmsgstr \"Language: %s\\n\"\n", cat.Locale)
	for _, entry := range cat.Entries {
		fmt.Fprintln(bw)
		for _, loc := range entry.Locations {
			fmt.Fprintf(bw, "#: %s\n", loc.String())
		}
		fmt.Fprintf(bw, "msgid %s\n", quotePO(entry.MsgID))
		fmt.Fprintf(bw, "msgstr %s\n", quotePO(entry.MsgStr))
	}
	return bw.Flush()
}

// ReadPO parses gettext PO syntax back into a catalog. Unknown comment lines
// are ignored; multi-line string continuations are concatenated. The header
// entry's Language field sets the catalog locale unless the caller already
// knows better and passes a non-empty locale.
func ReadPO(r io.Reader, locale string) (*Catalog, error) {
	cat := &Catalog{Locale: locale}

	var (
		locations []Location
		msgID     string
		msgStr    string
		inEntry   bool
		active    *string
	)

	flush := func() {
		if !inEntry {
			return
		}
		if msgID == "" {
			if cat.Locale == "" {
				cat.Locale = headerLanguage(msgStr)
			}
		} else {
			cat.Entries = append(cat.Entries, &Entry{
				MsgID:     msgID,
				MsgStr:    msgStr,
				Locations: locations,
			})
		}
		locations = nil
		msgID = ""
		msgStr = ""
		inEntry = false
		active = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#:"):
			for _, ref := range strings.Fields(strings.TrimPrefix(line, "#:")) {
				loc, err := ParseLocation(ref)
				if err != nil {
					return nil, fmt.Errorf("catalog: line %d: %w", lineNo, err)
				}
				locations = append(locations, loc)
			}
		case strings.HasPrefix(line, "#"):
			// Other comment kinds carry no data we use.
		case strings.HasPrefix(line, "msgid "):
			value, err := unquotePO(strings.TrimPrefix(line, "msgid "))
			if err != nil {
				return nil, fmt.Errorf("catalog: line %d: %w", lineNo, err)
			}
			inEntry = true
			msgID = value
			active = &msgID
		case strings.HasPrefix(line, "msgstr "):
			value, err := unquotePO(strings.TrimPrefix(line, "msgstr "))
			if err != nil {
				return nil, fmt.Errorf("catalog: line %d: %w", lineNo, err)
			}
			inEntry = true
			msgStr = value
			active = &msgStr
		case strings.HasPrefix(line, `"`):
			if active == nil {
				return nil, fmt.Errorf("catalog: line %d: continuation outside message", lineNo)
			}
			value, err := unquotePO(line)
			if err != nil {
				return nil, fmt.Errorf("catalog: line %d: %w", lineNo, err)
			}
			*active += value
		default:
			return nil, fmt.Errorf("catalog: line %d: unexpected %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return cat, nil
}

func headerLanguage(header string) string {
	for _, line := range strings.Split(header, "\n") {
		if value, ok := strings.CutPrefix(strings.TrimSpace(line), "Language:"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func quotePO(value string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquotePO(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || !strings.HasPrefix(raw, `"`) || !strings.HasSuffix(raw, `"`) {
		return "", fmt.Errorf("catalog: invalid string token %q", raw)
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	escaped := false
	for _, r := range body {
		if escaped {
			switch r {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '"' {
			return "", fmt.Errorf("catalog: unescaped quote in %q", raw)
		}
		b.WriteRune(r)
	}
	if escaped {
		return "", fmt.Errorf("catalog: dangling escape in %q", raw)
	}
	return b.String(), nil
}
