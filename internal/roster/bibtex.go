package roster

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Author fields open with a brace or a quote: author = {...} / author = "..."
var (
	bibAuthorFieldRegex = regexp.MustCompile(`(?i)^\s*author\s*=\s*([\{"])`)
	bibAuthorSplitRegex = regexp.MustCompile(`(?i)\s+and\s+`)
)

// loadBibTeX collects the distinct authors named in a .bib bibliography.
// Every author field across all entries contributes; "Last, First" and
// "First Last" forms both work, protective braces are stripped, and the
// "others" placeholder is ignored.
func loadBibTeX(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer file.Close()

	var entries []Entry
	seen := make(map[string]struct{})
	add := func(e Entry) {
		key := strings.ToLower(e.Name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		entries = append(entries, e)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var field strings.Builder
	depth := 0

	for scanner.Scan() {
		line := scanner.Text()

		if depth > 0 {
			depth = consumeBraces(&field, line, depth)
			if depth == 0 {
				addBibAuthors(field.String(), add)
				field.Reset()
			}
			continue
		}

		m := bibAuthorFieldRegex.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		rest := line[m[3]:] // text after the opening delimiter
		if line[m[2]:m[3]] == `"` {
			if end := strings.IndexByte(rest, '"'); end >= 0 {
				addBibAuthors(rest[:end], add)
			}
			continue
		}
		depth = consumeBraces(&field, rest, 1)
		if depth == 0 {
			addBibAuthors(field.String(), add)
			field.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no author fields in %s", ErrNoEntries, path)
	}
	return entries, nil
}

// consumeBraces copies text into field until the brace depth returns to
// zero. Brace characters themselves are dropped, flattening protective
// groups like {de Vries}. A line break inside the field becomes a space.
func consumeBraces(field *strings.Builder, text string, depth int) int {
	for _, r := range text {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth <= 0 {
				return 0
			}
		default:
			field.WriteRune(r)
		}
	}
	field.WriteRune(' ')
	return depth
}

// addBibAuthors splits one author field on "and" and adds each name.
func addBibAuthors(field string, add func(Entry)) {
	field = strings.Join(strings.Fields(field), " ")
	for _, name := range bibAuthorSplitRegex.Split(field, -1) {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "others") {
			continue
		}
		add(parseBibAuthor(name))
	}
}

// parseBibAuthor builds an Entry from one BibTeX author name. The comma
// form is "Last, First" (a suffix part, as in "Scott, Jr., Walter", is
// dropped); without a comma the name is already "First Last".
func parseBibAuthor(name string) Entry {
	if !strings.Contains(name, ",") {
		words := strings.Fields(name)
		e := Entry{Name: name, LastName: words[len(words)-1]}
		if len(words) > 1 {
			e.FirstInitial = firstInitial(words[0])
		}
		return e
	}

	parts := strings.Split(name, ",")
	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[len(parts)-1])
	return Entry{
		Name:         buildName(first, last),
		LastName:     last,
		FirstInitial: firstInitial(first),
	}
}

func firstInitial(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}
