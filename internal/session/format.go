// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// FormatScore renders a relevance score with four decimal places.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

// FormatText writes the state as a terminal view: the error line if set,
// then each result with its title, link, abstract and score.
func FormatText(st State, w io.Writer) {
	if st.Loading {
		fmt.Fprintln(w, st.SubmitLabel())
	}
	if st.Error != "" {
		fmt.Fprintln(w, st.Error)
	}
	if len(st.Results) == 0 {
		return
	}

	fmt.Fprintln(w, "Results:")
	for i, r := range st.Results {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(w, "   %s\n", r.URL)
		}
		for _, line := range wrap(r.Abstract, 76) {
			fmt.Fprintf(w, "   %s\n", line)
		}
		fmt.Fprintf(w, "   Score: %s\n", FormatScore(r.Score))
	}
}

// FormatJSON writes the state as indented JSON to w.
func FormatJSON(st State, w io.Writer) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

// wrap splits s into lines of at most width bytes, breaking on spaces.
// A single word longer than width gets its own line.
func wrap(s string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
