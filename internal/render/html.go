package render

import (
	"fmt"
	"html"
	"iter"
)

// AttributeCallback returns the HTML attributes (classes, inline styles,
// whatever the caller wants) for a span wrapping highlight h in a region
// of languageName.
type AttributeCallback func(h Highlight, languageName string) string

func addText(source string, hs []Highlight, languageName string, callback AttributeCallback) string {
	output := ""
	for _, c := range source {
		if c == '\r' {
			continue
		}
		if c == '\n' {
			for range len(hs) {
				output += endHighlight()
			}
			output += string(c)
			for _, h := range hs {
				output += startHighlight(h, languageName, callback)
			}
			continue
		}
		output += html.EscapeString(string(c))
	}
	return output
}

func startHighlight(h Highlight, languageName string, callback AttributeCallback) string {
	output := "<span"
	var attributes string
	if callback != nil {
		attributes = callback(h, languageName)
	}
	if len(attributes) > 0 {
		output += " " + attributes
	}
	output += ">"
	return output
}

func endHighlight() string {
	return "</span>"
}

// Render renders source through events, wrapping each highlighted region
// in a <span>; callback supplies that span's attributes. It's the
// teacher's own HTML renderer, unchanged except for consuming this
// package's Event stream instead of the teacher's own.
func Render(events iter.Seq2[Event, error], source string, callback AttributeCallback) (string, error) {
	output := ""

	var highlights []Highlight
	var languageName string

	for event, err := range events {
		if err != nil {
			return "", fmt.Errorf("render: %w", err)
		}

		switch e := event.(type) {
		case EventStart:
			highlights = append(highlights, e.Highlight)
			languageName = e.LanguageName
			output += startHighlight(e.Highlight, languageName, callback)
		case EventEnd:
			highlights = highlights[:len(highlights)-1]
			output += endHighlight()
		case EventSource:
			output += addText(source[e.Start:e.End], highlights, languageName, callback)
		}
	}

	return output, nil
}
