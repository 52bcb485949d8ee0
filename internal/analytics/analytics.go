package analytics

import (
	"strings"

	"newsdash/pkg/news"
)

type Summary struct {
	Authors map[string]int
	Types   map[news.SourceType]int
	Total   int
}

// Summarize counts articles per author and per source type. Feed authors of
// the form "Name <email>" are counted under Name.
func Summarize(articles []news.Article) Summary {
	s := Summary{
		Authors: map[string]int{},
		Types:   map[news.SourceType]int{},
		Total:   len(articles),
	}

	for _, a := range articles {
		s.Authors[authorName(a.Author)]++
		s.Types[a.Type]++
	}

	return s
}

func authorName(author *string) string {
	if author == nil {
		return news.UnknownAuthor
	}
	name := strings.TrimSpace(strings.SplitN(*author, "<", 2)[0])
	if name == "" {
		return news.UnknownAuthor
	}
	return name
}
