package httpcontroller

import (
	"html/template"

	"github.com/amsot/twfcode/internal/wordpress"
)

// snippetCard is the list representation of a snippet.
type snippetCard struct {
	Title      string
	URL        string
	Excerpt    string
	Difficulty wordpress.Difficulty
	Image      string
	Category   string
	Date       wordpress.Date
}

func newSnippetCard(s *wordpress.Snippet) snippetCard {
	card := snippetCard{
		Title:      s.PlainTitle(),
		URL:        s.Path(),
		Excerpt:    s.ACF.Excerpt,
		Difficulty: s.ACF.Difficulty.Normalize(),
		Image:      s.FeaturedImageURL(),
		Date:       s.Date,
	}
	if cat, ok := s.PrimaryCategory(); ok {
		card.Category = plainText(cat.Name)
	}
	return card
}

func snippetCards(snippets []wordpress.Snippet) []snippetCard {
	cards := make([]snippetCard, 0, len(snippets))
	for i := range snippets {
		cards = append(cards, newSnippetCard(&snippets[i]))
	}
	return cards
}

type homeView struct {
	Latest     []snippetCard
	Categories termsView
}

type archiveView struct {
	Snippets []snippetCard
}

type articleView struct {
	Title      string
	URL        string // absolute, for sharing
	Date       wordpress.Date
	Difficulty wordpress.Difficulty
	Image      string
	Author     wordpress.Author
	Category   *wordpress.Term
	Tags       termsView
	Body       template.HTML
	Related    []snippetCard
}

type lightboxView struct {
	Title       string
	Index       int
	URL         string
	Alt         string
	Caption     string
	Percent     int
	ZoomInHref  string
	ZoomOutHref string
	CanZoomIn   bool
	CanZoomOut  bool
	CloseHref   string
}

type termsView struct {
	Heading  string
	Taxonomy wordpress.Taxonomy
	Terms    []wordpress.Term
}

type termView struct {
	Heading  string
	Taxonomy wordpress.Taxonomy
	Term     wordpress.Term
	Snippets []snippetCard
}

type authorView struct {
	Author   wordpress.Author
	Snippets []snippetCard
}

type searchView struct {
	Query    string
	Searched bool
	Results  []snippetCard
}

type errorView struct {
	Status      int
	Heading     string
	Message     string
	Suggestions termsView
}
