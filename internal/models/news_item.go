package models

// NewsItem is a published news article as served by the backend.
type NewsItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Content  string `json:"content"`
	PDF      string `json:"pdf,omitempty"`
}

// NewsSummary is a news list entry; it carries an excerpt instead of the
// full HTML content.
type NewsSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	PDF      string `json:"pdf,omitempty"`
}
