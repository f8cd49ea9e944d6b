package models

// Result is the extracted content of one fetched page. A failed fetch still
// produces a Result with empty Text; the adapter boundary never throws.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	RenderMS int    `json:"render_ms"`
}
