package domain

// SpecialType tags which intent (or policy condition) produced the response.
type SpecialType string

const (
	SpecialNone         SpecialType = ""
	SpecialCategoryMenu SpecialType = "category_menu"
	SpecialConsultant   SpecialType = "consultant"
	SpecialEligibility  SpecialType = "eligibility"
	SpecialAsylum       SpecialType = "asylum"
	SpecialNoInfo       SpecialType = "no_info"
)

type Source struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Author         string `json:"author"`
	Date           string `json:"date"`
	ContentPreview string `json:"content_preview"`
}

type SourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ActionButton struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type"`
}

type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChatResponse is the wire shape returned to the /ask caller.
type ChatResponse struct {
	Answer          string         `json:"answer"`
	Sources         []Source       `json:"sources"`
	SourceLinks     []SourceLink   `json:"source_links"`
	ResponseTime    string         `json:"response_time"`
	ChunksUsed      int            `json:"chunks_used"`
	Model           string         `json:"model"`
	Timestamp       string         `json:"timestamp"`
	ActionButtons   []ActionButton `json:"action_buttons,omitempty"`
	SpecialResponse bool           `json:"special_response"`
	SpecialType     SpecialType    `json:"special_type,omitempty"`
	Categories      []Category     `json:"categories,omitempty"`
}
