package parser

// Reference identifies the Reddit post, or the comment within a post, that a
// notification links to.
type Reference struct {
	URL       string `json:"url"`
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id,omitempty"`
	IsComment bool   `json:"is_comment"`
}

// Content is the human-written excerpt recovered from a notification.
type Content struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// Result is a fully resolved notification.
type Result struct {
	Reference Reference `json:"reference"`
	Content   Content   `json:"content"`
	Subject   string    `json:"subject"`
}
