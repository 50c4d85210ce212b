package models

// DateLayout is the stored post timestamp format: UTC, second precision.
const DateLayout = "2006-01-02T15:04:05Z"

// Post is a published article. Title holds the uppercase key while stored
// and the title-cased form once returned by the posts package.
type Post struct {
	ID    string `json:"-"     bson:"-"`
	Title string `json:"title" bson:"title"`
	Body  string `json:"body"  bson:"body"`
	Date  string `json:"date"  bson:"date"`
}
