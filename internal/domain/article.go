package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Article
var (
	ErrEmptyArticleID     = errors.New("article ID cannot be empty")
	ErrEmptyArticleUserID = errors.New("article user ID cannot be empty")
	ErrEmptyArticleTitle  = errors.New("article title cannot be empty")
	ErrEmptyArticleText   = errors.New("article text cannot be empty")
)

// Article represents a user-owned text. Source articles are created by the
// user through the API layer; translated articles are created only by the
// translation orchestrator and carry a back-reference to their source.
type Article struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Text  string    `json:"text"`

	UserID uuid.UUID `json:"user_id"`

	// LanguageID is the language the article is written in. Nil means the
	// language is unknown and left to the provider to detect.
	LanguageID *int `json:"language_id,omitempty"`

	// OriginalArticleID links a translated article back to its source.
	// Nil for source articles.
	OriginalArticleID *uuid.UUID `json:"original_article_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewTranslatedArticle creates the article produced by a successful
// translation. It is owned by the same user as the source article, written
// in the target language, and linked back to the source.
// Returns an error if validation fails.
func NewTranslatedArticle(source *Article, targetLanguageID int, title, text string) (*Article, error) {
	langID := targetLanguageID
	sourceID := source.ID

	article := &Article{
		ID:                uuid.New(),
		Title:             title,
		Text:              text,
		UserID:            source.UserID,
		LanguageID:        &langID,
		OriginalArticleID: &sourceID,
		CreatedAt:         time.Now().UTC(),
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	return article, nil
}

// Validate checks if the Article has valid data.
// Returns an error if any field fails validation.
func (a *Article) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyArticleID
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyArticleUserID
	}

	if a.Title == "" {
		return ErrEmptyArticleTitle
	}

	if a.Text == "" {
		return ErrEmptyArticleText
	}

	return nil
}

// IsTranslation reports whether the article was produced by a translation
// task rather than authored directly.
func (a *Article) IsTranslation() bool {
	return a.OriginalArticleID != nil
}
