package model

import "time"

type Project struct {
	ID           string      `gorm:"primaryKey;size:21" json:"id"`
	UserID       string      `gorm:"index;size:16;not null" json:"user"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Description  string      `gorm:"size:500" json:"description"`
	Tags         StringSlice `gorm:"not null" json:"tags"`
	Notes        string      `json:"notes"`
	Snippets     []Snippet   `gorm:"constraint:OnDelete:CASCADE" json:"snippets"`
	Links        []Link      `gorm:"constraint:OnDelete:CASCADE" json:"links"`
	Files        []File      `gorm:"constraint:OnDelete:CASCADE" json:"files"`
	LastAccessed time.Time   `json:"lastAccessed"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type Snippet struct {
	ID        string    `gorm:"primaryKey;size:16" json:"id"`
	ProjectID string    `gorm:"index;size:21;not null" json:"-"`
	Position  int       `gorm:"not null;default:0" json:"-"` // Order inside the project
	Title     string    `gorm:"not null" json:"title"`
	Code      string    `gorm:"not null" json:"code"`
	Language  string    `gorm:"not null" json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

type Link struct {
	ID        string    `gorm:"primaryKey;size:16" json:"id"`
	ProjectID string    `gorm:"index;size:21;not null" json:"-"`
	Position  int       `gorm:"not null;default:0" json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicProject is what the unauthenticated share view returns. It never
// carries the owner.
type PublicProject struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tags        StringSlice `json:"tags"`
	Notes       string      `json:"notes"`
	Links       []Link      `json:"links"`
	Snippets    []Snippet   `json:"snippets"`
	Files       []File      `json:"files"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (p *Project) Public() PublicProject {
	return PublicProject{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		Notes:       p.Notes,
		Links:       p.Links,
		Snippets:    p.Snippets,
		Files:       p.Files,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// HasTag reports whether tag is already on the project
func (p *Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}

	return false
}
