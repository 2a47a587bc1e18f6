package service

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/util"
	"bitwise74/devdoc-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const defaultLanguage = "javascript"

var (
	errProjectNotFound = apperr.NotFound("Project not found")
	errSnippetNotFound = apperr.NotFound("Snippet not found")
	errLinkNotFound    = apperr.NotFound("Link not found")
)

var sortColumns = map[string]string{
	"updatedAt":    "updated_at",
	"createdAt":    "created_at",
	"name":         "name",
	"lastAccessed": "last_accessed",
}

type ListOptions struct {
	Search string
	Sort   string // updatedAt, createdAt, name or lastAccessed
	Order  string // asc or desc
	Tag    string
}

type ProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes"`
}

// ProjectPatch only touches the fields that are set. Links and Snippets
// replace the whole collection.
type ProjectPatch struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Tags        *[]string       `json:"tags"`
	Notes       *string         `json:"notes"`
	Links       *[]LinkInput    `json:"links"`
	Snippets    *[]SnippetInput `json:"snippets"`
}

type SnippetInput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type SnippetPatch struct {
	Title    *string `json:"title"`
	Code     *string `json:"code"`
	Language *string `json:"language"`
}

type LinkInput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type LinkPatch struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

// ProjectService owns projects and everything embedded in them. Every
// method takes the caller's identity and reports a project owned by
// someone else exactly like a missing one.
type ProjectService struct {
	db        *gorm.DB
	store     storage.Storage
	publicURL string
	now       func() time.Time
}

func NewProjectService(db *gorm.DB, store storage.Storage, publicURL string) *ProjectService {
	return &ProjectService{
		db:        db,
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProjectService) List(ctx context.Context, ownerID string, opts ListOptions) ([]model.Project, error) {
	if q := strings.TrimSpace(opts.Search); q != "" {
		return s.search(ctx, ownerID, q)
	}

	sort := opts.Sort
	if sort == "" {
		sort = "updatedAt"
	}

	column, ok := sortColumns[sort]
	if !ok {
		return nil, apperr.Validation("Invalid sort field")
	}

	order := strings.ToLower(opts.Order)
	if order == "" {
		order = "desc"
	}

	if order != "asc" && order != "desc" {
		return nil, apperr.Validation("Invalid sort order")
	}

	var projects []model.Project

	err := withCollections(s.db.WithContext(ctx)).
		Where("user_id = ?", ownerID).
		Order(column + " " + order).
		Order("id").
		Find(&projects).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects, %w", err)
	}

	tag := validators.NormalizeTag(opts.Tag)

	out := make([]model.Project, 0, len(projects))
	for i := range projects {
		if tag != "" && !projects[i].HasTag(tag) {
			continue
		}

		normalize(&projects[i])
		out = append(out, projects[i])
	}

	return out, nil
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in ProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if err := validators.ProjectName(name); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	description := strings.TrimSpace(in.Description)
	if err := validators.ProjectDescription(description); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	id, err := util.NewProjectID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID, %w", err)
	}

	now := s.now()

	p := model.Project{
		ID:           id,
		UserID:       ownerID,
		Name:         name,
		Description:  description,
		Tags:         validators.NormalizeTags(in.Tags),
		Notes:        in.Notes,
		LastAccessed: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create project, %w", err)
	}

	return s.Get(ctx, ownerID, id)
}

func (s *ProjectService) Get(ctx context.Context, ownerID, projectID string) (*model.Project, error) {
	return findOwned(s.db.WithContext(ctx), ownerID, projectID)
}

// Update applies patch and returns the project as it was persisted
func (s *ProjectService) Update(ctx context.Context, ownerID, projectID string, patch ProjectPatch) (*model.Project, error) {
	now := s.now()

	updates := map[string]any{
		"updated_at":    now,
		"last_accessed": now,
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validators.ProjectName(name); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		updates["name"] = name
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if err := validators.ProjectDescription(description); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		updates["description"] = description
	}

	if patch.Tags != nil {
		updates["tags"] = model.StringSlice(validators.NormalizeTags(*patch.Tags))
	}

	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findOwned(tx, ownerID, projectID)
		if err != nil {
			return err
		}

		if patch.Snippets != nil {
			if err := replaceSnippets(tx, current, *patch.Snippets, now); err != nil {
				return err
			}
		}

		if patch.Links != nil {
			if err := replaceLinks(tx, current, *patch.Links, now); err != nil {
				return err
			}
		}

		return tx.Model(&model.Project{}).Where("id = ?", projectID).Updates(updates).Error
	})
	if err != nil {
		return nil, wrap("failed to update project", err)
	}

	return s.Get(ctx, ownerID, projectID)
}

// Delete removes the stored files first, then the project and everything
// it owns.
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID string) error {
	p, err := findOwned(s.db.WithContext(ctx), ownerID, projectID)
	if err != nil {
		return err
	}

	for _, f := range p.Files {
		if err := s.store.Delete(ctx, f.Filename); err != nil {
			return fmt.Errorf("failed to delete stored file, %w", err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.Snippet{}, &model.Link{}, &model.File{}} {
			if err := tx.Where("project_id = ?", projectID).Delete(m).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ? AND user_id = ?", projectID, ownerID).Delete(&model.Project{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return errProjectNotFound
		}

		return nil
	})

	return wrap("failed to delete project", err)
}

// Public returns the read-only share view. There is no ownership check.
func (s *ProjectService) Public(ctx context.Context, projectID string) (*model.PublicProject, error) {
	var p model.Project

	err := withCollections(s.db.WithContext(ctx)).Where("id = ?", projectID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}

		return nil, fmt.Errorf("failed to fetch project, %w", err)
	}

	normalize(&p)
	pub := p.Public()
	return &pub, nil
}

// ShareURL returns the address of the project's public view
func (s *ProjectService) ShareURL(ctx context.Context, ownerID, projectID string) (string, error) {
	if err := checkOwned(s.db.WithContext(ctx), ownerID, projectID); err != nil {
		return "", err
	}

	return s.publicURL + "/public/" + projectID, nil
}

func (s *ProjectService) AddTag(ctx context.Context, ownerID, projectID, tag string) (*model.Project, error) {
	tag = validators.NormalizeTag(tag)
	if tag == "" {
		return nil, apperr.Validation("Tag is required")
	}

	return s.editTags(ctx, ownerID, projectID, func(p *model.Project) {
		if !p.HasTag(tag) {
			p.Tags = append(p.Tags, tag)
		}
	})
}

// RemoveTag drops every occurrence of tag
func (s *ProjectService) RemoveTag(ctx context.Context, ownerID, projectID, tag string) (*model.Project, error) {
	tag = validators.NormalizeTag(tag)

	return s.editTags(ctx, ownerID, projectID, func(p *model.Project) {
		kept := make(model.StringSlice, 0, len(p.Tags))
		for _, t := range p.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		p.Tags = kept
	})
}

func (s *ProjectService) editTags(ctx context.Context, ownerID, projectID string, edit func(p *model.Project)) (*model.Project, error) {
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Project
		if err := tx.Where("user_id = ? AND id = ?", ownerID, projectID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errProjectNotFound
			}
			return err
		}

		edit(&p)

		return tx.Model(&model.Project{}).Where("id = ?", projectID).Updates(map[string]any{
			"tags":          p.Tags,
			"updated_at":    now,
			"last_accessed": now,
		}).Error
	})
	if err != nil {
		return nil, wrap("failed to update tags", err)
	}

	return s.Get(ctx, ownerID, projectID)
}

func (s *ProjectService) AddSnippet(ctx context.Context, ownerID, projectID string, in SnippetInput) (*model.Snippet, error) {
	if err := validators.SnippetFields(in.Title, in.Code); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	id, err := util.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate snippet ID, %w", err)
	}

	now := s.now()

	sn := model.Snippet{
		ID:        id,
		ProjectID: projectID,
		Title:     strings.TrimSpace(in.Title),
		Code:      in.Code,
		Language:  languageOr(in.Language),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		pos, err := nextPosition(tx, &model.Snippet{}, projectID)
		if err != nil {
			return err
		}
		sn.Position = pos

		if err := tx.Create(&sn).Error; err != nil {
			return err
		}

		return touch(tx, projectID, now)
	})
	if err != nil {
		return nil, wrap("failed to add snippet", err)
	}

	return &sn, nil
}

func (s *ProjectService) UpdateSnippet(ctx context.Context, ownerID, projectID, snippetID string, patch SnippetPatch) (*model.Snippet, error) {
	now := s.now()

	var sn model.Snippet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		if err := tx.Where("id = ? AND project_id = ?", snippetID, projectID).First(&sn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errSnippetNotFound
			}
			return err
		}

		if patch.Title != nil {
			sn.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Code != nil {
			sn.Code = *patch.Code
		}
		if patch.Language != nil {
			sn.Language = languageOr(*patch.Language)
		}

		if err := validators.SnippetFields(sn.Title, sn.Code); err != nil {
			return apperr.Validation(err.Error())
		}

		if err := tx.Save(&sn).Error; err != nil {
			return err
		}

		return touch(tx, projectID, now)
	})
	if err != nil {
		return nil, wrap("failed to update snippet", err)
	}

	return &sn, nil
}

func (s *ProjectService) DeleteSnippet(ctx context.Context, ownerID, projectID, snippetID string) error {
	return s.deleteEntry(ctx, ownerID, projectID, snippetID, &model.Snippet{}, errSnippetNotFound)
}

func (s *ProjectService) AddLink(ctx context.Context, ownerID, projectID string, in LinkInput) (*model.Link, error) {
	if err := validators.LinkFields(in.Title, in.URL); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	id, err := util.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate link ID, %w", err)
	}

	now := s.now()

	l := model.Link{
		ID:        id,
		ProjectID: projectID,
		Title:     strings.TrimSpace(in.Title),
		URL:       strings.TrimSpace(in.URL),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		pos, err := nextPosition(tx, &model.Link{}, projectID)
		if err != nil {
			return err
		}
		l.Position = pos

		if err := tx.Create(&l).Error; err != nil {
			return err
		}

		return touch(tx, projectID, now)
	})
	if err != nil {
		return nil, wrap("failed to add link", err)
	}

	return &l, nil
}

func (s *ProjectService) UpdateLink(ctx context.Context, ownerID, projectID, linkID string, patch LinkPatch) (*model.Link, error) {
	now := s.now()

	var l model.Link

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		if err := tx.Where("id = ? AND project_id = ?", linkID, projectID).First(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errLinkNotFound
			}
			return err
		}

		if patch.Title != nil {
			l.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.URL != nil {
			l.URL = strings.TrimSpace(*patch.URL)
		}

		if err := validators.LinkFields(l.Title, l.URL); err != nil {
			return apperr.Validation(err.Error())
		}

		if err := tx.Save(&l).Error; err != nil {
			return err
		}

		return touch(tx, projectID, now)
	})
	if err != nil {
		return nil, wrap("failed to update link", err)
	}

	return &l, nil
}

func (s *ProjectService) DeleteLink(ctx context.Context, ownerID, projectID, linkID string) error {
	return s.deleteEntry(ctx, ownerID, projectID, linkID, &model.Link{}, errLinkNotFound)
}

func (s *ProjectService) deleteEntry(ctx context.Context, ownerID, projectID, entryID string, m any, notFound error) error {
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		res := tx.Where("id = ? AND project_id = ?", entryID, projectID).Delete(m)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return notFound
		}

		return touch(tx, projectID, now)
	})

	return wrap("failed to delete entry", err)
}

func replaceSnippets(tx *gorm.DB, current *model.Project, in []SnippetInput, now time.Time) error {
	existing := make(map[string]model.Snippet, len(current.Snippets))
	for _, sn := range current.Snippets {
		existing[sn.ID] = sn
	}

	rows := make([]model.Snippet, 0, len(in))
	for i, e := range in {
		if err := validators.SnippetFields(e.Title, e.Code); err != nil {
			return apperr.Validation(err.Error())
		}

		row := model.Snippet{
			ProjectID: current.ID,
			Position:  i,
			Title:     strings.TrimSpace(e.Title),
			Code:      e.Code,
			Language:  languageOr(e.Language),
			CreatedAt: now,
		}

		// Only IDs already on this project survive a replace
		if old, ok := existing[e.ID]; ok {
			row.ID = old.ID
			row.CreatedAt = old.CreatedAt
			delete(existing, e.ID)
		} else {
			id, err := util.NewID()
			if err != nil {
				return err
			}
			row.ID = id
		}

		rows = append(rows, row)
	}

	if err := tx.Where("project_id = ?", current.ID).Delete(&model.Snippet{}).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	return tx.Create(&rows).Error
}

func replaceLinks(tx *gorm.DB, current *model.Project, in []LinkInput, now time.Time) error {
	existing := make(map[string]model.Link, len(current.Links))
	for _, l := range current.Links {
		existing[l.ID] = l
	}

	rows := make([]model.Link, 0, len(in))
	for i, e := range in {
		if err := validators.LinkFields(e.Title, e.URL); err != nil {
			return apperr.Validation(err.Error())
		}

		row := model.Link{
			ProjectID: current.ID,
			Position:  i,
			Title:     strings.TrimSpace(e.Title),
			URL:       strings.TrimSpace(e.URL),
			CreatedAt: now,
		}

		if old, ok := existing[e.ID]; ok {
			row.ID = old.ID
			row.CreatedAt = old.CreatedAt
			delete(existing, e.ID)
		} else {
			id, err := util.NewID()
			if err != nil {
				return err
			}
			row.ID = id
		}

		rows = append(rows, row)
	}

	if err := tx.Where("project_id = ?", current.ID).Delete(&model.Link{}).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	return tx.Create(&rows).Error
}

func withCollections(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Snippets", orderBy("position, created_at")).
		Preload("Links", orderBy("position, created_at")).
		Preload("Files", orderBy("uploaded_at, id"))
}

func orderBy(columns string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(columns)
	}
}

func findOwned(tx *gorm.DB, ownerID, projectID string) (*model.Project, error) {
	var p model.Project

	err := withCollections(tx).Where("user_id = ? AND id = ?", ownerID, projectID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectNotFound
		}

		return nil, fmt.Errorf("failed to fetch project, %w", err)
	}

	normalize(&p)
	return &p, nil
}

func checkOwned(tx *gorm.DB, ownerID, projectID string) error {
	var count int64

	err := tx.Model(&model.Project{}).Where("user_id = ? AND id = ?", ownerID, projectID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check project ownership, %w", err)
	}

	if count == 0 {
		return errProjectNotFound
	}

	return nil
}

// touch records a save of the project
func touch(tx *gorm.DB, projectID string, now time.Time) error {
	return tx.Model(&model.Project{}).Where("id = ?", projectID).Updates(map[string]any{
		"updated_at":    now,
		"last_accessed": now,
	}).Error
}

func nextPosition(tx *gorm.DB, m any, projectID string) (int, error) {
	var pos int

	err := tx.Model(m).Where("project_id = ?", projectID).Select("COALESCE(MAX(position), -1) + 1").Scan(&pos).Error
	return pos, err
}

func languageOr(lang string) string {
	if lang = strings.TrimSpace(lang); lang == "" {
		return defaultLanguage
	}

	return lang
}

// normalize swaps nil collections for empty ones so they encode as []
func normalize(p *model.Project) {
	if p.Tags == nil {
		p.Tags = model.StringSlice{}
	}
	if p.Snippets == nil {
		p.Snippets = []model.Snippet{}
	}
	if p.Links == nil {
		p.Links = []model.Link{}
	}
	if p.Files == nil {
		p.Files = []model.File{}
	}
}

// wrap adds context to infrastructure errors and leaves typed ones alone
func wrap(msg string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := apperr.As(err); ok {
		return err
	}

	return fmt.Errorf("%s, %w", msg, err)
}
