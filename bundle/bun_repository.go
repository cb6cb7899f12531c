package bundle

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/coursekit/go-i18n/resource"
)

var errDatabaseRequired = errors.New("bundle: bun repository requires a database")

// BunRepository persists bundles using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed bundle repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Load returns the persisted bundle for the key.
func (r *BunRepository) Load(ctx context.Context, key resource.BundleKey) (*Bundle, error) {
	if r.db == nil {
		return nil, errDatabaseRequired
	}
	var model bundleModel
	if err := r.db.NewSelect().Model(&model).Where("key = ?", key.String()).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return modelToBundle(&model)
}

// Save replaces the persisted bundle wholesale.
func (r *BunRepository) Save(ctx context.Context, b *Bundle) error {
	if r.db == nil {
		return errDatabaseRequired
	}

	var existing bundleModel
	err := r.db.NewSelect().Model(&existing).Where("key = ?", b.Key.String()).Scan(ctx)
	created := false
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return err
		}
	}

	model := modelFromBundle(b)
	model.UpdatedAt = time.Now().UTC()

	if created {
		_, err = r.db.NewInsert().Model(&model).Exec(ctx)
	} else {
		_, err = r.db.NewUpdate().
			Model(&model).
			Column("locale", "sections", "updated_at").
			WherePK().
			Exec(ctx)
	}
	return err
}

// SaveAll persists each bundle independently; an error stops the walk but
// leaves earlier writes intact.
func (r *BunRepository) SaveAll(ctx context.Context, bundles []*Bundle) error {
	for _, b := range bundles {
		if err := r.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// ListLocale returns every persisted bundle for the locale, ordered by key.
func (r *BunRepository) ListLocale(ctx context.Context, locale string) ([]*Bundle, error) {
	if r.db == nil {
		return nil, errDatabaseRequired
	}
	var models []bundleModel
	if err := r.db.NewSelect().
		Model(&models).
		Where("locale = ?", locale).
		Order("key ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*Bundle, 0, len(models))
	for i := range models {
		b, err := modelToBundle(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// BunProgressRepository persists progress snapshots using a Bun-backed
// database.
type BunProgressRepository struct {
	db          *bun.DB
	broadcaster *progressBroadcaster
}

// NewBunProgressRepository constructs a Bun-backed progress repository.
func NewBunProgressRepository(db *bun.DB) *BunProgressRepository {
	return &BunProgressRepository{
		db:          db,
		broadcaster: newProgressBroadcaster(),
	}
}

// Load returns the persisted progress record for the resource key.
func (r *BunProgressRepository) Load(ctx context.Context, key resource.Key) (*Progress, error) {
	if r.db == nil {
		return nil, errDatabaseRequired
	}
	var model progressModel
	if err := r.db.NewSelect().Model(&model).Where("key = ?", key.String()).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return modelToProgress(&model)
}

// Save replaces the persisted snapshot and emits a change event.
func (r *BunProgressRepository) Save(ctx context.Context, p *Progress) error {
	if r.db == nil {
		return errDatabaseRequired
	}

	var existing progressModel
	err := r.db.NewSelect().Model(&existing).Where("key = ?", p.Key.String()).Scan(ctx)
	created := false
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return err
		}
	}

	model := modelFromProgress(p)
	model.UpdatedAt = time.Now().UTC()

	if created {
		_, err = r.db.NewInsert().Model(&model).Exec(ctx)
	} else {
		_, err = r.db.NewUpdate().
			Model(&model).
			Column("is_translatable", "locales", "updated_at").
			WherePK().
			Exec(ctx)
	}
	if err != nil {
		return err
	}

	eventType := ProgressUpdated
	if created {
		eventType = ProgressCreated
	}
	r.broadcaster.Broadcast(newProgressEvent(eventType, *p.Clone()))
	return nil
}

// List returns every persisted progress record, ordered by key.
func (r *BunProgressRepository) List(ctx context.Context) ([]*Progress, error) {
	if r.db == nil {
		return nil, errDatabaseRequired
	}
	var models []progressModel
	if err := r.db.NewSelect().Model(&models).Order("key ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*Progress, 0, len(models))
	for i := range models {
		p, err := modelToProgress(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Subscribe delivers progress change events until the context is cancelled.
func (r *BunProgressRepository) Subscribe(ctx context.Context) (<-chan ProgressEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

type bundleModel struct {
	bun.BaseModel `bun:"table:resource_bundles"`

	Key       string    `bun:"key,pk"`
	Locale    string    `bun:"locale,notnull"`
	Sections  []Section `bun:"sections,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type progressModel struct {
	bun.BaseModel `bun:"table:i18n_progress"`

	Key            string            `bun:"key,pk"`
	IsTranslatable bool              `bun:"is_translatable,notnull"`
	Locales        map[string]Status `bun:"locales,type:jsonb"`
	UpdatedAt      time.Time         `bun:"updated_at"`
}

func modelFromBundle(b *Bundle) bundleModel {
	return bundleModel{
		Key:      b.Key.String(),
		Locale:   b.Key.Locale,
		Sections: b.Clone().Sections,
	}
}

func modelToBundle(model *bundleModel) (*Bundle, error) {
	key, err := resource.ParseBundleKey(model.Key)
	if err != nil {
		return nil, err
	}
	b := &Bundle{Key: key, Sections: model.Sections}
	return b.Clone(), nil
}

func modelFromProgress(p *Progress) progressModel {
	return progressModel{
		Key:            p.Key.String(),
		IsTranslatable: p.IsTranslatable,
		Locales:        p.Clone().Locales,
	}
}

func modelToProgress(model *progressModel) (*Progress, error) {
	key, err := resource.ParseKey(model.Key)
	if err != nil {
		return nil, err
	}
	p := &Progress{
		Key:            key,
		IsTranslatable: model.IsTranslatable,
		Locales:        model.Locales,
	}
	return p.Clone(), nil
}
