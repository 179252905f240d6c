// Package dbstore persists resources in four relational tables managed
// by gorm, on sqlite or mysql.
package dbstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/litihq/liti-server/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "", "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("dbstore: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("dbstore: open: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Setting{}, &Scale{}, &Model{}, &History{}); err != nil {
		return nil, fmt.Errorf("dbstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Settings

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows)+1)
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	// the system prompt is structurally always present, mirroring its
	// top-level slot in the document backend
	if _, ok := out[store.SettingSystemPrompt]; !ok {
		out[store.SettingSystemPrompt] = ""
	}
	return out, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var row Setting
	// map condition so the dialect quotes the reserved column name
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if key == store.SettingSystemPrompt {
				return "", nil
			}
			return "", store.ErrNotFound
		}
		return "", err
	}
	return row.Value, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Setting{Key: key, Value: value}).Error
}

// Scales

func (s *Store) ListScales(ctx context.Context) ([]store.Scale, error) {
	var rows []Scale
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Scale, len(rows))
	for i, r := range rows {
		out[i] = scaleFromRow(r)
	}
	return out, nil
}

func (s *Store) GetScale(ctx context.Context, id int64) (store.Scale, error) {
	var row Scale
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Scale{}, store.ErrNotFound
		}
		return store.Scale{}, err
	}
	return scaleFromRow(row), nil
}

func (s *Store) ReplaceScales(ctx context.Context, scales []store.Scale) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Scale{}).Error; err != nil {
			return err
		}
		if len(scales) == 0 {
			return nil
		}
		rows := make([]Scale, len(scales))
		for i, sc := range scales {
			rows[i] = scaleToRow(sc)
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) AddScale(ctx context.Context, sc store.Scale) (int64, error) {
	row := scaleToRow(sc)
	row.ID = 0 // identity is store-assigned here
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *Store) UpdateScale(ctx context.Context, id int64, fields map[string]any) error {
	updates, err := store.ScaleUpdate(fields)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Scale
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&Scale{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (s *Store) DeleteScale(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&Scale{}, "id = ?", id).Error
}

// Models

func (s *Store) ListModels(ctx context.Context) ([]store.Model, error) {
	var rows []Model
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Model, len(rows))
	for i, r := range rows {
		out[i] = store.Model{ID: r.ID, Name: r.Name, Provider: r.Provider}
	}
	return out, nil
}

func (s *Store) ReplaceModels(ctx context.Context, models []store.Model) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Model{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		rows := make([]Model, len(models))
		for i, m := range models {
			rows[i] = Model{ID: m.ID, Name: m.Name, Provider: m.Provider}
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) UpsertModel(ctx context.Context, m store.Model) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Model{ID: m.ID, Name: m.Name, Provider: m.Provider}).Error
}

func (s *Store) DeleteModel(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&Model{}, "id = ?", id).Error
}

// History

func (s *Store) ListHistory(ctx context.Context) ([]store.Entry, error) {
	var rows []History
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Entry, len(rows))
	for i, r := range rows {
		out[i] = entryFromRow(r)
	}
	return out, nil
}

func (s *Store) GetHistoryEntry(ctx context.Context, id int64) (store.Entry, error) {
	var row History
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return entryFromRow(row), nil
}

func (s *Store) ReplaceHistory(ctx context.Context, entries []store.Entry) error {
	// generated ids start above every explicit id in the batch so the
	// two never collide regardless of entry order
	next := int64(1)
	for _, e := range entries {
		if id, ok := e.ID(); ok && id >= next {
			next = id + 1
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&History{}).Error; err != nil {
			return err
		}
		for _, e := range entries {
			row, err := entryToRow(e)
			if err != nil {
				return err
			}
			if id, ok := e.ID(); ok {
				row.ID = id
			} else {
				row.ID = next
				next++
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AddHistoryEntry(ctx context.Context, e store.Entry) (int64, error) {
	row, err := entryToRow(e)
	if err != nil {
		return 0, err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&History{}, "id = ?", id).Error
}

// Reset

func (s *Store) Reset(ctx context.Context) error {
	d := store.DefaultDocument()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Setting{}, &Scale{}, &Model{}, &History{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		for k, v := range d.Settings() {
			if err := tx.Create(&Setting{Key: k, Value: v}).Error; err != nil {
				return err
			}
		}
		for _, sc := range d.Scales {
			row := scaleToRow(sc)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, m := range d.Models {
			if err := tx.Create(&Model{ID: m.ID, Name: m.Name, Provider: m.Provider}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func scaleFromRow(r Scale) store.Scale {
	return store.Scale{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		Enabled:      r.Enabled,
		Instructions: r.Instructions,
	}
}

func scaleToRow(sc store.Scale) Scale {
	return Scale{
		ID:           sc.ID,
		Name:         sc.Name,
		Category:     sc.Category,
		Enabled:      sc.Enabled,
		Instructions: sc.Instructions,
	}
}

func entryFromRow(r History) store.Entry {
	e := store.Entry{}
	if len(r.Data) > 0 {
		// a corrupt payload degrades to an id-only entry, never an error
		_ = json.Unmarshal(r.Data, &e)
	}
	e["id"] = r.ID
	e["createdAt"] = r.CreatedAt.UTC().Format(time.RFC3339)
	return e
}

func entryToRow(e store.Entry) (History, error) {
	payload := e.Clone()
	delete(payload, "id")

	row := History{}
	if v, ok := payload["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			row.CreatedAt = t
		}
		delete(payload, "createdAt")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return History{}, err
	}
	row.Data = datatypes.JSON(b)
	return row, nil
}
