package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hotel_detail/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

/********** hotels **********/

func (r *Repo) Insert(ctx context.Context, c domain.Content) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertHotelSQL,
		c.ID,
		c.Hotel.Name,
		c.IsTemplate,
		valStr(c.TemplateName),
		string(doc),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *Repo) Replace(ctx context.Context, c domain.Content) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, replaceHotelSQL,
		c.Hotel.Name,
		c.IsTemplate,
		valStr(c.TemplateName),
		string(doc),
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports 0 affected rows for an identical update; tell that
	// apart from a missing row.
	var one int
	if err := r.db.QueryRowContext(ctx, hotelExistsSQL, c.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, deleteHotelSQL, id)
}

func (r *Repo) Get(ctx context.Context, id string) (domain.Content, error) {
	var (
		c    domain.Content
		doc  []byte
		row  = r.db.QueryRowContext(ctx, getHotelSQL, id)
		cAt  sql.NullTime
		upAt sql.NullTime
	)
	if err := row.Scan(&doc, &cAt, &upAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Content{}, domain.ErrNotFound
		}
		return domain.Content{}, err
	}
	if err := json.Unmarshal(doc, &c); err != nil {
		return domain.Content{}, fmt.Errorf("decode hotel %s: %w", id, err)
	}
	// columns win over whatever the document carried
	c.ID = id
	c.CreatedAt = cAt.Time.UTC()
	c.UpdatedAt = upAt.Time.UTC()
	return c, nil
}

func (r *Repo) List(ctx context.Context, q domain.ContentQuery) ([]domain.ContentSummary, error) {
	query := listHotelsSQL
	var args []any
	if q.TemplatesOnly {
		query += "\nWHERE is_template = 1"
	}
	query += listHotelsOrder
	if q.Limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ContentSummary{}
	for rows.Next() {
		var (
			s       domain.ContentSummary
			tplName sql.NullString
			upAt    sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.IsTemplate, &tplName, &upAt); err != nil {
			return nil, err
		}
		if tplName.Valid {
			n := tplName.String
			s.TemplateName = &n
		}
		s.UpdatedAt = upAt.Time.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

/********** templates **********/

func (r *Repo) SaveTemplate(ctx context.Context, t domain.Template) error {
	_, err := r.db.ExecContext(ctx, insertTemplateSQL,
		t.ID,
		string(t.Kind),
		t.HotelID,
		t.Name,
		valText(t.Description),
		string(t.Data),
		t.CreatedAt,
	)
	return err
}

func (r *Repo) ListTemplates(ctx context.Context, kind domain.TemplateKind, hotelID string) ([]domain.Template, error) {
	rows, err := r.db.QueryContext(ctx, listTemplatesSQL, string(kind), hotelID, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Template{}
	for rows.Next() {
		var (
			t    domain.Template
			k    string
			desc sql.NullString
			data []byte
			at   sql.NullTime
		)
		if err := rows.Scan(&t.ID, &k, &t.HotelID, &t.Name, &desc, &data, &at); err != nil {
			return nil, err
		}
		t.Kind = domain.TemplateKind(k)
		t.Description = desc.String
		t.Data = append(json.RawMessage(nil), data...)
		t.CreatedAt = at.Time.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteTemplate(ctx context.Context, id string) error {
	return r.execOne(ctx, deleteTemplateSQL, id)
}

/********** client errors **********/

func (r *Repo) InsertErrors(ctx context.Context, sessionID string, es []domain.ClientError) ([]domain.ClientError, error) {
	if len(es) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // no-op after Commit

	// One row per statement so RowsAffected tells which keys were new.
	stored := make([]domain.ClientError, 0, len(es))
	for _, e := range es {
		res, err := tx.ExecContext(ctx, insertErrorSQL,
			e.Key(),
			valText(sessionID),
			e.Type,
			e.Message,
			valText(e.Stack),
			valText(e.URL),
			valText(e.Timestamp),
		)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			stored = append(stored, e)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// execOne runs a statement that must touch exactly one row.
func (r *Repo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
