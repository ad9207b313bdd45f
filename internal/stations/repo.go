// Package stations holds the location data used at checkout: Kenyan counties,
// their constituencies, and the pickup stations inside them.
package stations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("stations: not found")

type County struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Constituency struct {
	ID       string `json:"id"`
	CountyID string `json:"county_id"`
	Name     string `json:"name"`
}

// Station is a fixed pickup point. ConstituencyID is the sub-location the
// checkout captures when the shopper picks this station.
type Station struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CountyID       string `json:"county_id"`
	ConstituencyID string `json:"constituency_id"`
	Address        string `json:"address,omitempty"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListCounties(ctx context.Context) ([]County, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM counties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []County
	for rows.Next() {
		var c County
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListConstituencies(ctx context.Context, countyID string) ([]Constituency, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, county_id, name FROM constituencies WHERE county_id=$1 ORDER BY name`, countyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Constituency
	for rows.Next() {
		var c Constituency
		if err := rows.Scan(&c.ID, &c.CountyID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListByCounty is the county-scoped station lookup the pickup step uses.
func (r *Repo) ListByCounty(ctx context.Context, countyID string) ([]Station, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, county_id, constituency_id, COALESCE(address,'')
		FROM pickup_stations WHERE county_id=$1 ORDER BY name`, countyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name, &s.CountyID, &s.ConstituencyID, &s.Address); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Station, error) {
	var s Station
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, county_id, constituency_id, COALESCE(address,'')
		FROM pickup_stations WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.CountyID, &s.ConstituencyID, &s.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Station{}, ErrNotFound
	}
	if err != nil {
		return Station{}, err
	}
	return s, nil
}

func (r *Repo) Create(ctx context.Context, s Station) (Station, error) {
	s.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO pickup_stations(id, name, county_id, constituency_id, address)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, s.CountyID, s.ConstituencyID, s.Address)
	if err != nil {
		return Station{}, fmt.Errorf("insert station: %w", err)
	}
	return s, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM pickup_stations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
