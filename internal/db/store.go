package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/correction"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/school"
)

// Store reads and writes schools, districts, and corrections. School rows
// carry one column per attribute, named exactly after the attribute.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func NewStore(conn *Connection, log *zap.Logger) *Store {
	return &Store{db: conn.DB, log: log}
}

func schoolColumns() []string {
	attrs := school.Attributes()
	cols := make([]string, len(attrs))
	for i, a := range attrs {
		cols[i] = a.Name
	}
	return cols
}

// LoadSchools reads the entire schools table into memory.
func (s *Store) LoadSchools() ([]*school.School, error) {
	cols := append([]string{"id", "district_id"}, schoolColumns()...)
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT %s FROM schools ORDER BY id", strings.Join(cols, ", ")))
	if err != nil {
		return nil, fmt.Errorf("loading schools: %w", err)
	}
	defer rows.Close()

	var out []*school.School
	for rows.Next() {
		sc, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("loading schools: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanSchool(rows *sql.Rows) (*school.School, error) {
	attrs := school.Attributes()
	sc := school.New()

	targets := make([]any, 0, len(attrs)+2)
	targets = append(targets, &sc.ID, &sc.DistrictID)

	scanners := make([]any, len(attrs))
	for i, a := range attrs {
		scanners[i] = newScanner(a.Kind)
		targets = append(targets, scanners[i])
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}
	for i, a := range attrs {
		sc.Put(a, scannedValue(a.Kind, scanners[i]))
	}
	return sc, nil
}

func newScanner(k school.Kind) any {
	switch k {
	case school.KindInt:
		return &sql.NullInt64{}
	case school.KindDouble:
		return &sql.NullFloat64{}
	case school.KindBool:
		return &sql.NullBool{}
	case school.KindDate:
		return &sql.NullTime{}
	}
	return &sql.NullString{}
}

func scannedValue(k school.Kind, scanner any) school.Value {
	switch k {
	case school.KindInt:
		v := scanner.(*sql.NullInt64)
		if !v.Valid {
			return school.NullValue(k)
		}
		return school.IntValue(int(v.Int64))
	case school.KindDouble:
		v := scanner.(*sql.NullFloat64)
		if !v.Valid {
			return school.NullValue(k)
		}
		return school.DoubleValue(v.Float64)
	case school.KindBool:
		v := scanner.(*sql.NullBool)
		if !v.Valid {
			return school.NullValue(k)
		}
		return school.BoolValue(v.Bool)
	case school.KindDate:
		v := scanner.(*sql.NullTime)
		if !v.Valid {
			return school.NullValue(k)
		}
		return school.DateValue(v.Time)
	}
	v := scanner.(*sql.NullString)
	if !v.Valid {
		return school.NullValue(k)
	}
	return school.Value{Kind: k, Str: v.String}
}

func valueArg(v school.Value) any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case school.KindInt:
		return v.Int
	case school.KindDouble:
		return v.Float
	case school.KindBool:
		return v.Bool
	case school.KindDate:
		return v.Time
	}
	return v.Str
}

// InsertSchool stores a new school row and fills in its generated id.
func (s *Store) InsertSchool(sc *school.School) error {
	attrs := school.Attributes()
	cols := append([]string{"district_id"}, schoolColumns()...)

	placeholders := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	args = append(args, sc.DistrictID)
	for _, a := range attrs {
		args = append(args, valueArg(sc.Get(a)))
	}
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO schools (%s) VALUES (%s) RETURNING id",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if err := s.db.QueryRow(query, args...).Scan(&sc.ID); err != nil {
		return fmt.Errorf("inserting school %q: %w", sc.DisplayName(), err)
	}
	s.log.Debug("inserted school",
		zap.Int("id", sc.ID), zap.String("name", sc.DisplayName()))
	return nil
}

// UpdateSchool rewrites every attribute column of an existing school row.
func (s *Store) UpdateSchool(sc *school.School) error {
	attrs := school.Attributes()
	sets := make([]string, 0, len(attrs)+1)
	args := make([]any, 0, len(attrs)+2)

	sets = append(sets, "district_id = $1")
	args = append(args, sc.DistrictID)
	for i, a := range attrs {
		sets = append(sets, fmt.Sprintf("%s = $%d", a.Name, i+2))
		args = append(args, valueArg(sc.Get(a)))
	}
	args = append(args, sc.ID)

	query := fmt.Sprintf("UPDATE schools SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("updating school %d: %w", sc.ID, err)
	}
	return nil
}

// LoadDistricts reads the entire districts table into memory.
func (s *Store) LoadDistricts() ([]*school.District, error) {
	rows, err := s.db.Query("SELECT id, name, website_url FROM districts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("loading districts: %w", err)
	}
	defer rows.Close()

	var out []*school.District
	for rows.Next() {
		d := &school.District{}
		var name, url sql.NullString
		if err := rows.Scan(&d.ID, &name, &url); err != nil {
			return nil, fmt.Errorf("loading districts: %w", err)
		}
		if name.Valid {
			d.Name = &name.String
		}
		if url.Valid {
			d.WebsiteURL = &url.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertDistrict stores a new district and fills in its generated id.
func (s *Store) InsertDistrict(d *school.District) error {
	err := s.db.QueryRow(
		"INSERT INTO districts (name, website_url) VALUES ($1, $2) RETURNING id",
		d.Name, d.WebsiteURL,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("inserting district %q: %w", d.DisplayName(), err)
	}
	s.log.Debug("inserted district",
		zap.Int("id", d.ID), zap.String("name", d.DisplayName()))
	return nil
}

// UpdateDistrict rewrites a district's name and URL.
func (s *Store) UpdateDistrict(d *school.District) error {
	_, err := s.db.Exec(
		"UPDATE districts SET name = $1, website_url = $2 WHERE id = $3",
		d.Name, d.WebsiteURL, d.ID)
	if err != nil {
		return fmt.Errorf("updating district %d: %w", d.ID, err)
	}
	return nil
}

// UpsertDistrictOrganization records that an organization's listing
// contributed a school to the district.
func (s *Store) UpsertDistrictOrganization(districtID int, org *school.Organization) error {
	_, err := s.db.Exec(`
		INSERT INTO district_organizations (district_id, organization_id)
		VALUES ($1, $2)
		ON CONFLICT (district_id, organization_id) DO NOTHING
	`, districtID, org.ID)
	if err != nil {
		return fmt.Errorf("recording district %d for %s: %w", districtID, org, err)
	}
	return nil
}

// LoadDistrictMatchCorrections reads the stored district-match corrections,
// each persisted as one JSON document.
func (s *Store) LoadDistrictMatchCorrections() ([]*correction.DistrictMatch, error) {
	rows, err := s.db.Query(
		"SELECT data FROM corrections WHERE type = 'district_match' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("loading corrections: %w", err)
	}
	defer rows.Close()

	var out []*correction.DistrictMatch
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("loading corrections: %w", err)
		}
		c := &correction.DistrictMatch{}
		if err := json.Unmarshal(data, c); err != nil {
			s.log.Warn("skipping malformed correction", zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats summarizes the directory for the inspection API.
type Stats struct {
	Schools   int `json:"schools"`
	Districts int `json:"districts"`
	Excluded  int `json:"excluded"`
}

// LoadStats counts the directory's contents.
func (s *Store) LoadStats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schools").Scan(&st.Schools); err != nil {
		return st, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM districts").Scan(&st.Districts); err != nil {
		return st, err
	}
	err := s.db.QueryRow("SELECT COUNT(*) FROM schools WHERE is_excluded").Scan(&st.Excluded)
	return st, err
}
