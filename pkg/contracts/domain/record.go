package domain

import (
	"time"
)

// Column names of the OWID COVID-19 dataset used by the report
const (
	ColumnISOCode          = "iso_code"
	ColumnContinent        = "continent"
	ColumnLocation         = "location"
	ColumnDate             = "date"
	ColumnNewCases         = "new_cases"
	ColumnNewDeaths        = "new_deaths"
	ColumnTotalDeaths      = "total_deaths"
	ColumnPeopleVaccinated = "people_vaccinated"
	ColumnPopulation       = "population"
)

// Record is one row of the COVID-19 dataset
type Record struct {
	ISOCode   string    `json:"iso_code,omitempty"`
	Continent string    `json:"continent,omitempty"`
	Location  string    `json:"location"`
	RawDate   string    `json:"-"`
	Date      time.Time `json:"date"`

	NewCases         NullFloat64 `json:"new_cases"`
	NewDeaths        NullFloat64 `json:"new_deaths"`
	TotalDeaths      NullFloat64 `json:"total_deaths"`
	PeopleVaccinated NullFloat64 `json:"people_vaccinated"`
	Population       NullFloat64 `json:"population"`
}

// Dataset is the in-memory table loaded from the source CSV.
// Records keep source order; there is no index.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Head returns up to n leading records
func (d *Dataset) Head(n int) []Record {
	if d == nil || n <= 0 {
		return nil
	}
	if n > len(d.Records) {
		n = len(d.Records)
	}
	return d.Records[:n]
}

// DatasetInfo summarizes a dataset: row count and known values per column
type DatasetInfo struct {
	Rows    int            `json:"rows"`
	Columns int            `json:"columns"`
	NonNull map[string]int `json:"non_null"`
	MinDate time.Time      `json:"min_date,omitempty"`
	MaxDate time.Time      `json:"max_date,omitempty"`
}

// Info counts non-null values for the columns the report reads
func (d *Dataset) Info() DatasetInfo {
	info := DatasetInfo{
		Rows:    d.Len(),
		NonNull: make(map[string]int),
	}
	if d == nil {
		return info
	}
	info.Columns = len(d.Columns)

	for _, r := range d.Records {
		count := func(col string, ok bool) {
			if ok {
				info.NonNull[col]++
			}
		}
		count(ColumnISOCode, r.ISOCode != "")
		count(ColumnContinent, r.Continent != "")
		count(ColumnLocation, r.Location != "")
		count(ColumnDate, r.RawDate != "" || !r.Date.IsZero())
		count(ColumnNewCases, r.NewCases.Valid)
		count(ColumnNewDeaths, r.NewDeaths.Valid)
		count(ColumnTotalDeaths, r.TotalDeaths.Valid)
		count(ColumnPeopleVaccinated, r.PeopleVaccinated.Valid)
		count(ColumnPopulation, r.Population.Valid)

		if r.Date.IsZero() {
			continue
		}
		if info.MinDate.IsZero() || r.Date.Before(info.MinDate) {
			info.MinDate = r.Date
		}
		if r.Date.After(info.MaxDate) {
			info.MaxDate = r.Date
		}
	}
	return info
}
