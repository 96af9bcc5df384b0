// Package export writes candidate lists as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// Headers is the column layout written by WriteCandidates.
var Headers = []interface{}{
	"ID", "Name", "Kind", "Service Category", "Distance (km)",
	"Latitude", "Longitude", "Phone", "Email", "Address",
	"Rate per Hour", "Rating", "Available",
}

// WriteCandidates writes one row per candidate to a new workbook on w.
// Distance is left blank for candidates that were not ranked against an origin.
func WriteCandidates(w io.Writer, sheetName string, candidates []domain.Candidate) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", Headers); err != nil {
		return err
	}

	for i, c := range candidates {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row(c)); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func row(c domain.Candidate) []interface{} {
	var distance interface{}
	if c.Distance != nil {
		distance = *c.Distance
	}
	var rating interface{}
	if c.OverallRating != nil {
		rating = *c.OverallRating
	}
	return []interface{}{
		c.ID, c.Name, string(c.Kind), c.Category, distance,
		c.Location.Lat, c.Location.Lng, c.Phone, c.Email, c.Address.String(),
		c.RatePerHour, rating, c.Available,
	}
}
