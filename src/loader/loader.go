// Package loader parses tabular CSV input into entity rows. Batches with a
// missing required column are rejected whole; individual rows that fail
// coercion are skipped and counted, never fatal.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ims/src/config"
	"ims/src/models"
)

var ErrMissingColumns = errors.New("missing required columns")

var (
	inventoryColumns = []string{"title", "description", "remaining_count", "expiration_date"}
	memberColumns    = []string{"name", "surname", "booking_count", "date_joined"}

	timestampFormats = []string{time.RFC3339, config.TIME_PARSE_FORMAT, config.DATE_PARSE_FORMAT}
)

func indexHeader(header []string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, name)
		}
	}
	return cols, nil
}

func ParseTimestamp(value string) (time.Time, error) {
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// ParseInventory reads inventory rows from CSV input. Returns the surviving
// rows and the number of rows dropped by coercion failures.
func ParseInventory(r io.Reader) ([]models.Inventory, int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, 0, err
	}
	cols, err := indexHeader(header, inventoryColumns)
	if err != nil {
		return nil, 0, err
	}
	rows := []models.Inventory{}
	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		title := strings.TrimSpace(record[cols["title"]])
		if title == "" {
			skipped++
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(record[cols["remaining_count"]]))
		if err != nil || count < 0 {
			skipped++
			continue
		}
		expiration, err := time.Parse(config.DATE_PARSE_FORMAT, strings.TrimSpace(record[cols["expiration_date"]]))
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, models.Inventory{
			Title:          title,
			Description:    record[cols["description"]],
			RemainingCount: count,
			ExpirationDate: expiration,
		})
	}
	return rows, skipped, nil
}

// ParseMembers reads member rows from CSV input, with the same skip-and-count
// semantics as ParseInventory.
func ParseMembers(r io.Reader) ([]models.Member, int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, 0, err
	}
	cols, err := indexHeader(header, memberColumns)
	if err != nil {
		return nil, 0, err
	}
	rows := []models.Member{}
	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(record[cols["name"]])
		surname := strings.TrimSpace(record[cols["surname"]])
		if name == "" || surname == "" {
			skipped++
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(record[cols["booking_count"]]))
		if err != nil || count < 0 {
			skipped++
			continue
		}
		joined, err := ParseTimestamp(strings.TrimSpace(record[cols["date_joined"]]))
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, models.Member{
			Name:         name,
			Surname:      surname,
			BookingCount: count,
			DateJoined:   joined,
		})
	}
	return rows, skipped, nil
}
