package schedule

// Index groups records by date key for O(1) per-cell lookup. Within a key,
// records keep the order they arrived in from the store; nothing re-sorts
// by time.
type Index map[string][]Record

// BuildIndex groups a flat record list by DateKey. Records outside the
// displayed month are indexed too; they just land on padding cells (or on
// none at all).
func BuildIndex(records []Record) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		key := DateKey(r.Date)
		idx[key] = append(idx[key], r)
	}
	return idx
}

// ForKey returns the records for a date key, or nil if there are none.
func (idx Index) ForKey(key string) []Record {
	return idx[key]
}

// Fill attaches each cell's records from the index and returns the cells.
func (idx Index) Fill(cells []Cell) []Cell {
	for i := range cells {
		cells[i].Records = idx[DateKey(cells[i].Date)]
	}
	return cells
}
