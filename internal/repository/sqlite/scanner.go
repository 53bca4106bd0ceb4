package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTask scans a single task row
func ScanTask(scanner Scanner) (*TaskRow, error) {
	row := &TaskRow{}
	err := scanner.Scan(&row.ID, &row.Name, &row.Description, &row.Status, &row.StartTime, &row.DurationNanos)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanEpic scans a single epic row
func ScanEpic(scanner Scanner) (*EpicRow, error) {
	row := &EpicRow{}
	err := scanner.Scan(&row.ID, &row.Name, &row.Description, &row.Status, &row.StartTime, &row.EndTime, &row.DurationNanos)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanSubtask scans a single subtask row
func ScanSubtask(scanner Scanner) (*SubtaskRow, error) {
	row := &SubtaskRow{}
	err := scanner.Scan(&row.ID, &row.EpicID, &row.Position, &row.Name, &row.Description, &row.Status, &row.StartTime, &row.DurationNanos)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanHistory scans a single history row
func ScanHistory(scanner Scanner) (*HistoryRow, error) {
	row := &HistoryRow{}
	if err := scanner.Scan(&row.Position, &row.ItemID, &row.Kind); err != nil {
		return nil, err
	}
	return row, nil
}

// ScanAll applies scan to every row in rows
func ScanAll[T any](scan func(Scanner) (*T, error)) func(Rows) ([]*T, error) {
	return func(rows Rows) ([]*T, error) {
		var results []*T
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return nil, err
			}
			results = append(results, item)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return results, nil
	}
}
