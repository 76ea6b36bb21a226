package booking

import "time"

const dateLayout = "2006-01-02"

// dateKeyboard offers the next days days starting at today, one per row.
func dateKeyboard(today time.Time, days int) [][]string {
	rows := make([][]string, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, []string{today.AddDate(0, 0, i).Format(dateLayout)})
	}
	return rows
}

// timeKeyboard lays out slot labels three per row and appends the back
// button on its own row.
func timeKeyboard(labels []string) [][]string {
	var rows [][]string
	for i := 0; i < len(labels); i += 3 {
		end := i + 3
		if end > len(labels) {
			end = len(labels)
		}
		row := make([]string, 0, 3)
		row = append(row, labels[i:end]...)
		rows = append(rows, row)
	}
	rows = append(rows, []string{BackButton})
	return rows
}
