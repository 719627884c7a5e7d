package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/ports"
)

// buildUpdateQuery renders a partial UPDATE for a field diff. Only the
// diffed columns are written, plus updated_at which is refreshed on every
// successful update. Columns are emitted in sorted order so the query is
// deterministic. Callers must not pass an empty diff.
func buildUpdateQuery(table string, id uuid.UUID, diff ports.FieldDiff, returning string) (string, []interface{}) {
	cols := make([]string, 0, len(diff))
	for col := range diff {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	args = append(args, id)

	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, diff[col])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		table, strings.Join(sets, ", "), returning,
	)

	return query, args
}
