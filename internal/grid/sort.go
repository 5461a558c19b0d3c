package grid

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// SortRows returns a stably sorted copy of rows ordered by col. Numbers
// compare numerically, everything else by case-insensitive text. Rows
// missing the value always sort last. Unsortable columns return rows as-is.
func SortRows(rows []FlatRow, col Column, desc bool) []FlatRow {
	if !col.Sortable {
		return rows
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b FlatRow) int {
		av, aok := a[col.Identifier]
		bv, bok := b[col.Identifier]
		aok = aok && av != nil
		bok = bok && bv != nil

		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}

		c := compareValues(av, bv)
		if desc {
			c = -c
		}
		return c
	})
	return out
}

func compareValues(a, b any) int {
	as, aNum := numberString(a)
	bs, bNum := numberString(b)
	if aNum && bNum {
		af, aerr := strconv.ParseFloat(as, 64)
		bf, berr := strconv.ParseFloat(bs, 64)
		if aerr == nil && berr == nil {
			return cmp.Compare(af, bf)
		}
	}
	return strings.Compare(strings.ToLower(stringify(a)), strings.ToLower(stringify(b)))
}

// FindColumn returns the column with the given id or, failing that, the given
// identifier.
func FindColumn(cols []Column, key string) (Column, bool) {
	for _, c := range cols {
		if c.ID == key {
			return c, true
		}
	}
	for _, c := range cols {
		if c.Identifier == key {
			return c, true
		}
	}
	return Column{}, false
}
