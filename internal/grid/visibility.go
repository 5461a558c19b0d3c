package grid

// ToggleVisible sets the Omit flag of every column whose display name equals
// columnName and writes the whole column list back to store. Columns are
// matched by display name, not id, so same-named columns toggle together.
// It returns the number of columns matched.
func ToggleVisible(store *Store, columnName string, visible bool) int {
	cols := store.Columns()
	matched := 0
	for i := range cols {
		if cols[i].Name == columnName {
			cols[i].Omit = !visible
			matched++
		}
	}
	store.SetTableColumns(cols)
	return matched
}

// ShowAll clears the Omit flag on every column.
func ShowAll(store *Store) {
	cols := store.Columns()
	for i := range cols {
		cols[i].Omit = false
	}
	store.SetTableColumns(cols)
}
