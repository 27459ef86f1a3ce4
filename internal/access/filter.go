package access

// Departmental is implemented by records that carry their own department.
type Departmental interface {
	DepartmentName() string
}

// FilterVisible keeps the records a subject may see.
//
// Only a responsable with a non-empty scope is filtered: a record is kept when
// department resolves it and the result equals the scope. A record that does
// not resolve is hidden. Every other subject gets records back unchanged.
func FilterVisible[T any](records []T, subject Subject, department func(T) (string, bool)) []T {
	if !subject.Role.Scoped() || subject.Scope == "" {
		return records
	}

	out := make([]T, 0, len(records))

	for _, record := range records {
		if dept, ok := department(record); ok && dept == subject.Scope {
			out = append(out, record)
		}
	}

	return out
}

// FilterDepartmental filters records that know their department, e.g. members.
func FilterDepartmental[T Departmental](records []T, subject Subject) []T {
	return FilterVisible(records, subject, func(record T) (string, bool) {
		return record.DepartmentName(), true
	})
}

// FilterOwned filters records whose department is that of an owning record,
// e.g. attendances owned by members. owners maps owner IDs to departments;
// a record whose owner is missing from the map is hidden.
func FilterOwned[T any, K comparable](records []T, subject Subject, owner func(T) K, owners map[K]string) []T {
	return FilterVisible(records, subject, func(record T) (string, bool) {
		dept, ok := owners[owner(record)]
		return dept, ok
	})
}
