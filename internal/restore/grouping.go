package restore

// GroupByOriginFolder groups records by exact origin folder identifier.
// Groups appear in order of first appearance and records keep their input order; nothing is deduplicated.
func GroupByOriginFolder(records []RestoreRecord) []FolderGroup {
	groupIndexByFolder := make(map[string]int)
	groups := make([]FolderGroup, 0)

	for _, record := range records {
		groupIndex, groupExists := groupIndexByFolder[record.OriginFolderID]
		if !groupExists {
			groupIndex = len(groups)
			groupIndexByFolder[record.OriginFolderID] = groupIndex
			groups = append(groups, FolderGroup{
				OriginFolderID:   record.OriginFolderID,
				OriginFolderName: record.OriginFolderName,
			})
		}
		groups[groupIndex].Records = append(groups[groupIndex].Records, record)
	}

	return groups
}

func countGroupedRecords(groups []FolderGroup) int {
	total := 0
	for _, group := range groups {
		total += len(group.Records)
	}
	return total
}
